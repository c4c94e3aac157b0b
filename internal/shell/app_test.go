package shell

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/apitest"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/monitor"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/repository/memory"
)

type harness struct {
	app *App
	api *apitest.Server
	kv  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)

	kv := memory.NewStore()
	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: apitest.BaseURL, Timeout: 2 * time.Second},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
	}
	storage := Storage{KV: kv, Probe: func(context.Context) error { return nil }, Driver: config.StorageMemory}
	app := Build(cfg, nil, storage, gateway.WithDial(api.Dial))
	app.Start(context.Background())
	return &harness{app: app, api: api, kv: kv}
}

func (h *harness) command(t *testing.T, name string, p interface{}) (interface{}, error) {
	t.Helper()
	return h.app.Dispatcher.ExecuteCommand(context.Background(), name, p)
}

func (h *harness) query(t *testing.T, name string, p interface{}) (interface{}, error) {
	t.Helper()
	return h.app.Dispatcher.ExecuteQuery(context.Background(), name, p)
}

func (h *harness) loginCustomer(t *testing.T) {
	t.Helper()
	h.api.AddUser("Ann", "ann@example.com", "secret1")
	_, err := h.command(t, ActionLogin, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func (h *harness) loginAdmin(t *testing.T) {
	t.Helper()
	h.api.AddAdmin("Root", "root@example.com", "secret1")
	_, err := h.command(t, ActionAdminLogin, domain.Credentials{Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func validForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		CustomerName:    "Ann Smith",
		CustomerPhone:   "+1 555 010 2030",
		CustomerEmail:   "ann@example.com",
		CustomerAddress: "1 Main St",
	}
}

func TestApp_FailedLoginKeepsSessionAndLocation(t *testing.T) {
	h := newHarness(t)
	h.loginCustomer(t)
	token := h.app.Store.Credential()
	h.app.Navigate("/cart")
	h.api.Respond(http.MethodPost, "/users/login", http.StatusUnauthorized, "Bad credentials")

	_, err := h.command(t, ActionLogin, domain.Credentials{Email: "ann@example.com", Password: "typo-typo"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSessionInvalidated))
	assert.Equal(t, "Bad credentials", domain.Message(err))

	assert.Equal(t, token, h.app.Store.Credential())
	assert.True(t, h.app.Store.IsAuthenticated(context.Background()))
	assert.Equal(t, "/cart", h.app.Location())
}

func TestApp_ForbiddenLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t)
	h.loginCustomer(t)
	token := h.app.Store.Credential()
	h.app.Navigate("/admin")

	_, err := h.query(t, ActionAdminProfile, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.Equal(t, "Not an admin user", domain.Message(err))

	assert.Equal(t, token, h.app.Store.Credential())
	assert.True(t, h.kv.Has(repository.KeyToken))
	assert.Equal(t, "/admin", h.app.Location())
}

func TestApp_InvalidationInAdminAreaGoesToAdminLogin(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.app.Navigate("/admin/orders")
	h.api.RevokeToken(h.app.Store.Credential())

	_, err := h.query(t, ActionOrdersList, OrderQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionInvalidated))

	assert.Equal(t, AdminLoginRoute, h.app.Location())
	assert.False(t, h.app.Store.IsAuthenticated(context.Background()))
	assert.False(t, h.kv.Has(repository.KeyToken))
	assert.False(t, h.kv.Has(repository.KeyUser))
	assert.Equal(t, domain.GuestPartition, h.app.Store.PartitionKey())
}

func TestApp_InvalidationOnStorefrontGoesToLogin(t *testing.T) {
	h := newHarness(t)
	h.loginCustomer(t)
	h.app.Navigate("/orders")
	h.api.RevokeToken(h.app.Store.Credential())

	_, err := h.query(t, ActionOrdersMine, nil)
	assert.True(t, errors.Is(err, domain.ErrSessionInvalidated))
	assert.Equal(t, LoginRoute, h.app.Location())
	assert.Empty(t, h.app.Store.Credential())
}

func TestApp_AdministratorPathIsNotAdminArea(t *testing.T) {
	h := newHarness(t)
	h.app.Navigate("/administrator")
	assert.False(t, h.app.InAdminArea())
	h.app.Navigate("/admin-logins")
	assert.False(t, h.app.InAdminArea())
	h.app.Navigate("/admin/products/4")
	assert.True(t, h.app.InAdminArea())
	h.app.Navigate(AdminLoginRoute)
	assert.True(t, h.app.InAdminArea())
}

func TestApp_InvalidationOnAdminLoginStaysOnAdminLogin(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.app.Navigate(AdminLoginRoute)
	h.api.RevokeToken(h.app.Store.Credential())

	_, err := h.query(t, ActionAdminProfile, nil)
	assert.True(t, errors.Is(err, domain.ErrSessionInvalidated))
	assert.Equal(t, AdminLoginRoute, h.app.Location())
	assert.False(t, h.app.Store.IsAdmin(context.Background()))
}

func TestApp_GuestCheckout(t *testing.T) {
	h := newHarness(t)
	mug := h.api.AddProduct(domain.Product{Name: "Mug", Price: decimal.RequireFromString("9.99"), Stock: 10})

	out, err := h.command(t, ActionCartAdd, CartLine{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)
	cart := out.(domain.Snapshot)
	assert.Equal(t, "19.98", cart.TotalAmount.StringFixed(2))

	out, err = h.command(t, ActionCheckout, validForm())
	require.NoError(t, err)
	order := out.(*domain.Order)
	assert.Regexp(t, `^TRK-[0-9A-F]{8}$`, order.TrackingID)
	assert.Equal(t, domain.OrderPending, order.Status)

	stored, ok := h.api.Order(order.ID)
	require.True(t, ok)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "19.98", stored.TotalAmount.StringFixed(2))

	assert.Empty(t, h.app.Store.Cart().Items)
	assert.False(t, h.kv.Has("cartItems_guest"))

	out, err = h.query(t, ActionOrderTrack, order.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, out.(*domain.Order).ID)
}

func TestApp_CheckoutRejectsBadForm(t *testing.T) {
	h := newHarness(t)
	mug := h.api.AddProduct(domain.Product{Name: "Mug", Price: decimal.RequireFromString("9.99")})
	_, err := h.command(t, ActionCartAdd, CartLine{ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = h.command(t, ActionCheckout, domain.CheckoutForm{CustomerName: "  ", CustomerPhone: "12"})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	msg, _ := vErr.Field("customerPhone")
	assert.Equal(t, "Please enter a valid phone number", msg)
	assert.Empty(t, h.api.CallsTo(http.MethodPost, "/orders"))
	assert.Len(t, h.app.Store.Cart().Items, 1)
}

func TestApp_CheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)
	_, err := h.command(t, ActionCheckout, validForm())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestApp_CartAddUnknownProduct(t *testing.T) {
	h := newHarness(t)
	_, err := h.command(t, ActionCartAdd, CartLine{ProductID: 99, Quantity: 1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, h.app.Store.Cart().Items)

	_, err = h.command(t, ActionCartAdd, CartLine{ProductID: 99, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestApp_AdminStatusFlow(t *testing.T) {
	h := newHarness(t)
	mug := h.api.AddProduct(domain.Product{Name: "Mug", Price: decimal.RequireFromString("9.99")})
	_, err := h.command(t, ActionCartAdd, CartLine{ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)
	out, err := h.command(t, ActionCheckout, validForm())
	require.NoError(t, err)
	orderID := out.(*domain.Order).ID

	h.loginAdmin(t)

	out, err = h.command(t, ActionOrderStatus, StatusChange{OrderID: orderID, Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, out.(*domain.Order).Status)

	out, err = h.command(t, ActionOrderStatus, StatusChange{OrderID: orderID, Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, out.(*domain.Order).Status)

	out, err = h.command(t, ActionOrderStatus, StatusChange{OrderID: orderID, Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, out.(*domain.Order).Status)
	stored, ok := h.api.Order(orderID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderPending, stored.Status)

	out, err = h.command(t, ActionOrderStatus, StatusChange{OrderID: orderID, Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, out.(*domain.Order).Status)
	assert.Len(t, h.api.CallsTo(http.MethodPut, "/admin/orders/"+strconv.FormatInt(orderID, 10)+"/status"), 4)

	_, err = h.command(t, ActionOrderStatus, StatusChange{OrderID: orderID, Status: "Lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	out, err = h.query(t, ActionOrdersList, OrderQuery{Status: "Shipped"})
	require.NoError(t, err)
	page := out.(*domain.Page[domain.Order])
	require.Len(t, page.Content, 1)
	assert.Equal(t, orderID, page.Content[0].ID)
}

func TestApp_WrongPayloadType(t *testing.T) {
	h := newHarness(t)
	_, err := h.command(t, ActionCartAdd, "not a line")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestApp_Whoami(t *testing.T) {
	h := newHarness(t)
	out, err := h.query(t, ActionWhoAmI, nil)
	require.NoError(t, err)
	assert.Equal(t, Whoami{Partition: domain.GuestPartition}, out)

	h.loginAdmin(t)
	out, err = h.query(t, ActionWhoAmI, nil)
	require.NoError(t, err)
	who := out.(Whoami)
	assert.True(t, who.Authenticated)
	assert.True(t, who.User.IsAdmin)
	assert.Equal(t, "admin_1", who.Partition)
}

func TestApp_HealthStatus(t *testing.T) {
	h := newHarness(t)
	out, err := h.query(t, ActionHealthStatus, nil)
	require.NoError(t, err)
	status := out.(monitor.Status)
	assert.True(t, status.Healthy())
	assert.Equal(t, config.StorageMemory, status.StorageDriver)
	assert.Len(t, h.api.CallsTo(http.MethodGet, "/admin/exists"), 1)
}
