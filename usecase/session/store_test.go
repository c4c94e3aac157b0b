package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/api/service"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/apitest"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/repository/local"
	"github.com/fastygo/storefront/repository/memory"
)

type credentialFunc func() string

func (f credentialFunc) Credential() string { return f() }

type fixture struct {
	api   *apitest.Server
	kv    *memory.Store
	store *Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api: apitest.New(),
		kv:  memory.NewStore(),
		now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	t.Cleanup(f.api.Close)

	client := f.api.Client(credentialFunc(func() string {
		if f.store == nil {
			return ""
		}
		return f.store.Credential()
	}), nil)
	f.store = f.newStore(client)
	return f
}

func (f *fixture) newStore(client service.Requester) *Store {
	return New(
		service.NewAuth(client),
		service.NewAdmin(client),
		local.NewSessionRepository(f.kv),
		local.NewCartRepository(f.kv),
		nil,
		Options{Now: func() time.Time { return f.now }},
	)
}

func mug() domain.Product {
	return domain.Product{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")}
}

func cap2() domain.Product {
	return domain.Product{ID: 2, Name: "Cap", Price: decimal.RequireFromString("15.00")}
}

func assertLockstep(t *testing.T, f *fixture) {
	t.Helper()
	_, hasUser := f.store.CurrentUser()
	assert.Equal(t, f.store.Credential() != "", hasUser, "credential and identity out of step")
	assert.Equal(t, f.kv.Has(repository.KeyToken), f.kv.Has(repository.KeyUser), "persisted halves out of step")
}

func TestStore_GuestLoginLogoutScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	f.store.RestoreSession(ctx)

	require.NoError(t, f.store.AddItem(ctx, mug(), 1))
	require.NoError(t, f.store.AddItem(ctx, mug(), 1))
	cart := f.store.Cart()
	assert.Equal(t, domain.GuestPartition, cart.Partition)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, "19.98", cart.TotalAmount.StringFixed(2))

	user, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, "1", f.store.PartitionKey())
	assert.Empty(t, f.store.Cart().Items)
	assert.True(t, f.kv.Has("cartItems_guest"))
	assertLockstep(t, f)

	f.store.Logout(ctx)
	assertLockstep(t, f)
	cart = f.store.Cart()
	assert.Equal(t, domain.GuestPartition, cart.Partition)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Len(t, f.api.CallsTo(http.MethodPost, "/auth-tokens/logout"), 1)
}

func TestStore_PartitionIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	f.api.AddUser("Bob", "bob@example.com", "secret2")

	require.NoError(t, f.store.AddItem(ctx, mug(), 1))

	_, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.store.AddItem(ctx, cap2(), 3))

	_, err = f.store.Login(ctx, domain.Credentials{Email: "bob@example.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, "2", f.store.PartitionKey())
	assert.Empty(t, f.store.Cart().Items)

	_, err = f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	cart := f.store.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	f.store.Logout(ctx)
	cart = f.store.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
}

func TestStore_LoginFailureLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	_, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	before := f.store.Credential()

	_, err = f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", domain.Message(err))
	assert.Equal(t, before, f.store.Credential())
	assert.True(t, f.store.IsAuthenticated(ctx))
	assertLockstep(t, f)
}

func TestStore_LoginValidatesBeforeCalling(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Login(context.Background(), domain.Credentials{Email: "nope"})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "password")
	assert.Empty(t, f.api.Calls())
}

func TestStore_RegisterEstablishesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.store.Register(ctx, domain.Registration{Name: "Cid", Email: "cid@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Cid", user.Name)
	assert.True(t, f.store.IsAuthenticated(ctx))
	assertLockstep(t, f)
}

func TestStore_AdminLoginForcesAdminAndEmptiesCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.Respond(http.MethodPost, "/admin/login", http.StatusOK,
		`{"userId":3,"name":"Root","email":"root@example.com","token":"adm-tok"}`)
	require.NoError(t, f.kv.Set(ctx, "cartItems_admin_3", []byte(`[{"id":1,"name":"Mug","price":9.99,"quantity":4}]`)))
	require.NoError(t, f.store.AddItem(ctx, mug(), 1))

	user, err := f.store.AdminLogin(ctx, domain.Credentials{Email: "root@example.com", Password: "whatever"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.True(t, f.store.IsAdmin(ctx))
	assert.Equal(t, "admin_3", f.store.PartitionKey())
	assert.Empty(t, f.store.Cart().Items)
	assert.False(t, f.kv.Has("cartItems_admin_3"))
	assert.True(t, f.kv.Has("cartItems_guest"))
	assertLockstep(t, f)
}

func TestStore_AdminLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddAdmin("Root", "root@example.com", "secret1")

	_, err := f.store.AdminLogin(ctx, domain.Credentials{Email: "root@example.com", Password: "nope-nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid admin credentials", domain.Message(err))
	assert.False(t, f.store.IsAuthenticated(ctx))
}

func TestStore_RegisterFirstAdminWithoutToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin, err := f.store.RegisterFirstAdmin(ctx, domain.Registration{Name: "Root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, "Root", admin.Name)
	assert.False(t, f.store.IsAuthenticated(ctx))
	assertLockstep(t, f)
}

func TestStore_RegisterFirstAdminWithToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.Respond(http.MethodPost, "/admin/register-first", http.StatusCreated,
		`{"id":1,"name":"Root","email":"root@example.com","token":"first-tok"}`)

	_, err := f.store.RegisterFirstAdmin(ctx, domain.Registration{Name: "Root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, ok := f.store.CurrentUser()
	require.True(t, ok)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "first-tok", f.store.Credential())
	assert.True(t, user.ExpiresAt.Equal(f.now.Add(7*24*time.Hour)))
	assert.Equal(t, "admin_1", f.store.PartitionKey())
}

func TestStore_RegisterFirstAdminRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddAdmin("Root", "root@example.com", "secret1")

	_, err := f.store.RegisterFirstAdmin(ctx, domain.Registration{Name: "Two", Email: "two@example.com", Password: "secret1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.False(t, f.store.IsAuthenticated(ctx))
}

func TestStore_ExpiredIdentityIsCleared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.Respond(http.MethodPost, "/users/login", http.StatusOK,
		`{"userId":8,"name":"Eve","email":"eve@example.com","token":"t8","expiresAt":"2024-06-01T13:00:00Z"}`)

	_, err := f.store.Login(ctx, domain.Credentials{Email: "eve@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.store.AddItem(ctx, mug(), 1))
	assert.True(t, f.store.IsAuthenticated(ctx))

	f.now = f.now.Add(2 * time.Hour)
	assert.False(t, f.store.IsAuthenticated(ctx))
	assert.Empty(t, f.store.Credential())
	_, ok := f.store.CurrentUser()
	assert.False(t, ok)
	assert.False(t, f.kv.Has(repository.KeyToken))
	assert.False(t, f.kv.Has(repository.KeyUser))
	assert.Equal(t, domain.GuestPartition, f.store.PartitionKey())
	assert.True(t, f.kv.Has("cartItems_8"))
}

func TestStore_RestoreSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	_, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.store.AddItem(ctx, cap2(), 2))

	restarted := f.newStore(nil)
	restarted.RestoreSession(ctx)
	assert.Equal(t, f.store.Credential(), restarted.Credential())
	assert.Equal(t, "1", restarted.PartitionKey())
	assert.Equal(t, 2, restarted.Cart().TotalQuantity)
}

func TestStore_RestoreDiscardsExpiredOrHalfSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, repository.KeyToken, []byte("old")))
		require.NoError(t, f.kv.Set(ctx, repository.KeyUser, []byte(`{"id":4,"name":"Old","isAdmin":false,"expiresAt":"2024-01-01T00:00:00Z"}`)))

		f.store.RestoreSession(ctx)
		assert.False(t, f.store.IsAuthenticated(ctx))
		assert.Empty(t, f.kv.Keys())
	})

	t.Run("token only", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, repository.KeyToken, []byte("orphan")))

		f.store.RestoreSession(ctx)
		assert.Empty(t, f.store.Credential())
		assertLockstep(t, f)
	})

	t.Run("malformed user", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, repository.KeyToken, []byte("tok")))
		require.NoError(t, f.kv.Set(ctx, repository.KeyUser, []byte(`{nope`)))

		f.store.RestoreSession(ctx)
		assert.Empty(t, f.store.Credential())
		assertLockstep(t, f)
		assert.Equal(t, domain.GuestPartition, f.store.PartitionKey())
	})
}

func TestStore_LogoutClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	_, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.api.Respond(http.MethodPost, "/auth-tokens/logout", http.StatusInternalServerError, "boom")

	f.store.Logout(ctx)
	assert.False(t, f.store.IsAuthenticated(ctx))
	assertLockstep(t, f)
}

func TestStore_LogoutAsGuestSkipsRemoteCall(t *testing.T) {
	f := newFixture(t)
	f.store.Logout(context.Background())
	assert.Empty(t, f.api.Calls())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.AddItem(ctx, mug(), 2))

	f.store.Clear(ctx)
	once := f.store.Cart()
	keysOnce := f.kv.Keys()
	f.store.Clear(ctx)

	assert.Equal(t, once, f.store.Cart())
	assert.Equal(t, keysOnce, f.kv.Keys())
	assert.Empty(t, once.Items)
	assert.False(t, f.kv.Has("cartItems_guest"))
}

func TestStore_CartMutationsPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.AddItem(ctx, mug(), 1))
	require.NoError(t, f.store.AddItem(ctx, cap2(), 1))

	f.store.SetQuantity(ctx, 1, 5)
	f.store.SetQuantity(ctx, 1, 0)
	f.store.SetQuantity(ctx, 404, 2)
	f.store.RemoveItem(ctx, 2)
	assert.ErrorIs(t, f.store.AddItem(ctx, cap2(), 0), domain.ErrInvalidQuantity)

	items, err := local.NewCartRepository(f.kv).Load(ctx, domain.GuestPartition)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "49.95", f.store.Cart().TotalAmount.StringFixed(2))
}

func TestStore_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.kv.FailWrites = errors.New("read-only")

	require.NoError(t, f.store.AddItem(ctx, mug(), 1))
	assert.Equal(t, 1, f.store.Cart().TotalQuantity)
	f.store.Clear(ctx)
	assert.Empty(t, f.store.Cart().Items)
}

func TestStore_ImportGuestCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")

	_, err := f.store.ImportGuestCart(ctx)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	require.NoError(t, f.store.AddItem(ctx, mug(), 2))
	_, err = f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.store.AddItem(ctx, mug(), 1))

	n, err := f.store.ImportGuestCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, f.store.Cart().TotalQuantity)
	assert.False(t, f.kv.Has("cartItems_guest"))
}

func TestStore_InvalidateSessionIsLocal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1")
	_, err := f.store.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	calls := len(f.api.Calls())

	f.store.InvalidateSession(ctx)
	assert.False(t, f.store.IsAuthenticated(ctx))
	assert.Len(t, f.api.Calls(), calls)
	assertLockstep(t, f)
}
