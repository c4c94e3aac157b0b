package shell

import (
	"context"
	"fmt"

	"github.com/fastygo/storefront/api/service"
	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/validate"
)

// Action names understood by the dispatcher.
const (
	ActionLogin              = "auth.login"
	ActionRegister           = "auth.register"
	ActionLogout             = "auth.logout"
	ActionWhoAmI             = "auth.whoami"
	ActionAdminLogin         = "admin.login"
	ActionAdminExists        = "admin.exists"
	ActionRegisterFirstAdmin = "admin.register_first"
	ActionAdminProfile       = "admin.profile"
	ActionAdminList          = "admin.list"
	ActionAdminRegister      = "admin.register"
	ActionActivityLogs       = "admin.activity_logs"
	ActionMyActivityLogs     = "admin.activity_logs_mine"

	ActionCartShow   = "cart.show"
	ActionCartAdd    = "cart.add"
	ActionCartRemove = "cart.remove"
	ActionCartSet    = "cart.set"
	ActionCartClear  = "cart.clear"
	ActionCartImport = "cart.import"

	ActionProductList        = "products.list"
	ActionProductGet         = "products.get"
	ActionProductCreate      = "products.create"
	ActionProductUpdate      = "products.update"
	ActionProductStock       = "products.stock"
	ActionProductDelete      = "products.delete"
	ActionProductImageAdd    = "products.image_add"
	ActionProductImageDelete = "products.image_delete"
	ActionProductImageMain   = "products.image_main"

	ActionCategoryList   = "categories.list"
	ActionCategoryCreate = "categories.create"
	ActionCategoryUpdate = "categories.update"
	ActionCategoryDelete = "categories.delete"

	ActionCheckout     = "checkout.place"
	ActionOrderTrack   = "orders.track"
	ActionOrdersMine   = "orders.mine"
	ActionOrdersList   = "orders.list"
	ActionOrderGet     = "orders.get"
	ActionOrderStatus  = "orders.status"
	ActionHealthStatus = "status"
)

// CartLine selects a product and a quantity.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// ProductUpdate targets an existing product.
type ProductUpdate struct {
	ID      int64
	Request transport.ProductRequest
}

type StockUpdate struct {
	ProductID int64
	Stock     int
}

type ImageAdd struct {
	ProductID int64
	ImageURL  string
}

type CategoryUpdate struct {
	ID      int64
	Request transport.CategoryRequest
}

type OrderQuery struct {
	Page   service.PageQuery
	Status string
}

type StatusChange struct {
	OrderID int64
	Status  string
}

// Whoami is the identity view returned by ActionWhoAmI.
type Whoami struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	Partition     string       `json:"partition"`
}

func (a *App) registerActions() {
	d := a.Dispatcher

	d.RegisterCommand(ActionLogin, func(ctx context.Context, p interface{}) (interface{}, error) {
		creds, err := payload[domain.Credentials](p)
		if err != nil {
			return nil, err
		}
		return a.Store.Login(ctx, creds)
	})
	d.RegisterCommand(ActionRegister, func(ctx context.Context, p interface{}) (interface{}, error) {
		form, err := payload[domain.Registration](p)
		if err != nil {
			return nil, err
		}
		return a.Store.Register(ctx, form)
	})
	d.RegisterCommand(ActionLogout, func(ctx context.Context, _ interface{}) (interface{}, error) {
		a.Store.Logout(ctx)
		return nil, nil
	})
	d.RegisterQuery(ActionWhoAmI, func(ctx context.Context, _ interface{}) (interface{}, error) {
		out := Whoami{Authenticated: a.Store.IsAuthenticated(ctx)}
		if user, ok := a.Store.CurrentUser(); ok {
			out.User = user
		}
		out.Partition = a.Store.PartitionKey()
		return out, nil
	})

	d.RegisterCommand(ActionAdminLogin, func(ctx context.Context, p interface{}) (interface{}, error) {
		creds, err := payload[domain.Credentials](p)
		if err != nil {
			return nil, err
		}
		return a.Store.AdminLogin(ctx, creds)
	})
	d.RegisterQuery(ActionAdminExists, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Admin.Exists(ctx)
	})
	d.RegisterCommand(ActionRegisterFirstAdmin, func(ctx context.Context, p interface{}) (interface{}, error) {
		form, err := payload[domain.Registration](p)
		if err != nil {
			return nil, err
		}
		return a.Store.RegisterFirstAdmin(ctx, form)
	})
	d.RegisterQuery(ActionAdminProfile, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Admin.Profile(ctx)
	})
	d.RegisterQuery(ActionAdminList, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Admin.List(ctx)
	})
	d.RegisterCommand(ActionAdminRegister, func(ctx context.Context, p interface{}) (interface{}, error) {
		form, err := payload[domain.Registration](p)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(form); err != nil {
			return nil, err
		}
		return a.Admin.Register(ctx, form)
	})
	d.RegisterQuery(ActionActivityLogs, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Admin.ActivityLogs(ctx)
	})
	d.RegisterQuery(ActionMyActivityLogs, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Admin.MyActivityLogs(ctx)
	})

	a.registerCartActions()
	a.registerCatalogActions()
	a.registerOrderActions()

	d.RegisterQuery(ActionHealthStatus, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Monitor.Check(ctx), nil
	})
}

func (a *App) registerCartActions() {
	d := a.Dispatcher

	d.RegisterQuery(ActionCartShow, func(context.Context, interface{}) (interface{}, error) {
		return a.Store.Cart(), nil
	})
	d.RegisterCommand(ActionCartAdd, func(ctx context.Context, p interface{}) (interface{}, error) {
		line, err := payload[CartLine](p)
		if err != nil {
			return nil, err
		}
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		product, err := a.Products.Get(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if err := a.Store.AddItem(ctx, *product, line.Quantity); err != nil {
			return nil, err
		}
		return a.Store.Cart(), nil
	})
	d.RegisterCommand(ActionCartRemove, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		a.Store.RemoveItem(ctx, id)
		return a.Store.Cart(), nil
	})
	d.RegisterCommand(ActionCartSet, func(ctx context.Context, p interface{}) (interface{}, error) {
		line, err := payload[CartLine](p)
		if err != nil {
			return nil, err
		}
		a.Store.SetQuantity(ctx, line.ProductID, line.Quantity)
		return a.Store.Cart(), nil
	})
	d.RegisterCommand(ActionCartClear, func(ctx context.Context, _ interface{}) (interface{}, error) {
		a.Store.Clear(ctx)
		return a.Store.Cart(), nil
	})
	d.RegisterCommand(ActionCartImport, func(ctx context.Context, _ interface{}) (interface{}, error) {
		if _, err := a.Store.ImportGuestCart(ctx); err != nil {
			return nil, err
		}
		return a.Store.Cart(), nil
	})
}

func (a *App) registerCatalogActions() {
	d := a.Dispatcher

	d.RegisterQuery(ActionProductList, func(ctx context.Context, p interface{}) (interface{}, error) {
		filter, err := payload[domain.ProductFilter](p)
		if err != nil {
			return nil, err
		}
		return a.Products.List(ctx, filter)
	})
	d.RegisterQuery(ActionProductGet, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return a.Products.Get(ctx, id)
	})
	d.RegisterCommand(ActionProductCreate, func(ctx context.Context, p interface{}) (interface{}, error) {
		req, err := payload[transport.ProductRequest](p)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		return a.Products.Create(ctx, req)
	})
	d.RegisterCommand(ActionProductUpdate, func(ctx context.Context, p interface{}) (interface{}, error) {
		upd, err := payload[ProductUpdate](p)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(upd.Request); err != nil {
			return nil, err
		}
		return a.Products.Update(ctx, upd.ID, upd.Request)
	})
	d.RegisterCommand(ActionProductStock, func(ctx context.Context, p interface{}) (interface{}, error) {
		upd, err := payload[StockUpdate](p)
		if err != nil {
			return nil, err
		}
		if upd.Stock < 0 {
			return nil, &domain.ValidationError{Fields: map[string]string{"stock": "Stock must be at least 0"}}
		}
		return a.Products.UpdateStock(ctx, upd.ProductID, upd.Stock)
	})
	d.RegisterCommand(ActionProductDelete, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return nil, a.Products.Delete(ctx, id)
	})
	d.RegisterCommand(ActionProductImageAdd, func(ctx context.Context, p interface{}) (interface{}, error) {
		img, err := payload[ImageAdd](p)
		if err != nil {
			return nil, err
		}
		return a.Products.AddImage(ctx, img.ProductID, img.ImageURL)
	})
	d.RegisterCommand(ActionProductImageDelete, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return nil, a.Products.DeleteImage(ctx, id)
	})
	d.RegisterCommand(ActionProductImageMain, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return nil, a.Products.SetMainImage(ctx, id)
	})

	d.RegisterQuery(ActionCategoryList, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Categories.List(ctx)
	})
	d.RegisterCommand(ActionCategoryCreate, func(ctx context.Context, p interface{}) (interface{}, error) {
		req, err := payload[transport.CategoryRequest](p)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		return a.Categories.Create(ctx, req)
	})
	d.RegisterCommand(ActionCategoryUpdate, func(ctx context.Context, p interface{}) (interface{}, error) {
		upd, err := payload[CategoryUpdate](p)
		if err != nil {
			return nil, err
		}
		if err := validate.Struct(upd.Request); err != nil {
			return nil, err
		}
		return a.Categories.Update(ctx, upd.ID, upd.Request)
	})
	d.RegisterCommand(ActionCategoryDelete, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return nil, a.Categories.Delete(ctx, id)
	})
}

func (a *App) registerOrderActions() {
	d := a.Dispatcher

	d.RegisterCommand(ActionCheckout, func(ctx context.Context, p interface{}) (interface{}, error) {
		form, err := payload[domain.CheckoutForm](p)
		if err != nil {
			return nil, err
		}
		return a.Checkout.PlaceOrder(ctx, form)
	})
	d.RegisterQuery(ActionOrderTrack, func(ctx context.Context, p interface{}) (interface{}, error) {
		tracking, err := payload[string](p)
		if err != nil {
			return nil, err
		}
		return a.Orders.Track(ctx, tracking)
	})
	d.RegisterQuery(ActionOrdersMine, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Orders.Mine(ctx)
	})
	d.RegisterQuery(ActionOrdersList, func(ctx context.Context, p interface{}) (interface{}, error) {
		q, err := payload[OrderQuery](p)
		if err != nil {
			return nil, err
		}
		return a.Orders.AdminList(ctx, q.Page, q.Status)
	})
	d.RegisterQuery(ActionOrderGet, func(ctx context.Context, p interface{}) (interface{}, error) {
		id, err := payload[int64](p)
		if err != nil {
			return nil, err
		}
		return a.Orders.AdminGet(ctx, id)
	})
	d.RegisterCommand(ActionOrderStatus, func(ctx context.Context, p interface{}) (interface{}, error) {
		change, err := payload[StatusChange](p)
		if err != nil {
			return nil, err
		}
		return a.Orders.UpdateStatus(ctx, change.OrderID, change.Status)
	})
}

func payload[T any](p interface{}) (T, error) {
	v, ok := p.(T)
	if !ok {
		var zero T
		return zero, domain.WrapError(domain.ErrCodeInvalid, "invalid payload", fmt.Errorf("got %T, want %T", p, zero))
	}
	return v, nil
}
