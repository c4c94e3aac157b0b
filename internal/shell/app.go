// Package shell wires the storefront client together and reacts to session
// invalidation the way the interactive application does.
package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/api/service"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/storefront/internal/infrastructure/redis"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/repository"
	boltStore "github.com/fastygo/storefront/repository/bolt"
	"github.com/fastygo/storefront/repository/local"
	"github.com/fastygo/storefront/repository/memory"
	redisStore "github.com/fastygo/storefront/repository/redis"
	"github.com/fastygo/storefront/usecase"
	"github.com/fastygo/storefront/usecase/checkout"
	"github.com/fastygo/storefront/usecase/orders"
	"github.com/fastygo/storefront/usecase/session"
)

// Navigation targets used after a session is invalidated.
const (
	LoginRoute      = "/login"
	AdminLoginRoute = "/admin-login"
	adminArea       = "/admin"
)

// Storage is the durable store plus its health probe.
type Storage struct {
	KV     repository.KeyValueStore
	Probe  monitor.Probe
	Driver string
}

// App holds every component of the client.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *session.Store
	Gateway    *gateway.Client
	Auth       *service.Auth
	Admin      *service.Admin
	Products   *service.Products
	Categories *service.Categories
	Checkout   *checkout.UseCase
	Orders     *orders.UseCase
	Monitor    *monitor.Monitor
	Dispatcher *usecase.Dispatcher
	Lifecycle  *lifecycle.Manager

	mu       sync.RWMutex
	location string
}

// New opens the configured storage driver and builds the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lc := lifecycle.New(cfg.Context.ShutdownTimeout, logger)

	storage, err := OpenStorage(ctx, cfg, lc)
	if err != nil {
		return nil, err
	}
	app := Build(cfg, logger, storage)
	app.Lifecycle = lc
	return app, nil
}

// OpenStorage opens the driver named by cfg.Storage.Driver and registers its
// close hook on lc.
func OpenStorage(ctx context.Context, cfg *config.Config, lc *lifecycle.Manager) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return Storage{}, fmt.Errorf("connect redis: %w", err)
		}
		lc.RegisterCloser("redis", client)
		kv := redisStore.NewStore(client, cfg.Storage.Prefix)
		return Storage{KV: kv, Probe: kv.Ping, Driver: config.StorageRedis}, nil
	case config.StorageMemory:
		kv := memory.NewStore()
		return Storage{KV: kv, Probe: func(context.Context) error { return nil }, Driver: config.StorageMemory}, nil
	default:
		kv, err := boltStore.Open(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
		if err != nil {
			return Storage{}, fmt.Errorf("open bolt store %s: %w", cfg.Storage.BoltPath, err)
		}
		lc.RegisterCloser("boltdb", kv)
		probe := func(context.Context) error {
			_, err := kv.Size()
			return err
		}
		return Storage{KV: kv, Probe: probe, Driver: config.StorageBolt}, nil
	}
}

// Build wires the App over an already opened storage.
func Build(cfg *config.Config, logger *zap.Logger, storage Storage, opts ...gateway.Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		Config:     cfg,
		Logger:     logger,
		Dispatcher: usecase.NewDispatcher(),
		Lifecycle:  lifecycle.New(cfg.Context.ShutdownTimeout, logger),
		location:   "/",
	}

	// The gateway reads the credential from the store, which is created right after.
	creds := &credentialRelay{}
	app.Gateway = gateway.New(gateway.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		MaxConns: cfg.API.MaxConns,
	}, creds, logger.Named("gateway"), opts...)

	app.Auth = service.NewAuth(app.Gateway)
	app.Admin = service.NewAdmin(app.Gateway)
	app.Products = service.NewProducts(app.Gateway)
	app.Categories = service.NewCategories(app.Gateway)
	orderAPI := service.NewOrders(app.Gateway)

	app.Store = session.New(
		app.Auth,
		app.Admin,
		local.NewSessionRepository(storage.KV),
		local.NewCartRepository(storage.KV),
		logger.Named("session"),
		session.Options{FirstAdminTTL: cfg.Session.FirstAdminTTL},
	)
	creds.store = app.Store

	sequence := usecase.NewSequencer()
	app.Checkout = checkout.New(app.Store, orderAPI, sequence, logger.Named("checkout"))
	app.Orders = orders.New(orderAPI, sequence, logger.Named("orders"))

	apiProbe := func(ctx context.Context) error {
		_, err := app.Admin.Exists(ctx)
		return err
	}
	app.Monitor = monitor.New(apiProbe, storage.Probe, storage.Driver, cfg.API.Timeout, logger.Named("monitor"))

	app.Gateway.OnSessionInvalidated(app.handleInvalidation)
	app.registerActions()
	return app
}

// Start restores the persisted session.
func (a *App) Start(ctx context.Context) {
	a.Store.RestoreSession(ctx)
}

// Close releases storage.
func (a *App) Close(ctx context.Context) error {
	return a.Lifecycle.Shutdown(ctx)
}

// Navigate records the current location.
func (a *App) Navigate(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = path
}

func (a *App) Location() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.location
}

// InAdminArea reports whether the current location is part of the back office,
// including the admin login page.
func (a *App) InAdminArea() bool {
	loc := a.Location()
	return loc == adminArea || loc == AdminLoginRoute || strings.HasPrefix(loc, adminArea+"/")
}

func (a *App) handleInvalidation(ctx context.Context, path string) {
	target := LoginRoute
	if a.InAdminArea() {
		target = AdminLoginRoute
	}
	a.Store.InvalidateSession(ctx)
	a.Logger.Warn("session invalidated by server",
		zap.String("path", path),
		zap.String("from", a.Location()),
		zap.String("to", target),
	)
	a.Navigate(target)
}

type credentialRelay struct {
	store *session.Store
}

func (c *credentialRelay) Credential() string {
	if c.store == nil {
		return ""
	}
	return c.store.Credential()
}
