// Package session owns the authenticated identity and the per-identity shopping cart.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/validate"
	"github.com/fastygo/storefront/repository"
)

const defaultFirstAdminTTL = 7 * 24 * time.Hour

// AuthAPI is the remote authentication surface the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*transport.TokenResponse, error)
	Register(ctx context.Context, form domain.Registration) (*transport.TokenResponse, error)
	AdminLogin(ctx context.Context, creds domain.Credentials) (*transport.TokenResponse, error)
	Logout(ctx context.Context) error
}

// AdminAPI is the bootstrap surface used to create the first admin.
type AdminAPI interface {
	RegisterFirst(ctx context.Context, form domain.Registration) (*transport.TokenResponse, error)
}

type Options struct {
	// FirstAdminTTL is the expiry applied to a first-admin session lacking expiresAt.
	FirstAdminTTL time.Duration
	Now           func() time.Time
}

// Store is the single source of truth for the session and the active cart.
// Locks are never held across remote calls.
type Store struct {
	auth     AuthAPI
	admin    AdminAPI
	sessions repository.SessionRepository
	carts    repository.CartRepository
	logger   *zap.Logger

	firstAdminTTL time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	session *domain.Session
	cart    *domain.Cart
}

func New(auth AuthAPI, admin AdminAPI, sessions repository.SessionRepository, carts repository.CartRepository, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FirstAdminTTL <= 0 {
		opts.FirstAdminTTL = defaultFirstAdminTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		auth:          auth,
		admin:         admin,
		sessions:      sessions,
		carts:         carts,
		logger:        logger,
		firstAdminTTL: opts.FirstAdminTTL,
		now:           opts.Now,
		cart:          domain.NewCart(domain.GuestPartition, nil),
	}
}

// RestoreSession loads the persisted session. Anything incomplete, malformed or
// expired leaves the store as guest. It never fails.
func (s *Store) RestoreSession(ctx context.Context) {
	restored, err := s.sessions.Load(ctx)
	if err != nil {
		s.logger.Warn("discarding unreadable session", zap.Error(err))
		s.clearPersistedSession(ctx)
		restored = nil
	}
	if restored != nil && restored.IsExpired(s.now()) {
		s.logger.Info("persisted session expired", zap.Time("expires_at", restored.User.ExpiresAt))
		s.clearPersistedSession(ctx)
		restored = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = restored
	s.repointLocked(ctx, restored.PartitionKey())
}

// Login authenticates a customer and switches the cart to their partition.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp, transport.IdentityOptions{}, false)
}

// Register creates a customer account and logs it in.
func (s *Store) Register(ctx context.Context, form domain.Registration) (*domain.User, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}
	resp, err := s.auth.Register(ctx, form)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp, transport.IdentityOptions{}, false)
}

// AdminLogin authenticates an admin. The identity is always an admin and the cart
// starts empty.
func (s *Store) AdminLogin(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}
	resp, err := s.auth.AdminLogin(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp, transport.IdentityOptions{ForceAdmin: true}, true)
}

// RegisterFirstAdmin bootstraps the first admin account. When the response carries
// a token an admin session is established the same way AdminLogin does.
func (s *Store) RegisterFirstAdmin(ctx context.Context, form domain.Registration) (*domain.Admin, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}
	resp, err := s.admin.RegisterFirst(ctx, form)
	if err != nil {
		return nil, err
	}
	identity := resp.Identity(transport.IdentityOptions{ForceAdmin: true, FallbackTTL: s.firstAdminTTL, Now: s.now()})
	admin := &domain.Admin{ID: identity.ID, Name: identity.Name, Email: identity.Email}

	if resp.Token == "" {
		s.logger.Info("first admin registered without a token", zap.Int64("admin_id", admin.ID))
		return admin, nil
	}
	if _, err := s.establish(ctx, resp, transport.IdentityOptions{ForceAdmin: true, FallbackTTL: s.firstAdminTTL}, true); err != nil {
		return nil, err
	}
	return admin, nil
}

// Logout revokes the credential remotely when one is held, then clears the session
// regardless of the outcome.
func (s *Store) Logout(ctx context.Context) {
	if s.Credential() != "" {
		if err := s.auth.Logout(ctx); err != nil {
			s.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	s.InvalidateSession(ctx)
}

// InvalidateSession clears the session locally and falls back to the guest cart.
func (s *Store) InvalidateSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx)
}

// IsAuthenticated reports whether a live session exists. An expired session is
// cleared on the spot.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current == nil {
		return false
	}
	if !current.IsExpired(s.now()) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == current {
		s.logger.Info("session expired", zap.Int64("user_id", current.User.ID))
		s.clearLocked(ctx)
	}
	return false
}

func (s *Store) IsAdmin(ctx context.Context) bool {
	if !s.IsAuthenticated(ctx) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.session.User.IsAdmin
}

// CurrentUser returns a copy of the identity, or false for a guest.
func (s *Store) CurrentUser() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	user := s.session.User
	return &user, true
}

// Credential returns the bearer token, empty for a guest.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *Store) PartitionKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Snapshot().Partition
}

func (s *Store) Cart() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Snapshot()
}

// AddItem increments the product's line or appends a new one.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Add(product, quantity); err != nil {
		return err
	}
	s.flushLocked(ctx)
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.Remove(productID) {
		s.flushLocked(ctx)
	}
}

// SetQuantity overwrites a line's quantity. Values below 1 and unknown products are ignored.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.SetQuantity(productID, quantity) {
		s.flushLocked(ctx)
	}
}

// Clear empties the active partition and removes it from storage.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Reset()
	s.deletePartition(ctx, s.cart.Partition)
}

// ImportGuestCart folds the guest partition into a logged-in customer's cart and
// empties the guest partition. It returns the number of lines imported.
func (s *Store) ImportGuestCart(ctx context.Context) (int, error) {
	if !s.IsAuthenticated(ctx) {
		return 0, domain.ErrNotAuthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return 0, domain.ErrNotAuthenticated
	}
	if s.session.User.IsAdmin {
		return 0, domain.ErrForbidden
	}

	guest := domain.NewCart(domain.GuestPartition, s.loadPartition(ctx, domain.GuestPartition))
	if guest.IsEmpty() {
		return 0, nil
	}
	s.cart.Merge(guest)
	s.flushLocked(ctx)
	s.deletePartition(ctx, domain.GuestPartition)
	return guest.Len(), nil
}

func (s *Store) establish(ctx context.Context, resp *transport.TokenResponse, opts transport.IdentityOptions, resetCart bool) (*domain.User, error) {
	if resp == nil || resp.Token == "" {
		return nil, domain.ErrMissingToken
	}
	opts.Now = s.now()
	user := resp.Identity(opts)
	next := domain.NewSession(resp.Token, user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = next
	if err := s.sessions.Save(ctx, next); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}

	partition := next.PartitionKey()
	if resetCart {
		s.deletePartition(ctx, partition)
		s.cart = domain.NewCart(partition, nil)
	} else {
		s.repointLocked(ctx, partition)
	}

	s.logger.Info("session established",
		zap.Int64("user_id", user.ID),
		zap.Bool("is_admin", user.IsAdmin),
		zap.String("partition", partition),
	)
	out := next.User
	return &out, nil
}

func (s *Store) clearLocked(ctx context.Context) {
	s.session = nil
	s.clearPersistedSession(ctx)
	s.repointLocked(ctx, domain.GuestPartition)
}

func (s *Store) clearPersistedSession(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

// repointLocked replaces the in-memory cart with the persisted lines of partition.
func (s *Store) repointLocked(ctx context.Context, partition string) {
	s.cart = domain.NewCart(partition, s.loadPartition(ctx, partition))
}

func (s *Store) loadPartition(ctx context.Context, partition string) []domain.CartItem {
	items, err := s.carts.Load(ctx, partition)
	if err != nil {
		s.logger.Warn("discarding unreadable cart", zap.String("partition", partition), zap.Error(err))
		return nil
	}
	return items
}

func (s *Store) flushLocked(ctx context.Context) {
	if err := s.carts.Save(ctx, s.cart.Partition, s.cart.Items()); err != nil {
		s.logger.Warn("failed to persist cart", zap.String("partition", s.cart.Partition), zap.Error(err))
	}
}

func (s *Store) deletePartition(ctx context.Context, partition string) {
	if err := s.carts.Delete(ctx, partition); err != nil {
		s.logger.Warn("failed to remove cart", zap.String("partition", partition), zap.Error(err))
	}
}
