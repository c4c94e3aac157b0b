package repository

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// Storage keys shared by every durable-storage driver.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// KeyValueStore is the durable local storage capability. Get returns
// domain.ErrKeyNotFound when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// SessionRepository persists the credential and identity as one unit.
type SessionRepository interface {
	// Load returns nil, nil when no complete session is stored.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// CartRepository persists one cart partition per key.
type CartRepository interface {
	Load(ctx context.Context, partition string) ([]domain.CartItem, error)
	Save(ctx context.Context, partition string, items []domain.CartItem) error
	Delete(ctx context.Context, partition string) error
}
