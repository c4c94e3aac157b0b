package local

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type cartRepository struct {
	store repository.KeyValueStore
}

// NewCartRepository stores each partition as a JSON array under cartItems_<partition>.
func NewCartRepository(store repository.KeyValueStore) repository.CartRepository {
	return &cartRepository{store: store}
}

func (r *cartRepository) Load(ctx context.Context, partition string) ([]domain.CartItem, error) {
	raw, err := r.store.Get(ctx, domain.CartStorageKey(partition))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return []domain.CartItem{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []domain.CartItem{}, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "stored cart is malformed", err)
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (r *cartRepository) Save(ctx context.Context, partition string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, domain.CartStorageKey(partition), payload)
}

func (r *cartRepository) Delete(ctx context.Context, partition string) error {
	return r.store.Remove(ctx, domain.CartStorageKey(partition))
}
