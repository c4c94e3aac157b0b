package redis

import (
	"context"
	"errors"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

// Store keeps client state in Redis so several shells on one device share it.
// Keys never expire; identity expiry is enforced lazily by the session store.
type Store struct {
	client *redislib.Client
	prefix string
}

// NewStore creates a Redis-backed key/value store under prefix.
func NewStore(client *redislib.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "storefront:"
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks the connection for the status probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(key string) string {
	return fmt.Sprintf("%s%s", s.prefix, key)
}

var _ repository.KeyValueStore = (*Store)(nil)
