package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	in := []byte("abc")
	require.NoError(t, store.Set(ctx, "token", in))
	in[0] = 'x'

	out, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[0] = 'y'
	again, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestStore_RemoveAndKeys(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Set(ctx, "user", []byte("{}")))
	require.NoError(t, store.Set(ctx, "cartItems_guest", []byte("[]")))

	assert.Equal(t, []string{"cartItems_guest", "user"}, store.Keys())

	require.NoError(t, store.Remove(ctx, "user"))
	require.NoError(t, store.Remove(ctx, "user"))
	assert.False(t, store.Has("user"))
	_, err := store.Get(ctx, "user")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStore_FailWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Set(ctx, "token", []byte("abc")))

	boom := errors.New("disk full")
	store.FailWrites = boom
	assert.ErrorIs(t, store.Set(ctx, "token", []byte("def")), boom)
	assert.ErrorIs(t, store.Remove(ctx, "token"), boom)
	assert.True(t, store.Has("token"))
}
