package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/repository/memory"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	repo := NewSessionRepository(kv)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	in := domain.NewSession("tok", &domain.User{ID: 5, Name: "Ann", Email: "ann@example.com", ExpiresAt: exp})
	require.NoError(t, repo.Save(ctx, in))

	raw, err := kv.Get(ctx, repository.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(raw))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, int64(5), out.User.ID)
	assert.True(t, out.User.ExpiresAt.Equal(exp))
}

func TestSessionRepository_EmptyIsNil(t *testing.T) {
	out, err := NewSessionRepository(memory.NewStore()).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSessionRepository_HalfSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, repository.KeyToken, []byte("orphan")))

	out, err := NewSessionRepository(kv).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, kv.Has(repository.KeyToken))
}

func TestSessionRepository_MalformedUser(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, repository.KeyToken, []byte("tok")))
	require.NoError(t, kv.Set(ctx, repository.KeyUser, []byte("{broken")))

	_, err := NewSessionRepository(kv).Load(ctx)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestSessionRepository_SaveRejectsIncompleteSession(t *testing.T) {
	err := NewSessionRepository(memory.NewStore()).Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestSessionRepository_ClearRemovesBoth(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	repo := NewSessionRepository(kv)
	require.NoError(t, repo.Save(ctx, domain.NewSession("tok", &domain.User{ID: 1})))

	require.NoError(t, repo.Clear(ctx))
	assert.Empty(t, kv.Keys())
}

func TestSessionRepository_SaveFailureSurfaces(t *testing.T) {
	kv := memory.NewStore()
	kv.FailWrites = errors.New("disk full")
	err := NewSessionRepository(kv).Save(context.Background(), domain.NewSession("tok", &domain.User{ID: 1}))
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, kv.Keys())
}
