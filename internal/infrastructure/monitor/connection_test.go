package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/storefront/domain"
)

func ok(context.Context) error { return nil }

func TestCheck_Healthy(t *testing.T) {
	status := New(ok, ok, "memory", time.Second, nil).Check(context.Background())
	assert.True(t, status.Healthy())
	assert.Equal(t, "memory", status.StorageDriver)
	assert.NotEmpty(t, status.Latency)
	assert.False(t, status.LastCheck.IsZero())
}

func TestCheck_ReportsFailures(t *testing.T) {
	api := func(context.Context) error {
		return domain.NewError(domain.ErrCodeUnavailable, "unable to reach the server")
	}
	storage := func(context.Context) error { return errors.New("database not open") }

	status := New(api, storage, "bolt", time.Second, nil).Check(context.Background())
	assert.False(t, status.Healthy())
	assert.Equal(t, "unable to reach the server", status.APIError)
	assert.Equal(t, "database not open", status.StorageError)
}

func TestCheck_MissingProbe(t *testing.T) {
	status := New(nil, ok, "memory", 0, nil).Check(context.Background())
	assert.False(t, status.API)
	assert.Equal(t, "not configured", status.APIError)
	assert.True(t, status.Storage)
}

func TestCheck_ProbeTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	status := New(slow, ok, "memory", 10*time.Millisecond, nil).Check(context.Background())
	assert.False(t, status.API)
	assert.Contains(t, status.APIError, "deadline")
}
