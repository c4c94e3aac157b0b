package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

func TestAttach_AddsDeadlineAndRequestID(t *testing.T) {
	ctx, cancel := NewAdapter(time.Second).Attach(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	assert.Len(t, appLogger.RequestID(ctx), 36)
}

func TestAttach_KeepsExistingRequestIDAndEarlierDeadline(t *testing.T) {
	parent, cancelParent := context.WithTimeout(appLogger.ContextWithRequestID(context.Background(), "req-7"), 10*time.Millisecond)
	defer cancelParent()

	ctx, cancel := NewAdapter(time.Minute).Attach(parent)
	defer cancel()

	parentDeadline, _ := parent.Deadline()
	deadline, _ := ctx.Deadline()
	assert.Equal(t, parentDeadline, deadline)
	assert.Equal(t, "req-7", appLogger.RequestID(ctx))
}

func TestNewAdapter_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewAdapter(0).Timeout())
}
