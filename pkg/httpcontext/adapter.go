package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// HeaderRequestID carries the request id to the remote API.
const HeaderRequestID = "X-Request-ID"

// Adapter derives per-call contexts for outbound requests: a deadline plus a request id.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Timeout returns the per-call deadline.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach bounds parent by the adapter timeout (unless parent already has an earlier
// deadline) and makes sure it carries a request id.
func (a *Adapter) Attach(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	stdCtx, cancel := context.WithTimeout(parent, a.timeout)

	if reqID := strings.TrimSpace(appLogger.RequestID(stdCtx)); reqID == "" {
		stdCtx = appLogger.ContextWithRequestID(stdCtx, uuid.NewString())
	}

	return stdCtx, cancel
}
