// Package gateway is the single outbound HTTP access point to the storefront API.
// It attaches the bearer credential to every call and classifies each response
// with Evaluate; reacting to an invalidated session is left to the registered handler.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// CredentialSource supplies the bearer credential, empty when nobody is logged in.
type CredentialSource interface {
	Credential() string
}

// InvalidationHandler reacts to a 401 on a non-exempt endpoint.
type InvalidationHandler func(ctx context.Context, path string)

// Request describes one outbound call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Body   interface{}
	Query  url.Values
}

// Config controls the underlying fasthttp client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	MaxConns  int
	UserAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithDial routes connections through dial, e.g. an in-memory listener in tests.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) {
		c.http.Dial = dial
	}
}

// Client is the gateway. It never writes a credential.
type Client struct {
	baseURL     string
	http        *fasthttp.Client
	adapter     *httpcontext.Adapter
	credentials CredentialSource
	logger      *zap.Logger

	mu       sync.RWMutex
	handlers []InvalidationHandler
}

// New builds a gateway Client. credentials may be nil for unauthenticated use.
func New(cfg Config, credentials CredentialSource, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 16
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "storefront-client"
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &fasthttp.Client{
			Name:                     cfg.UserAgent,
			MaxConnsPerHost:          cfg.MaxConns,
			ReadTimeout:              cfg.Timeout,
			WriteTimeout:             cfg.Timeout,
			NoDefaultUserAgentHeader: false,
		},
		adapter:     httpcontext.NewAdapter(cfg.Timeout),
		credentials: credentials,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionInvalidated registers a handler run before ErrSessionInvalidated is returned.
func (c *Client) OnSessionInvalidated(h InvalidationHandler) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: fasthttp.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: fasthttp.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: fasthttp.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{Method: fasthttp.MethodDelete, Path: path}, out)
}

// Do sends r and decodes a 2xx body into out when out is non-nil. Errors are
// *domain.Error values; a session invalidation returns an error matching
// domain.ErrSessionInvalidated after the handlers ran.
func (c *Client) Do(ctx context.Context, r Request, out interface{}) error {
	ctx, cancel := c.adapter.Attach(ctx)
	defer cancel()
	log := appLogger.WithRequestID(ctx, c.logger).With(zap.String("method", r.Method), zap.String("path", r.Path))

	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(r.Method)
	req.SetRequestURI(c.url(r.Path, r.Query))
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(httpcontext.HeaderRequestID, appLogger.RequestID(ctx))

	authenticated := false
	if c.credentials != nil {
		if token := c.credentials.Credential(); token != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
			authenticated = true
		}
	}

	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "unable to encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.adapter.Timeout())
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		log.Warn("request failed", zap.Bool("authenticated", authenticated), zap.Error(err))
		if errors.Is(err, fasthttp.ErrTimeout) {
			return domain.WrapError(domain.ErrCodeUnavailable, "the server took too long to respond", err)
		}
		return domain.WrapError(domain.ErrCodeUnavailable, "unable to reach the server", err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	outcome := Evaluate(r.Path, status, body)

	log = log.With(
		zap.Int("status", status),
		zap.Bool("authenticated", authenticated),
		zap.Duration("elapsed", time.Since(started)),
		zap.Stringer("outcome", outcome.Kind),
	)

	switch outcome.Kind {
	case OutcomeSuccess:
		log.Debug("request completed")
		return decode(body, out)
	case OutcomeSessionInvalidated:
		log.Warn("session rejected by server")
		c.notifyInvalidated(ctx, r.Path)
		return outcome.Err
	case OutcomeForbidden:
		log.Info("request forbidden")
		return outcome.Err
	default:
		log.Info("request returned error", zap.String("message", outcome.Err.Message))
		return outcome.Err
	}
}

func (c *Client) notifyInvalidated(ctx context.Context, path string) {
	c.mu.RLock()
	handlers := append([]InvalidationHandler(nil), c.handlers...)
	c.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, path)
	}
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func decode(body []byte, out interface{}) error {
	if out == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "unexpected response from server", err)
	}
	return nil
}
