package service

import (
	"context"
	"net/http"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
)

// Auth covers customer and admin authentication endpoints.
type Auth struct {
	api Requester
}

func NewAuth(api Requester) *Auth {
	return &Auth{api: api}
}

func (s *Auth) Login(ctx context.Context, creds domain.Credentials) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users/login", Body: creds}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) Register(ctx context.Context, form domain.Registration) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users/register", Body: form}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) AdminLogin(ctx context.Context, creds domain.Credentials) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/admin/login", Body: creds}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the credential currently attached by the gateway.
func (s *Auth) Logout(ctx context.Context) error {
	return s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/auth-tokens/logout"}, nil)
}

// Refresh exchanges the current credential for a new one. Nothing calls it automatically.
func (s *Auth) Refresh(ctx context.Context) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/auth-tokens/refresh"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
