package service

import (
	"context"
	"net/http"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
)

// Admin covers the admin registry and activity log endpoints.
type Admin struct {
	api Requester
}

func NewAdmin(api Requester) *Admin {
	return &Admin{api: api}
}

// Exists reports whether any admin account has been created yet.
func (s *Admin) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/exists"}, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RegisterFirst bootstraps the first admin. The token is optional in the response.
func (s *Admin) RegisterFirst(ctx context.Context, form domain.Registration) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/admin/register-first", Body: form}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Admin) Profile(ctx context.Context) (*domain.Admin, error) {
	var out domain.Admin
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/profile"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Admin) List(ctx context.Context) ([]domain.Admin, error) {
	var out []domain.Admin
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/list"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates another admin; requires an admin session.
func (s *Admin) Register(ctx context.Context, form domain.Registration) (*domain.Admin, error) {
	var out domain.Admin
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/admin/register", Body: form}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Admin) ActivityLogs(ctx context.Context) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/activity-logs"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Admin) MyActivityLogs(ctx context.Context) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/activity-logs/my"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
