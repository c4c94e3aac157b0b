package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
)

// Orders covers order submission, tracking and the admin order ledger.
type Orders struct {
	api Requester
}

func NewOrders(api Requester) *Orders {
	return &Orders{api: api}
}

func (s *Orders) Create(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var out domain.Order
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/orders", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Orders) Track(ctx context.Context, trackingID string) (*domain.Order, error) {
	var out domain.Order
	path := "/orders/track/" + url.PathEscape(trackingID)
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Orders) Mine(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/orders/my"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminList pages through all orders, optionally filtered by status.
func (s *Orders) AdminList(ctx context.Context, page PageQuery, status domain.OrderStatus) (*domain.Page[domain.Order], error) {
	query := page.values()
	if status != "" {
		query.Set("status", string(status))
	}
	var out domain.Page[domain.Order]
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/orders", Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Orders) AdminGet(ctx context.Context, orderID int64) (*domain.Order, error) {
	var out domain.Order
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/orders/" + id(orderID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Orders) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	var out domain.Order
	req := gateway.Request{
		Method: http.MethodPut,
		Path:   "/admin/orders/" + id(orderID) + "/status",
		Body:   transport.StatusUpdateRequest{Status: status},
	}
	if err := s.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
