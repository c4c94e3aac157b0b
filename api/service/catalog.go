package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fastygo/storefront/api/gateway"
	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
)

// Products covers the public catalog and its admin management endpoints.
type Products struct {
	api Requester
}

func NewProducts(api Requester) *Products {
	return &Products{api: api}
}

// List pages through the catalog. A non-empty Search takes the search variant of the endpoint.
func (s *Products) List(ctx context.Context, filter domain.ProductFilter) (*domain.Page[domain.Product], error) {
	query := PageQuery{Page: filter.Page, Size: filter.Size}.values()
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.CategoryID > 0 {
		query.Set("categoryId", strconv.FormatInt(filter.CategoryID, 10))
	}
	var out domain.Page[domain.Product]
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/products", Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) Search(ctx context.Context, term string, page PageQuery) (*domain.Page[domain.Product], error) {
	return s.List(ctx, domain.ProductFilter{Search: term, Page: page.Page, Size: page.Size})
}

func (s *Products) Get(ctx context.Context, productID int64) (*domain.Product, error) {
	var out domain.Product
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/products/" + id(productID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) Create(ctx context.Context, req transport.ProductRequest) (*domain.Product, error) {
	var out domain.Product
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/admin/products", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) Update(ctx context.Context, productID int64, req transport.ProductRequest) (*domain.Product, error) {
	var out domain.Product
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPut, Path: "/admin/products/" + id(productID), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) UpdateStock(ctx context.Context, productID int64, stock int) (*domain.Product, error) {
	var out domain.Product
	req := gateway.Request{
		Method: http.MethodPatch,
		Path:   "/admin/products/" + id(productID) + "/stock",
		Body:   transport.StockUpdateRequest{Stock: stock},
	}
	if err := s.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) Delete(ctx context.Context, productID int64) error {
	return s.api.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: "/admin/products/" + id(productID)}, nil)
}

func (s *Products) AddImage(ctx context.Context, productID int64, imageURL string) (*domain.ProductImage, error) {
	var out domain.ProductImage
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   "/admin/products/" + id(productID) + "/images",
		Body:   transport.ProductImageRequest{ImageURL: imageURL},
	}
	if err := s.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Products) DeleteImage(ctx context.Context, imageID int64) error {
	return s.api.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: "/admin/products/images/" + id(imageID)}, nil)
}

func (s *Products) SetMainImage(ctx context.Context, imageID int64) error {
	return s.api.Do(ctx, gateway.Request{Method: http.MethodPatch, Path: "/admin/products/images/" + id(imageID) + "/main"}, nil)
}

// Categories covers category listing and admin management.
type Categories struct {
	api Requester
}

func NewCategories(api Requester) *Categories {
	return &Categories{api: api}
}

func (s *Categories) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Categories) Create(ctx context.Context, req transport.CategoryRequest) (*domain.Category, error) {
	var out domain.Category
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/admin/categories", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Categories) Update(ctx context.Context, categoryID int64, req transport.CategoryRequest) (*domain.Category, error) {
	var out domain.Category
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodPut, Path: "/admin/categories/" + id(categoryID), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Categories) Delete(ctx context.Context, categoryID int64) error {
	return s.api.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: "/admin/categories/" + id(categoryID)}, nil)
}
