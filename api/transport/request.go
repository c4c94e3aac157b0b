package transport

import (
	"encoding/json"

	"github.com/fastygo/storefront/domain"
)

type StatusUpdateRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type StockUpdateRequest struct {
	Stock int `json:"stock"`
}

type ProductImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// ProductRequest is the admin create/update body for a product.
type ProductRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price" validate:"required,money"`
	Stock       int         `json:"stock" validate:"gte=0"`
	ImageURL    string      `json:"imageUrl,omitempty" validate:"omitempty,url"`
	CategoryID  int64       `json:"categoryId,omitempty" validate:"gte=0"`
}

// CategoryRequest is the admin create/update body for a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty"`
}
