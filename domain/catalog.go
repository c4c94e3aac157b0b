package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	CategoryID   int64           `json:"categoryId,omitempty"`
	CategoryName string          `json:"categoryName,omitempty"`
	Images       []ProductImage  `json:"images,omitempty"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
}

// MainImage returns the image flagged as main, falling back to ImageURL.
func (p *Product) MainImage() string {
	if p == nil {
		return ""
	}
	for _, img := range p.Images {
		if img.IsMain {
			return img.ImageURL
		}
	}
	return p.ImageURL
}

// InStock reports whether quantity units can be ordered.
func (p *Product) InStock(quantity int) bool {
	return p != nil && p.Stock >= quantity
}

type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	ImageURL  string `json:"imageUrl"`
	IsMain    bool   `json:"isMain"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Search     string
	CategoryID int64
	Page       int
	Size       int
}
