// Package service holds typed wrappers over the storefront REST API.
package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fastygo/storefront/api/gateway"
)

// Requester is the slice of the gateway the wrappers need.
type Requester interface {
	Do(ctx context.Context, r gateway.Request, out interface{}) error
}

// PageQuery selects one zero-based page of a paginated listing. A zero Size leaves the server default.
type PageQuery struct {
	Page int
	Size int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page >= 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	return v
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
