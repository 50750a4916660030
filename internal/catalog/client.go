// Package catalog is the REST client for the product catalog backend.
// Catalog reads return bare payloads, not the {success, message, data}
// envelope.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/revcart/storefront-gateway/internal/backend"
)

// Product is a catalog read. AvailableQuantity is a point-in-time value with
// no freshness guarantee beyond "fetched most recently before use".
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Category          string          `json:"category"`
	Image             string          `json:"image"`
	Unit              string          `json:"unit"`
	InStock           bool            `json:"inStock"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// ListOptions filters and pages a catalog listing.
type ListOptions struct {
	Search   string
	Category string
	Page     int
	Size     int
}

// Page is the paged listing shape returned by the catalog.
type Page struct {
	Content       []Product `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
}

// Client reads products from the catalog backend.
type Client struct {
	api *backend.Client
}

func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

// Get fetches one product by its opaque storefront id.
func (c *Client) Get(ctx context.Context, productID string) (*Product, error) {
	var p Product
	path := "/api/products/" + url.PathEscape(productID)
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return &p, nil
}

// List fetches a filtered, paged product listing.
func (c *Client) List(ctx context.Context, opts ListOptions) (*Page, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	q.Set("page", strconv.Itoa(opts.Page))
	size := opts.Size
	if size <= 0 {
		size = 20
	}
	q.Set("size", strconv.Itoa(size))

	var page Page
	if err := c.api.Do(ctx, http.MethodGet, "/api/products?"+q.Encode(), nil, &page); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &page, nil
}
