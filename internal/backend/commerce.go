package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Address is the shipping address persisted server-side before checkout.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// PlacedOrder is the subset of the backend order returned by checkout.
type PlacedOrder struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
}

// PaymentIntent is the gateway handoff returned by initiate-payment.
type PaymentIntent struct {
	GatewayOrderID string          `json:"gatewayOrderId"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Key            string          `json:"key"`
}

// GatewayResponse is the opaque payload the payment widget hands back on
// completion; it is forwarded to the backend verbatim for verification.
type GatewayResponse map[string]string

// ClearCart empties the server-side cart for the authenticated user.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

type addCartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddCartItem appends one line to the server-side cart.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.Do(ctx, http.MethodPost, "/api/cart/items", addCartItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

// CreateAddress persists a shipping address and returns its server id.
func (c *Client) CreateAddress(ctx context.Context, addr Address) (int64, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.Do(ctx, http.MethodPost, "/api/addresses", addr, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

type checkoutRequest struct {
	AddressID     int64  `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout places an order against the server-side cart and address.
func (c *Client) Checkout(ctx context.Context, addressID int64, paymentMethod string) (*PlacedOrder, error) {
	var order PlacedOrder
	if err := c.Do(ctx, http.MethodPost, "/api/orders/checkout", checkoutRequest{AddressID: addressID, PaymentMethod: paymentMethod}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// InitiatePayment asks the backend to create a gateway order for orderID.
func (c *Client) InitiatePayment(ctx context.Context, orderID int64) (*PaymentIntent, error) {
	var intent PaymentIntent
	path := fmt.Sprintf("/api/orders/%d/initiate-payment", orderID)
	if err := c.Do(ctx, http.MethodPost, path, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// VerifyPayment confirms a gateway payment server-side.
func (c *Client) VerifyPayment(ctx context.Context, orderID int64, resp GatewayResponse) error {
	path := fmt.Sprintf("/api/orders/%d/verify-payment", orderID)
	return c.DoEnveloped(ctx, http.MethodPost, path, resp, nil)
}
