// Package orders reads and cancels placed orders through the order backend,
// mapping backend statuses onto the storefront's coarser tracking states.
package orders

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/revcart/storefront-gateway/internal/backend"
)

// Status is the storefront-facing tracking state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusInTransit  Status = "in_transit"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Item is one line of a placed order.
type Item struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the storefront view of a placed order.
type Order struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	Status            Status          `json:"status"`
	Items             []Item          `json:"items"`
	Total             decimal.Decimal `json:"total"`
	DeliveryAddress   string          `json:"deliveryAddress"`
	DeliveryAgentName string          `json:"deliveryAgentName,omitempty"`
}

// Backend DTO shapes.
type orderDTO struct {
	ID                int64           `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	ShippingAddress   addressDTO      `json:"shippingAddress"`
	Items             []orderItemDTO  `json:"items"`
	DeliveryAgentName string          `json:"deliveryAgentName"`
}

type addressDTO struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type orderItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type pagedOrders struct {
	Content []orderDTO `json:"content"`
}

// Client talks to the order backend.
type Client struct {
	api *backend.Client
}

func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

// ListMine fetches the authenticated user's orders.
func (c *Client) ListMine(ctx context.Context, page, size int) ([]Order, error) {
	if size <= 0 {
		size = 100
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var paged pagedOrders
	if err := c.api.Do(ctx, http.MethodGet, "/api/orders?"+q.Encode(), nil, &paged); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]Order, 0, len(paged.Content))
	for _, dto := range paged.Content {
		orders = append(orders, mapOrder(dto))
	}
	return orders, nil
}

// ListAll fetches orders across all users. Admin only; the backend enforces
// the role on its side as well.
func (c *Client) ListAll(ctx context.Context, page, size int) ([]Order, error) {
	if size <= 0 {
		size = 100
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var paged pagedOrders
	if err := c.api.Do(ctx, http.MethodGet, "/api/admin/orders?"+q.Encode(), nil, &paged); err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}

	orders := make([]Order, 0, len(paged.Content))
	for _, dto := range paged.Content {
		orders = append(orders, mapOrder(dto))
	}
	return orders, nil
}

// Get fetches one order by id.
func (c *Client) Get(ctx context.Context, orderID string) (*Order, error) {
	var dto orderDTO
	path := "/api/orders/" + url.PathEscape(orderID)
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	order := mapOrder(dto)
	return &order, nil
}

// Cancel cancels an order. The backend answers with the uniform envelope.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	path := "/api/orders/" + url.PathEscape(orderID) + "/cancel"
	if err := c.api.DoEnveloped(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// ListAssigned fetches the orders assigned to the authenticated delivery
// agent, newest first per the backend's default ordering.
func (c *Client) ListAssigned(ctx context.Context) ([]Order, error) {
	var paged pagedOrders
	if err := c.api.Do(ctx, http.MethodGet, "/api/delivery/orders", nil, &paged); err != nil {
		return nil, fmt.Errorf("list assigned orders: %w", err)
	}

	orders := make([]Order, 0, len(paged.Content))
	for _, dto := range paged.Content {
		orders = append(orders, mapOrder(dto))
	}
	return orders, nil
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an assigned order to a new tracking state. The backend
// enforces which transitions the agent may make.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	path := "/api/delivery/orders/" + url.PathEscape(orderID) + "/status"
	body := statusUpdateRequest{Status: backendStatus(status)}
	if err := c.api.DoEnveloped(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("update order %s status: %w", orderID, err)
	}
	return nil
}

// mapOrder converts the backend DTO into the storefront view.
func mapOrder(dto orderDTO) Order {
	street := dto.ShippingAddress.Line1
	if dto.ShippingAddress.Line2 != "" {
		street += ", " + dto.ShippingAddress.Line2
	}
	addressParts := []string{street, dto.ShippingAddress.City,
		strings.TrimSpace(dto.ShippingAddress.State + " " + dto.ShippingAddress.PostalCode)}

	items := make([]Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		items = append(items, Item{
			ProductID: strconv.FormatInt(it.ProductID, 10),
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	return Order{
		ID:                strconv.FormatInt(dto.ID, 10),
		Date:              dto.CreatedAt.UTC().Format("2006-01-02"),
		Status:            mapStatus(dto.Status),
		Items:             items,
		Total:             dto.TotalAmount,
		DeliveryAddress:   strings.Join(addressParts, ", "),
		DeliveryAgentName: dto.DeliveryAgentName,
	}
}

// mapStatus folds backend lifecycle states into tracking states. Unknown
// statuses read as processing rather than erroring out a whole listing.
func mapStatus(s string) Status {
	switch s {
	case "PLACED", "PACKED":
		return StatusProcessing
	case "OUT_FOR_DELIVERY":
		return StatusInTransit
	case "DELIVERED":
		return StatusDelivered
	case "CANCELLED":
		return StatusCancelled
	default:
		return StatusProcessing
	}
}

// backendStatus is the wire form of a tracking state, the inverse of the
// mapStatus folding. Processing writes back as PACKED: PLACED is the
// order-creation state and never set by an agent.
func backendStatus(s Status) string {
	switch s {
	case StatusProcessing:
		return "PACKED"
	case StatusInTransit:
		return "OUT_FOR_DELIVERY"
	case StatusDelivered:
		return "DELIVERED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return strings.ToUpper(string(s))
	}
}
