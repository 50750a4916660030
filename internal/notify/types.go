package notify

import "time"

// Event types carried on the order-events queue.
const (
	EventOrderPlaced   = "ORDER_PLACED"
	EventPaymentDone   = "PAYMENT_CONFIRMED"
	EventOrderCanceled = "ORDER_CANCELLED"
)

// OrderEvent is the payload published by the checkout flow and consumed by
// the notification worker.
type OrderEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OrderID       int64     `json:"order_id"`
	UserID        string    `json:"user_id"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notification is the record surfaced to the storefront's notification feed.
type Notification struct {
	NotificationID string    `dynamodbav:"notification_id" json:"id"` // PK
	UserID         string    `dynamodbav:"user_id" json:"-"`
	Type           string    `dynamodbav:"type" json:"type"`
	Message        string    `dynamodbav:"message" json:"message"`
	Read           bool      `dynamodbav:"read" json:"read"`
	CreatedAt      time.Time `dynamodbav:"created_at" json:"createdAt"`
}
