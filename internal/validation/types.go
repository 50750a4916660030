package validation

// AddToCartRequest is the payload for POST /cart/items.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`       // opaque catalog id
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"` // defaults to 1 when omitted
}

// SetQuantityRequest is the payload for PUT /cart/items/:id. A quantity of
// zero removes the line, so no minimum applies.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CheckoutRequest is the payload for POST /checkout.
type CheckoutRequest struct {
	FullName      string `json:"fullName" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	PostalCode    string `json:"postalCode" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=card cod"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// OTPRequest serves both verify and resend; Code is required only on verify.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code,omitempty"`
}

// OrderStatusUpdateRequest is the payload for PUT /delivery/orders/:id/status.
// Agents move orders forward; cancellation stays with the customer and admin.
type OrderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=processing in_transit delivered"`
}

// WishlistAddRequest is the payload for POST /wishlist.
type WishlistAddRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
