package validation

import (
	"testing"
)

func TestCheckoutRequest_Valid(t *testing.T) {
	v := New()

	req := CheckoutRequest{
		FullName:      "Asha Verma",
		Phone:         "555-0101",
		Address:       "12 Market Road",
		City:          "Pune",
		PostalCode:    "411001",
		PaymentMethod: "cod",
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCheckoutRequest_WhitespaceOnlyFieldRejected(t *testing.T) {
	v := New()

	req := CheckoutRequest{
		FullName:      "Asha Verma",
		Phone:         "555-0101",
		Address:       "   ",
		City:          "Pune",
		PostalCode:    "411001",
		PaymentMethod: "card",
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for whitespace-only address, got nil")
	}
}

func TestCheckoutRequest_UnknownPaymentMethod(t *testing.T) {
	v := New()

	req := CheckoutRequest{
		FullName:      "Asha Verma",
		Phone:         "555-0101",
		Address:       "12 Market Road",
		City:          "Pune",
		PostalCode:    "411001",
		PaymentMethod: "cheque",
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for unknown payment method, got nil")
	}
}

func TestAddToCartRequest_MissingProduct(t *testing.T) {
	v := New()

	req := AddToCartRequest{Quantity: 2}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for missing productId, got nil")
	}
}

func TestOrderStatusUpdateRequest_RejectsCancellation(t *testing.T) {
	v := New()

	if err := v.Struct(OrderStatusUpdateRequest{Status: "delivered"}); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := v.Struct(OrderStatusUpdateRequest{Status: "cancelled"}); err == nil {
		t.Fatal("expected validation error for cancellation by agent, got nil")
	}
}

func TestSignupRequest_ShortPassword(t *testing.T) {
	v := New()

	req := SignupRequest{Email: "a@b.com", Password: "short", Name: "Asha"}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for short password, got nil")
	}
}
