// Package auth is the client for the auth backend: login, signup and the OTP
// verification/resend steps. The bearer token it returns is persisted in the
// session store and attached to subsequent backend requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/session"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupData is the signup payload.
type SignupData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// User is the identity returned by the auth backend.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// Result is a successful authentication: identity plus bearer token.
type Result struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Client talks to the auth backend.
type Client struct {
	api *backend.Client
}

func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Result, error) {
	var res Result
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/login", creds, &res); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &res, nil
}

// Signup registers a new customer. The account stays pending until the OTP
// sent to the email is verified.
func (c *Client) Signup(ctx context.Context, data SignupData) (*Result, error) {
	var res Result
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/signup", data, &res); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &res, nil
}

type otpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

// VerifyOTP confirms the one-time code and returns the activated identity.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Result, error) {
	var res Result
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/verify-otp", otpRequest{Email: email, Code: code}, &res); err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return &res, nil
}

// ResendOTP asks the backend to send a fresh code.
func (c *Client) ResendOTP(ctx context.Context, email string) error {
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/resend-otp", otpRequest{Email: email}, nil); err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}
	return nil
}

// SessionRole normalizes the backend's role spelling ("CUSTOMER",
// "DELIVERY_AGENT") to the storefront role. Unknown roles read as customer.
func SessionRole(backendRole string) session.Role {
	switch strings.ToLower(backendRole) {
	case "admin":
		return session.RoleAdmin
	case "delivery_agent":
		return session.RoleDeliveryAgent
	default:
		return session.RoleCustomer
	}
}
