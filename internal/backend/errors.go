package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classified failure from the commerce backend. Status carries the
// HTTP status (0 for transport-level failures), Message the backend's business
// message when one was present in the response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// AsError extracts a *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsNotFound reports a 404 response (e.g., product deleted since it was carted).
func IsNotFound(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusNotFound
}

// IsValidation reports a 400 response carrying a business/validation message.
func IsValidation(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusBadRequest
}

// IsUnauthorized reports a 401. The session must be cleared when this is seen.
func IsUnauthorized(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusUnauthorized
}

// IsForbidden reports a 403.
func IsForbidden(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusForbidden
}

// IsServerFault reports a 5xx response or a transport-level failure.
func IsServerFault(err error) bool {
	be, ok := AsError(err)
	if !ok {
		return false
	}
	return be.Status == 0 || be.Status >= 500
}

// BusinessMessage returns the backend's verbatim message for a 400 business
// error, or fallback when none was provided.
func BusinessMessage(err error, fallback string) string {
	if be, ok := AsError(err); ok && be.Message != "" {
		return be.Message
	}
	return fallback
}
