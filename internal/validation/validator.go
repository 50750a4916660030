package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// `required` accepts whitespace-only strings; the checkout entry guard
	// must not, so the address fields get a trim check on top.
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	fields := map[string]string{
		"fullName":   req.FullName,
		"phone":      req.Phone,
		"address":    req.Address,
		"city":       req.City,
		"postalCode": req.PostalCode,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			sl.ReportError(value, name, name, "notblank", "")
		}
	}
}
