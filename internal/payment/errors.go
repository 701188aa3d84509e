package payment

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrMissingSecret    = errors.New("webhook secret is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// APIError is a non-2xx answer (or decode failure) from Coinbase Commerce.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinbase commerce error: status %d: %s", e.StatusCode, e.Body)
}

// InitiationError wraps whatever went wrong while initiating a payment. The
// host surfaces it to the payer as a generic failure message.
type InitiationError struct {
	InvoiceID uint
	Err       error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("payment processing failed for invoice %d: %v", e.InvoiceID, e.Err)
}

func (e *InitiationError) Unwrap() error {
	return e.Err
}
