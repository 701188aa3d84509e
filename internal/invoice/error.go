package invoice

import "errors"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrLinkageNotFound = errors.New("transaction linkage not found")
	ErrAlreadySettled  = errors.New("payment already settled for this charge")
)
