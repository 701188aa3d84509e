package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

type Invoice struct {
	ID           uint
	Number       string
	UserID       uint
	CurrencyCode string
	Total        decimal.Decimal
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Currency returns the invoice currency, defaulting to USD when unset.
func (i *Invoice) Currency() string {
	if i.CurrencyCode == "" {
		return "USD"
	}
	return i.CurrencyCode
}

// Transaction links an external gateway charge to an invoice. A row with
// amount 0 is a placeholder created when the charge is initiated; once the
// amount is nonzero it is the settled payment for that charge.
type Transaction struct {
	ID            uint
	InvoiceID     uint
	GatewayID     *uint
	Amount        decimal.Decimal
	Fee           *decimal.Decimal
	TransactionID string
	CreatedAt     time.Time
}

// Settled reports whether the transaction represents confirmed funds.
func (t *Transaction) Settled() bool {
	return t.Amount.IsPositive()
}
