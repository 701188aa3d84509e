package payment

import (
	"context"

	"billing-be/internal/invoice"

	"github.com/shopspring/decimal"
)

// Gateway is the payment-gateway surface the billing application talks to.
type Gateway interface {
	// Pay returns a hosted URL for the payer to complete payment of total
	// against the invoice, reusing a recent unpaid charge when possible.
	Pay(ctx context.Context, inv *invoice.Invoice, total decimal.Decimal) (string, error)

	// VerifyWebhookSignature validates a raw webhook body against the
	// signature header value.
	VerifyWebhookSignature(payload []byte, signature string) error
}
