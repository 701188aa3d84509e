package invoice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uint) (*Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status Status) error

	// FindInvoiceByChargeID locates the invoice owning any transaction
	// linkage with the given external charge id.
	FindInvoiceByChargeID(ctx context.Context, chargeID string) (*Invoice, error)

	// FindRecentLinkage returns the newest linkage record for the invoice
	// created at or after since.
	FindRecentLinkage(ctx context.Context, invoiceID uint, since time.Time) (*Transaction, error)

	// FindLinkage returns the unsettled placeholder (amount = 0) for the
	// charge id, if one exists.
	FindLinkage(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error)

	// FindSettledPayment returns the settled payment (amount > 0) for the
	// charge id, if one exists.
	FindSettledPayment(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error)

	CreatePlaceholderLinkage(ctx context.Context, invoiceID uint, chargeID string) error
	PromoteLinkageToSettled(ctx context.Context, linkageID uint, amount decimal.Decimal, gatewayID *uint) error
	CreateSettledPayment(ctx context.Context, invoiceID uint, chargeID string, amount decimal.Decimal, fee *decimal.Decimal) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO invoices (number, user_id, currency_code, total, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, inv.Number, inv.UserID, inv.Currency(), inv.Total, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
}

func (r *repository) GetInvoice(ctx context.Context, id uint) (*Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, currency_code, total, status, created_at, updated_at
		FROM invoices WHERE id = $1
	`, id)

	return scanInvoice(row)
}

func (r *repository) UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET status = $1, updated_at = now() WHERE id = $2
	`, status, invoiceID)
	return err
}

func (r *repository) FindInvoiceByChargeID(ctx context.Context, chargeID string) (*Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT i.id, i.number, i.user_id, i.currency_code, i.total, i.status, i.created_at, i.updated_at
		FROM invoices i
		JOIN invoice_transactions t ON t.invoice_id = i.id
		WHERE t.transaction_id = $1
		LIMIT 1
	`, chargeID)

	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *repository) FindRecentLinkage(ctx context.Context, invoiceID uint, since time.Time) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, gateway_id, amount, fee, transaction_id, created_at
		FROM invoice_transactions
		WHERE invoice_id = $1 AND transaction_id <> '' AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`, invoiceID, since)

	return scanTransaction(row)
}

func (r *repository) FindLinkage(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, gateway_id, amount, fee, transaction_id, created_at
		FROM invoice_transactions
		WHERE invoice_id = $1 AND transaction_id = $2 AND amount = 0
		LIMIT 1
	`, invoiceID, chargeID)

	return scanTransaction(row)
}

func (r *repository) FindSettledPayment(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, gateway_id, amount, fee, transaction_id, created_at
		FROM invoice_transactions
		WHERE invoice_id = $1 AND transaction_id = $2 AND amount > 0
		LIMIT 1
	`, invoiceID, chargeID)

	return scanTransaction(row)
}

func (r *repository) CreatePlaceholderLinkage(ctx context.Context, invoiceID uint, chargeID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoice_transactions (invoice_id, gateway_id, amount, fee, transaction_id)
		VALUES ($1, NULL, 0, NULL, $2)
	`, invoiceID, chargeID)
	return err
}

func (r *repository) PromoteLinkageToSettled(ctx context.Context, linkageID uint, amount decimal.Decimal, gatewayID *uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoice_transactions SET amount = $1, gateway_id = $2 WHERE id = $3
	`, amount, gatewayID, linkageID)
	return mapUniqueViolation(err)
}

func (r *repository) CreateSettledPayment(ctx context.Context, invoiceID uint, chargeID string, amount decimal.Decimal, fee *decimal.Decimal) error {
	var nullFee decimal.NullDecimal
	if fee != nil {
		nullFee = decimal.NullDecimal{Decimal: *fee, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoice_transactions (invoice_id, gateway_id, amount, fee, transaction_id)
		VALUES ($1, NULL, $2, $3, $4)
	`, invoiceID, amount, nullFee, chargeID)
	return mapUniqueViolation(err)
}

func scanInvoice(row *sql.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.UserID, &inv.CurrencyCode,
		&inv.Total, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanTransaction(row *sql.Row) (*Transaction, error) {
	var (
		t         Transaction
		gatewayID sql.NullInt64
		fee       decimal.NullDecimal
	)
	err := row.Scan(
		&t.ID, &t.InvoiceID, &gatewayID, &t.Amount, &fee,
		&t.TransactionID, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkageNotFound
	}
	if err != nil {
		return nil, err
	}

	if gatewayID.Valid {
		id := uint(gatewayID.Int64)
		t.GatewayID = &id
	}
	if fee.Valid {
		t.Fee = &fee.Decimal
	}

	return &t, nil
}

// mapUniqueViolation converts the settled-payment unique index violation
// into ErrAlreadySettled so a duplicate confirmation racing this write is
// acknowledged instead of retried.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadySettled
	}
	return err
}
