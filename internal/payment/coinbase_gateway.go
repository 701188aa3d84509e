package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-be/internal/config"
	"billing-be/internal/invoice"
	"billing-be/internal/logger"
	"billing-be/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type coinbaseGateway struct {
	client        *Client
	repo          invoice.Repository
	webhookSecret string
	appBaseURL    string
	reuseWindow   time.Duration
	testMode      bool
}

func NewCoinbaseGateway(cfg *config.Config, repo invoice.Repository) Gateway {
	return &coinbaseGateway{
		client:        NewClient(cfg.CoinbaseAPIKey),
		repo:          repo,
		webhookSecret: cfg.CoinbaseWebhookSecret,
		appBaseURL:    cfg.AppBaseURL,
		reuseWindow:   time.Duration(cfg.ChargeReuseHours) * time.Hour,
		testMode:      cfg.CoinbaseTestMode,
	}
}

// Pay implements the charge-reuse flow: hand back a recent unpaid charge
// with a matching amount, otherwise create a fresh one and record a
// placeholder linkage so the webhook can find the invoice later.
func (g *coinbaseGateway) Pay(ctx context.Context, inv *invoice.Invoice, total decimal.Decimal) (string, error) {
	url, err := g.pay(ctx, inv, total)
	if err != nil {
		metrics.PaymentInitiationFailures.Inc()
		return "", &InitiationError{InvoiceID: inv.ID, Err: err}
	}
	return url, nil
}

func (g *coinbaseGateway) pay(ctx context.Context, inv *invoice.Invoice, total decimal.Decimal) (string, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("invoice_id", inv.ID))

	if g.reuseWindow > 0 {
		linkage, err := g.repo.FindRecentLinkage(ctx, inv.ID, time.Now().Add(-g.reuseWindow))
		switch {
		case err == nil:
			if url, ok := g.reusableChargeURL(ctx, log, linkage, total); ok {
				metrics.ChargesReused.Inc()
				return url, nil
			}
		case errors.Is(err, invoice.ErrLinkageNotFound):
			// No recent charge; fall through to create one.
		default:
			return "", err
		}
	}

	amount := total.StringFixed(2)
	charge, err := g.client.CreateCharge(ctx, CreateChargeRequest{
		Name:        fmt.Sprintf("Invoice #%d", inv.ID),
		Description: fmt.Sprintf("Payment for invoice #%d", inv.ID),
		PricingType: "fixed_price",
		LocalPrice: LocalPrice{
			Amount:   amount,
			Currency: inv.Currency(),
		},
		Metadata: ChargeMetadata{
			InvoiceID: inv.ID,
			UserID:    inv.UserID,
			Total:     amount,
		},
		RedirectURL: g.invoiceURL(inv.ID),
		CancelURL:   g.invoiceURL(inv.ID),
	})
	if err != nil {
		log.Error("Coinbase Commerce charge creation failed", zap.Error(err))
		return "", err
	}

	// Temporary linkage record so the webhook can map the charge id back to
	// the invoice before payment completes.
	if err := g.repo.CreatePlaceholderLinkage(ctx, inv.ID, charge.ID); err != nil {
		return "", err
	}

	metrics.ChargesCreated.Inc()
	log.Info("created new Coinbase Commerce charge",
		zap.String("charge_id", charge.ID),
		zap.String("amount", amount),
		zap.String("currency", inv.Currency()),
	)

	return charge.HostedURL, nil
}

// reusableChargeURL checks whether the remote charge behind the linkage is
// still payable for the requested total. Fetch failures never propagate;
// reuse is best-effort.
func (g *coinbaseGateway) reusableChargeURL(ctx context.Context, log *zap.Logger, linkage *invoice.Transaction, total decimal.Decimal) (string, bool) {
	charge, err := g.client.GetCharge(ctx, linkage.TransactionID)
	if err != nil {
		log.Warn("failed to check existing charge, creating new one",
			zap.String("charge_id", linkage.TransactionID),
			zap.Error(err),
		)
		return "", false
	}

	latestStatus := charge.LatestStatus()
	match := amountsMatch(charge.Pricing.Local.Amount, total)

	if latestStatus == ChargeStatusCompleted || !match {
		reason := "amount_mismatch"
		if latestStatus == ChargeStatusCompleted {
			reason = "completed"
		}
		log.Info("existing charge not suitable for reuse",
			zap.String("charge_id", charge.ID),
			zap.String("latest_status", latestStatus),
			zap.String("charge_amount", charge.Pricing.Local.Amount),
			zap.String("current_total", total.StringFixed(2)),
			zap.String("reason", reason),
		)
		return "", false
	}

	log.Info("reusing existing charge",
		zap.String("charge_id", charge.ID),
		zap.String("latest_status", latestStatus),
		zap.String("charge_amount", charge.Pricing.Local.Amount),
		zap.String("current_total", total.StringFixed(2)),
		zap.Duration("reuse_window", g.reuseWindow),
	)

	return charge.HostedURL, true
}

func (g *coinbaseGateway) VerifyWebhookSignature(payload []byte, signature string) error {
	return VerifySignature(payload, signature, g.webhookSecret)
}

func (g *coinbaseGateway) invoiceURL(invoiceID uint) string {
	return fmt.Sprintf("%s/invoices/%d", g.appBaseURL, invoiceID)
}

// amountsMatch compares the remote local-currency amount against the total,
// both normalized to exactly two decimal places. String comparison, no
// epsilon: this mirrors Coinbase Commerce's own formatting convention.
func amountsMatch(remote string, total decimal.Decimal) bool {
	d, err := decimal.NewFromString(remote)
	if err != nil {
		return false
	}
	return d.StringFixed(2) == total.StringFixed(2)
}
