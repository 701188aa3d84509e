package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"billing-be/internal/invoice"
	"billing-be/internal/logger"
	"billing-be/internal/metrics"
	"billing-be/internal/payment"
	"billing-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-CC-Webhook-Signature"

// Handler reconciles invoice state from signed Coinbase Commerce events.
type Handler struct {
	Repo    invoice.Repository
	Gateway payment.Gateway

	// GatewayID is stamped on promoted payments so settled transactions
	// point back at the registered gateway row. Nullable.
	GatewayID *uint
}

func NewHandler(repo invoice.Repository, gateway payment.Gateway, gatewayID *uint) *Handler {
	return &Handler{
		Repo:      repo,
		Gateway:   gateway,
		GatewayID: gatewayID,
	}
}

// ServeHTTP handles POST /extensions/coinbasecommerce/webhook. The
// signature check runs over the raw body before anything is parsed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	rawPayload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSONError(w, "Invalid signature", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if err := h.Gateway.VerifyWebhookSignature(rawPayload, signature); err != nil {
		log.Error("Coinbase Commerce webhook: invalid signature",
			zap.String("signature", signature),
			zap.Int("payload_length", len(rawPayload)),
			zap.Error(err),
		)
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		utils.WriteJSONError(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(rawPayload, &event); err != nil {
		log.Error("Coinbase Commerce webhook: invalid JSON", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		utils.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	log.Info("Coinbase Commerce webhook received",
		zap.String("event_type", event.Event.Type),
		zap.String("charge_id", event.Event.Data.ID),
	)

	if err := h.processEvent(r.Context(), &event); err != nil {
		log.Error("Coinbase Commerce webhook error",
			zap.String("event_type", event.Event.Type),
			zap.String("charge_id", event.Event.Data.ID),
			zap.Error(err),
		)
		metrics.WebhookEvents.WithLabelValues(event.Event.Type, "error").Inc()
		utils.WriteJSONError(w, "Webhook processing failed", http.StatusInternalServerError)
		return
	}

	metrics.WebhookEvents.WithLabelValues(event.Event.Type, "processed").Inc()
	utils.WriteJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *Handler) processEvent(ctx context.Context, event *payment.WebhookEvent) error {
	log := logger.FromCtx(ctx)
	charge := &event.Event.Data

	inv, err := h.Repo.FindInvoiceByChargeID(ctx, charge.ID)
	if errors.Is(err, invoice.ErrInvoiceNotFound) {
		// Charges created out-of-band are not ours; acknowledge so the
		// provider does not keep retrying.
		log.Warn("Coinbase Commerce webhook: invoice not found",
			zap.String("charge_id", charge.ID),
			zap.String("event_type", event.Event.Type),
		)
		return nil
	}
	if err != nil {
		return err
	}

	log = log.With(
		zap.String("event_type", event.Event.Type),
		zap.String("charge_id", charge.ID),
		zap.Uint("invoice_id", inv.ID),
	)

	switch event.Event.Type {
	case payment.EventChargeConfirmed:
		return h.handleChargeConfirmed(ctx, log, inv, charge)

	case payment.EventChargePending:
		log.Info("Coinbase Commerce: charge pending")
		return h.reaffirmPending(ctx, inv)

	case payment.EventChargeFailed:
		log.Warn("Coinbase Commerce: charge failed",
			zap.String("failure_reason", failureReason(charge)),
		)
		return h.reaffirmPending(ctx, inv)

	case payment.EventChargeCreated:
		log.Info("Coinbase Commerce: charge created")
		return nil

	default:
		log.Info("Coinbase Commerce: unhandled event type")
		return nil
	}
}

// handleChargeConfirmed settles the payment exactly once: promote the
// placeholder linkage in place, or insert a settled payment if no
// placeholder survived, and skip entirely when one is already settled.
func (h *Handler) handleChargeConfirmed(ctx context.Context, log *zap.Logger, inv *invoice.Invoice, charge *payment.Charge) error {
	_, err := h.Repo.FindSettledPayment(ctx, inv.ID, charge.ID)
	if err == nil {
		log.Info("Coinbase Commerce: payment already processed")
		return nil
	}
	if !errors.Is(err, invoice.ErrLinkageNotFound) {
		return err
	}

	amount := chargeAmount(charge)

	placeholder, err := h.Repo.FindLinkage(ctx, inv.ID, charge.ID)
	switch {
	case err == nil:
		err = h.Repo.PromoteLinkageToSettled(ctx, placeholder.ID, amount, h.GatewayID)
	case errors.Is(err, invoice.ErrLinkageNotFound):
		err = h.Repo.CreateSettledPayment(ctx, inv.ID, charge.ID, amount, nil)
	default:
		return err
	}

	if errors.Is(err, invoice.ErrAlreadySettled) {
		// A concurrent delivery won the race; the settled row exists.
		log.Info("Coinbase Commerce: payment already processed")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("Coinbase Commerce: payment confirmed and processed",
		zap.String("amount", amount.StringFixed(2)),
		zap.String("currency", charge.Pricing.Local.Currency),
	)
	return nil
}

// reaffirmPending re-writes the pending status. A deliberate no-op state
// transition: the invoice stays payable until a confirmation arrives.
func (h *Handler) reaffirmPending(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Status != invoice.StatusPending {
		return nil
	}
	return h.Repo.UpdateInvoiceStatus(ctx, inv.ID, invoice.StatusPending)
}

func chargeAmount(charge *payment.Charge) decimal.Decimal {
	amount, err := decimal.NewFromString(charge.Pricing.Local.Amount)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func failureReason(charge *payment.Charge) string {
	if charge.FailureReason == "" {
		return "unknown"
	}
	return charge.FailureReason
}
