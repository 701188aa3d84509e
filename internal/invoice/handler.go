package invoice

import (
	"context"
	"encoding/json"
	"net/http"

	"billing-be/internal/logger"
	"billing-be/internal/middleware"
	"billing-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentInitiator starts a gateway payment for an invoice and returns the
// hosted URL the payer should be redirected to.
type PaymentInitiator interface {
	Pay(ctx context.Context, inv *Invoice, total decimal.Decimal) (string, error)
}

type Handler struct {
	Repo    Repository
	Gateway PaymentInitiator
}

func NewHandler(repo Repository, gateway PaymentInitiator) *Handler {
	return &Handler{Repo: repo, Gateway: gateway}
}

type createInvoiceRequest struct {
	CurrencyCode string          `json:"currency_code"`
	Total        decimal.Decimal `json:"total"`
}

type invoiceResponse struct {
	ID           uint            `json:"id"`
	Number       string          `json:"number"`
	CurrencyCode string          `json:"currency_code"`
	Total        string          `json:"total"`
	Status       Status          `json:"status"`
}

func toResponse(inv *Invoice) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		CurrencyCode: inv.Currency(),
		Total:        inv.Total.StringFixed(2),
		Status:       inv.Status,
	}
}

// CreateInvoice handles POST /invoices.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if !req.Total.IsPositive() {
		utils.WriteJSONError(w, "total must be positive", http.StatusBadRequest)
		return
	}

	inv := &Invoice{
		Number:       utils.GenerateInvoiceNumber(),
		UserID:       userID,
		CurrencyCode: req.CurrencyCode,
		Total:        req.Total,
		Status:       StatusPending,
	}

	if err := h.Repo.CreateInvoice(r.Context(), inv); err != nil {
		logger.FromCtx(r.Context()).Error("failed to create invoice", zap.Error(err))
		utils.WriteJSONError(w, "failed to create invoice", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, toResponse(inv), http.StatusCreated)
}

// GetInvoice handles GET /invoices/{id}. This is also the page the gateway
// redirect and cancel URLs point back to.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadOwnedInvoice(w, r)
	if !ok {
		return
	}

	utils.WriteJSON(w, toResponse(inv), http.StatusOK)
}

// PayInvoice handles POST /invoices/{id}/pay and returns the hosted payment
// URL for the payer.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadOwnedInvoice(w, r)
	if !ok {
		return
	}

	if inv.Status != StatusPending {
		utils.WriteJSONError(w, "invoice is not payable", http.StatusConflict)
		return
	}

	url, err := h.Gateway.Pay(r.Context(), inv, inv.Total)
	if err != nil {
		logger.FromCtx(r.Context()).Error("payment initiation failed",
			zap.Uint("invoice_id", inv.ID),
			zap.Error(err),
		)
		// The upstream detail stays in the logs; the payer gets a generic message.
		utils.WriteJSONError(w, "payment could not be initiated", http.StatusBadGateway)
		return
	}

	utils.WriteJSON(w, map[string]string{"url": url}, http.StatusOK)
}

func (h *Handler) loadOwnedInvoice(w http.ResponseWriter, r *http.Request) (*Invoice, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	id, err := utils.ToUint(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid invoice id", http.StatusBadRequest)
		return nil, false
	}

	inv, err := h.Repo.GetInvoice(r.Context(), id)
	if err != nil {
		utils.WriteJSONError(w, "invoice not found", http.StatusNotFound)
		return nil, false
	}

	if inv.UserID != userID {
		utils.WriteJSONError(w, "invoice not found", http.StatusNotFound)
		return nil, false
	}

	return inv, true
}
