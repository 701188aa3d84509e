package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billing-be/internal/middleware"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, target, body string, userID uint) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func pendingInvoice() *Invoice {
	return &Invoice{
		ID:           42,
		Number:       "INV-20240101-120000-001-0001",
		UserID:       7,
		CurrencyCode: "USD",
		Total:        decimal.RequireFromString("19.99"),
		Status:       StatusPending,
	}
}

func TestHandler_CreateInvoice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, new(MockGateway))

		repo.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(inv *Invoice) bool {
			return inv.UserID == 7 && inv.Status == StatusPending && inv.Total.StringFixed(2) == "19.99"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*Invoice).ID = 42
		}).Return(nil)

		req := authedRequest(http.MethodPost, "/invoices", `{"currency_code":"USD","total":"19.99"}`, 7)
		rec := httptest.NewRecorder()

		h.CreateInvoice(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp invoiceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint(42), resp.ID)
		assert.Equal(t, "19.99", resp.Total)
		assert.Equal(t, StatusPending, resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		h := NewHandler(new(MockRepository), new(MockGateway))

		req := authedRequest(http.MethodPost, "/invoices", `{not json`, 7)
		rec := httptest.NewRecorder()

		h.CreateInvoice(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NonPositiveTotal", func(t *testing.T) {
		h := NewHandler(new(MockRepository), new(MockGateway))

		req := authedRequest(http.MethodPost, "/invoices", `{"currency_code":"USD","total":"0"}`, 7)
		rec := httptest.NewRecorder()

		h.CreateInvoice(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		h := NewHandler(new(MockRepository), new(MockGateway))

		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{"total":"19.99"}`))
		rec := httptest.NewRecorder()

		h.CreateInvoice(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, new(MockGateway))

		repo.On("CreateInvoice", mock.Anything, mock.Anything).Return(errors.New("db down"))

		req := authedRequest(http.MethodPost, "/invoices", `{"currency_code":"USD","total":"19.99"}`, 7)
		rec := httptest.NewRecorder()

		h.CreateInvoice(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_GetInvoice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, new(MockGateway))

		repo.On("GetInvoice", mock.Anything, uint(42)).Return(pendingInvoice(), nil)

		req := authedRequest(http.MethodGet, "/invoices/42", "", 7)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		h.GetInvoice(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp invoiceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INV-20240101-120000-001-0001", resp.Number)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, new(MockGateway))

		repo.On("GetInvoice", mock.Anything, uint(99)).Return(nil, ErrInvoiceNotFound)

		req := authedRequest(http.MethodGet, "/invoices/99", "", 7)
		req.SetPathValue("id", "99")
		rec := httptest.NewRecorder()

		h.GetInvoice(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("OtherUsersInvoice", func(t *testing.T) {
		repo := new(MockRepository)
		h := NewHandler(repo, new(MockGateway))

		repo.On("GetInvoice", mock.Anything, uint(42)).Return(pendingInvoice(), nil)

		req := authedRequest(http.MethodGet, "/invoices/42", "", 8)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		h.GetInvoice(rec, req)

		// Ownership failures are indistinguishable from missing invoices.
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		h := NewHandler(new(MockRepository), new(MockGateway))

		req := authedRequest(http.MethodGet, "/invoices/abc", "", 7)
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		h.GetInvoice(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_PayInvoice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		gateway := new(MockGateway)
		h := NewHandler(repo, gateway)

		inv := pendingInvoice()
		repo.On("GetInvoice", mock.Anything, uint(42)).Return(inv, nil)
		gateway.On("Pay", mock.Anything, inv, inv.Total).
			Return("https://commerce.coinbase.com/charges/abc123", nil)

		req := authedRequest(http.MethodPost, "/invoices/42/pay", "", 7)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		h.PayInvoice(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "https://commerce.coinbase.com/charges/abc123", resp["url"])
		gateway.AssertExpectations(t)
	})

	t.Run("NotPending", func(t *testing.T) {
		repo := new(MockRepository)
		gateway := new(MockGateway)
		h := NewHandler(repo, gateway)

		inv := pendingInvoice()
		inv.Status = StatusPaid
		repo.On("GetInvoice", mock.Anything, uint(42)).Return(inv, nil)

		req := authedRequest(http.MethodPost, "/invoices/42/pay", "", 7)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		h.PayInvoice(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		gateway.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GatewayError", func(t *testing.T) {
		repo := new(MockRepository)
		gateway := new(MockGateway)
		h := NewHandler(repo, gateway)

		inv := pendingInvoice()
		repo.On("GetInvoice", mock.Anything, uint(42)).Return(inv, nil)
		gateway.On("Pay", mock.Anything, inv, inv.Total).
			Return("", errors.New("coinbase: 503"))

		req := authedRequest(http.MethodPost, "/invoices/42/pay", "", 7)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		h.PayInvoice(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)

		// The gateway failure detail must not leak to the payer.
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotContains(t, resp["error"], "coinbase")
	})
}
