package webhook

import (
	"context"
	"time"

	"billing-be/internal/invoice"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockRepository) GetInvoice(ctx context.Context, id uint) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*invoice.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status invoice.Status) error {
	args := m.Called(ctx, invoiceID, status)
	return args.Error(0)
}

func (m *MockRepository) FindInvoiceByChargeID(ctx context.Context, chargeID string) (*invoice.Invoice, error) {
	args := m.Called(ctx, chargeID)
	if inv := args.Get(0); inv != nil {
		return inv.(*invoice.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindRecentLinkage(ctx context.Context, invoiceID uint, since time.Time) (*invoice.Transaction, error) {
	args := m.Called(ctx, invoiceID, since)
	if t := args.Get(0); t != nil {
		return t.(*invoice.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindLinkage(ctx context.Context, invoiceID uint, chargeID string) (*invoice.Transaction, error) {
	args := m.Called(ctx, invoiceID, chargeID)
	if t := args.Get(0); t != nil {
		return t.(*invoice.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindSettledPayment(ctx context.Context, invoiceID uint, chargeID string) (*invoice.Transaction, error) {
	args := m.Called(ctx, invoiceID, chargeID)
	if t := args.Get(0); t != nil {
		return t.(*invoice.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreatePlaceholderLinkage(ctx context.Context, invoiceID uint, chargeID string) error {
	args := m.Called(ctx, invoiceID, chargeID)
	return args.Error(0)
}

func (m *MockRepository) PromoteLinkageToSettled(ctx context.Context, linkageID uint, amount decimal.Decimal, gatewayID *uint) error {
	args := m.Called(ctx, linkageID, amount, gatewayID)
	return args.Error(0)
}

func (m *MockRepository) CreateSettledPayment(ctx context.Context, invoiceID uint, chargeID string, amount decimal.Decimal, fee *decimal.Decimal) error {
	args := m.Called(ctx, invoiceID, chargeID, amount, fee)
	return args.Error(0)
}
