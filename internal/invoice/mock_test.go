package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockRepository) GetInvoice(ctx context.Context, id uint) (*Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID uint, status Status) error {
	args := m.Called(ctx, invoiceID, status)
	return args.Error(0)
}

func (m *MockRepository) FindInvoiceByChargeID(ctx context.Context, chargeID string) (*Invoice, error) {
	args := m.Called(ctx, chargeID)
	if inv := args.Get(0); inv != nil {
		return inv.(*Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindRecentLinkage(ctx context.Context, invoiceID uint, since time.Time) (*Transaction, error) {
	args := m.Called(ctx, invoiceID, since)
	if t := args.Get(0); t != nil {
		return t.(*Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindLinkage(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error) {
	args := m.Called(ctx, invoiceID, chargeID)
	if t := args.Get(0); t != nil {
		return t.(*Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindSettledPayment(ctx context.Context, invoiceID uint, chargeID string) (*Transaction, error) {
	args := m.Called(ctx, invoiceID, chargeID)
	if t := args.Get(0); t != nil {
		return t.(*Transaction), args.Error(1)
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

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Pay(ctx context.Context, inv *Invoice, total decimal.Decimal) (string, error) {
	args := m.Called(ctx, inv, total)
	return args.String(0), args.Error(1)
}
