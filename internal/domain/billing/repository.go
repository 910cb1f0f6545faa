package billing

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillFilter narrows bill listings
type BillFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	CompanyID *uuid.UUID
	Status    BillStatus
	Range     shared.DateRange
}

// Totals aggregates billed and received amounts over issued bills
type Totals struct {
	Billed      decimal.Decimal // gross of issued, partially paid and paid bills
	Retention   decimal.Decimal
	Received    decimal.Decimal
	Outstanding decimal.Decimal // balance due of open bills
}

// BillRepository persists bills with their lines
type BillRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter BillFilter) ([]Bill, int64, error)
	Create(ctx context.Context, b *Bill) error
	// Update saves the header with optimistic locking and replaces the lines
	Update(ctx context.Context, b *Bill) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// Totals sums non-draft, non-cancelled bills dated within the range, optionally for one project
	Totals(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) (Totals, error)
}

// PaymentRepository persists bill payments
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByBill(ctx context.Context, tenantID, billID uuid.UUID) ([]Payment, error)
	// SumReceived totals payments dated within the range
	SumReceived(ctx context.Context, tenantID uuid.UUID, r shared.DateRange) (decimal.Decimal, error)
}
