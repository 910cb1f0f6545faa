package inventory

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GodownStock is the running balance of one product in one godown. Quantity
// and TotalValue always equal the sums over the godown's batches.
type GodownStock struct {
	shared.TenantAggregateRoot
	GodownID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastMovedAt *time.Time
}

// TableName returns the table name for GORM
func (GodownStock) TableName() string {
	return "godown_stocks"
}

// NewGodownStock creates an empty balance row
func NewGodownStock(tenantID, godownID, productID uuid.UUID) *GodownStock {
	return &GodownStock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		GodownID:            godownID,
		ProductID:           productID,
		Quantity:            decimal.Zero,
		TotalValue:          decimal.Zero,
		AverageCost:         decimal.Zero,
	}
}

// Increase adds qty worth value
func (s *GodownStock) Increase(qty, value decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Value cannot be negative")
	}
	s.Quantity = s.Quantity.Add(qty)
	s.TotalValue = s.TotalValue.Add(value)
	s.recalculate()
	return nil
}

// Decrease removes qty worth value (the FIFO cost of the consumed batches)
func (s *GodownStock) Decrease(qty, value decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty.GreaterThan(s.Quantity) {
		return shared.ErrInsufficientStock.
			WithDetail("requested", qty.String()).
			WithDetail("available", s.Quantity.String())
	}
	s.Quantity = s.Quantity.Sub(qty)
	s.TotalValue = s.TotalValue.Sub(value)
	if s.Quantity.IsZero() || s.TotalValue.IsNegative() {
		s.TotalValue = decimal.Zero
	}
	s.recalculate()
	return nil
}

func (s *GodownStock) recalculate() {
	if s.Quantity.IsZero() {
		s.AverageCost = decimal.Zero
	} else {
		s.AverageCost = s.TotalValue.Div(s.Quantity).Round(4)
	}
	now := time.Now()
	s.LastMovedAt = &now
	s.UpdatedAt = now
}

// IsEmpty reports whether nothing is on hand
func (s *GodownStock) IsEmpty() bool {
	return !s.Quantity.IsPositive()
}
