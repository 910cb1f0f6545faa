package inventory

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType says how a batch came into a godown
type SourceType string

const (
	SourceOpening          SourceType = "opening"
	SourcePurchase         SourceType = "purchase"
	SourceTransfer         SourceType = "transfer"
	SourceAdjustment       SourceType = "adjustment"
	SourceAllocationReturn SourceType = "allocation_return"
)

// IsValid reports whether the source type is known
func (s SourceType) IsValid() bool {
	switch s {
	case SourceOpening, SourcePurchase, SourceTransfer, SourceAdjustment, SourceAllocationReturn:
		return true
	}
	return false
}

// StockBatch is a lot of one product in one godown at one unit cost.
// RemainingQty only moves between 0 and OriginalQty.
type StockBatch struct {
	shared.TenantEntity
	GodownID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_fifo,priority:1"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_fifo,priority:2"`
	BatchNumber   string          `gorm:"type:varchar(50);not null"`
	SourceType    SourceType      `gorm:"type:varchar(30);not null"`
	SourceID      *uuid.UUID      `gorm:"type:uuid"`
	ParentBatchID *uuid.UUID      `gorm:"type:uuid"`
	ReceivedDate  time.Time       `gorm:"type:date;not null;index:idx_batches_fifo,priority:3"`
	OriginalQty   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a full batch
func NewStockBatch(tenantID, godownID, productID uuid.UUID, batchNumber string, source SourceType, qty, unitCost decimal.Decimal, received time.Time) (*StockBatch, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_SOURCE", "Unknown batch source %q", source)
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number is required")
	}
	return &StockBatch{
		TenantEntity: shared.NewTenantEntity(tenantID),
		GodownID:     godownID,
		ProductID:    productID,
		BatchNumber:  batchNumber,
		SourceType:   source,
		ReceivedDate: shared.DateOnly(received),
		OriginalQty:  qty,
		RemainingQty: qty,
		UnitCost:     unitCost,
	}, nil
}

// Consume removes qty from the batch
func (b *StockBatch) Consume(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty.GreaterThan(b.RemainingQty) {
		return shared.ErrInsufficientStock.
			WithDetail("batch_number", b.BatchNumber).
			WithDetail("requested", qty.String()).
			WithDetail("available", b.RemainingQty.String())
	}
	b.RemainingQty = b.RemainingQty.Sub(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// Restore puts qty back into the batch, never above its original size
func (b *StockBatch) Restore(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if b.RemainingQty.Add(qty).GreaterThan(b.OriginalQty) {
		return shared.NewDomainErrorf("INVALID_QUANTITY", "Restoring %s to batch %s would exceed its original quantity", qty, b.BatchNumber)
	}
	b.RemainingQty = b.RemainingQty.Add(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// HasStock reports whether anything is left
func (b *StockBatch) HasStock() bool {
	return b.RemainingQty.IsPositive()
}

// Value is the remaining value at cost
func (b *StockBatch) Value() decimal.Decimal {
	return b.RemainingQty.Mul(b.UnitCost)
}

// ConsumedQty is how much has left the batch
func (b *StockBatch) ConsumedQty() decimal.Decimal {
	return b.OriginalQty.Sub(b.RemainingQty)
}
