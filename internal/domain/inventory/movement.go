package inventory

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a ledger entry
type MovementType string

const (
	MovementInward             MovementType = "inward"
	MovementOutward            MovementType = "outward"
	MovementTransferOut        MovementType = "transfer_out"
	MovementTransferIn         MovementType = "transfer_in"
	MovementAllocation         MovementType = "allocation"
	MovementAllocationReversal MovementType = "allocation_reversal"
	MovementAdjustmentIn       MovementType = "adjustment_in"
	MovementAdjustmentOut      MovementType = "adjustment_out"
)

// IsInbound reports whether the movement adds stock
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementInward, MovementTransferIn, MovementAllocationReversal, MovementAdjustmentIn:
		return true
	}
	return false
}

// IsValid reports whether the type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInward, MovementOutward, MovementTransferOut, MovementTransferIn,
		MovementAllocation, MovementAllocationReversal, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// Reference types recorded on movements
const (
	RefOpening       = "opening"
	RefReceipt       = "stock_receipt"
	RefGoodsReceipt  = "goods_receipt"
	RefTransfer      = "stock_transfer"
	RefAllocation    = "allocation"
	RefAdjustment    = "stock_adjustment"
	RefPurchaseOrder = "purchase_order"
)

// Reference points a movement at the document that caused it
type Reference struct {
	Type string
	ID   uuid.UUID
}

// StockMovement is an immutable ledger line. Quantity is always positive;
// the direction comes from the type.
type StockMovement struct {
	shared.TenantEntity
	GodownID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID       *uuid.UUID      `gorm:"type:uuid;index"`
	MovementType  MovementType    `gorm:"type:varchar(30);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Value         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType string          `gorm:"type:varchar(30);not null"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Remarks       string          `gorm:"type:text"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records qty of a batch moving at unitCost
func NewStockMovement(tenantID, godownID, productID uuid.UUID, batchID *uuid.UUID, t MovementType, qty, unitCost, balanceAfter decimal.Decimal, ref Reference, remarks string, createdBy *uuid.UUID) *StockMovement {
	return &StockMovement{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		GodownID:      godownID,
		ProductID:     productID,
		BatchID:       batchID,
		MovementType:  t,
		Quantity:      qty,
		UnitCost:      unitCost,
		Value:         qty.Mul(unitCost).Round(4),
		BalanceAfter:  balanceAfter,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		Remarks:       remarks,
		CreatedBy:     createdBy,
		OccurredAt:    time.Now(),
	}
}
