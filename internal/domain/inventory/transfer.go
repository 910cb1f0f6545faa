package inventory

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockTransfer moves one product between two godowns. Destination batches
// keep the source batch number, cost and received date so FIFO age survives the move.
type StockTransfer struct {
	shared.TenantAggregateRoot
	TransferNumber string          `gorm:"type:varchar(30);not null"`
	FromGodownID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToGodownID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TransferDate   time.Time       `gorm:"type:date;not null"`
	Remarks        string          `gorm:"type:text"`
	Lines          []TransferLine  `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// TransferLine pairs a consumed source batch with the batch created at the destination
type TransferLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransferID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceBatchID uuid.UUID       `gorm:"type:uuid;not null"`
	DestBatchID   uuid.UUID       `gorm:"type:uuid;not null"`
	BatchNumber   string          `gorm:"type:varchar(50);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TransferLine) TableName() string {
	return "stock_transfer_lines"
}

// NewStockTransfer validates and opens a transfer document
func NewStockTransfer(tenantID uuid.UUID, number string, from, to, productID uuid.UUID, qty decimal.Decimal, date time.Time, remarks string) (*StockTransfer, error) {
	if from == to {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and destination godowns must differ")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}
	t := &StockTransfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransferNumber:      number,
		FromGodownID:        from,
		ToGodownID:          to,
		ProductID:           productID,
		Quantity:            qty,
		TotalCost:           decimal.Zero,
		TransferDate:        shared.DateOnly(date),
		Remarks:             strings.TrimSpace(remarks),
	}
	return t, nil
}

// AddLine records one source batch split moved to destBatchID
func (t *StockTransfer) AddLine(consumed ConsumedLine, destBatchID uuid.UUID) {
	t.Lines = append(t.Lines, TransferLine{
		ID:            uuid.New(),
		TransferID:    t.ID,
		SourceBatchID: consumed.BatchID,
		DestBatchID:   destBatchID,
		BatchNumber:   consumed.BatchNumber,
		Quantity:      consumed.Quantity,
		UnitCost:      consumed.UnitCost,
	})
	t.TotalCost = t.TotalCost.Add(consumed.Cost()).Round(4)
}

// Complete raises the transfer event once all lines are in place
func (t *StockTransfer) Complete() {
	t.AddDomainEvent(NewStockTransferredEvent(t))
}
