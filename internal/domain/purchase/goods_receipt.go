package purchase

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceipt records one delivery against a purchase order
type GoodsReceipt struct {
	shared.TenantAggregateRoot
	ReceiptNumber string          `gorm:"type:varchar(30);not null"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	GodownID      uuid.UUID       `gorm:"type:uuid;not null"`
	ReceivedDate  time.Time       `gorm:"type:date;not null"`
	Remarks       string          `gorm:"type:text"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Lines         []ReceiptLine   `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// ReceiptLine links received quantity to the batch it created
type ReceiptLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderLineID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptLine) TableName() string {
	return "goods_receipt_lines"
}

// NewGoodsReceipt opens a receipt for an order
func NewGoodsReceipt(po *PurchaseOrder, number string, received time.Time, remarks string) *GoodsReceipt {
	if received.IsZero() {
		received = time.Now()
	}
	return &GoodsReceipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(po.TenantID),
		ReceiptNumber:       number,
		OrderID:             po.ID,
		GodownID:            po.GodownID,
		ReceivedDate:        shared.DateOnly(received),
		Remarks:             strings.TrimSpace(remarks),
		TotalValue:          decimal.Zero,
	}
}

// AddLine records a received order line and its batch
func (r *GoodsReceipt) AddLine(line OrderLine, qty decimal.Decimal, batchID uuid.UUID) {
	r.Lines = append(r.Lines, ReceiptLine{
		ID:          uuid.New(),
		ReceiptID:   r.ID,
		OrderLineID: line.ID,
		ProductID:   line.ProductID,
		BatchID:     batchID,
		Quantity:    qty,
		UnitCost:    line.UnitPrice,
	})
	r.TotalValue = r.TotalValue.Add(qty.Mul(line.UnitPrice)).Round(2)
}

// Complete raises the receipt event
func (r *GoodsReceipt) Complete(orderStatus OrderStatus) {
	r.AddDomainEvent(NewGoodsReceivedEvent(r, orderStatus))
}
