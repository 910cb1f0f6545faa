package purchase

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle of a purchase order
type OrderStatus string

const (
	OrderDraft             OrderStatus = "draft"
	OrderConfirmed         OrderStatus = "confirmed"
	OrderPartiallyReceived OrderStatus = "partially_received"
	OrderReceived          OrderStatus = "received"
	OrderCancelled         OrderStatus = "cancelled"
)

// IsValid reports whether the status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderDraft, OrderConfirmed, OrderPartiallyReceived, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

// CanReceive reports whether goods may still arrive against the order
func (s OrderStatus) CanReceive() bool {
	return s == OrderConfirmed || s == OrderPartiallyReceived
}

var hundred = decimal.NewFromInt(100)

// PurchaseOrder orders materials from a vendor for delivery into a godown
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber  string          `gorm:"type:varchar(30);not null"`
	VendorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	GodownID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;index"`
	OrderDate    time.Time       `gorm:"type:date;not null"`
	ExpectedDate *time.Time      `gorm:"type:date"`
	Remarks      string          `gorm:"type:text"`
	Status       OrderStatus     `gorm:"type:varchar(30);not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ConfirmedAt  *time.Time
	Lines        []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// OrderLine is one product on the order
type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	Taxable     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "purchase_order_lines"
}

// Outstanding is the quantity not yet received
func (l OrderLine) Outstanding() decimal.Decimal {
	return l.OrderedQty.Sub(l.ReceivedQty)
}

// LineInput describes a line to put on the order
type LineInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	GSTRate   decimal.Decimal
}

// NewPurchaseOrder opens a draft order
func NewPurchaseOrder(tenantID uuid.UUID, number string, vendorID, godownID uuid.UUID, projectID *uuid.UUID, orderDate time.Time, expected *time.Time, remarks string) (*PurchaseOrder, error) {
	if vendorID == uuid.Nil || godownID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Vendor and godown are required")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	orderDate = shared.DateOnly(orderDate)
	if expected != nil {
		e := shared.DateOnly(*expected)
		if e.Before(orderDate) {
			return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Expected date cannot be before order date")
		}
		expected = &e
	}
	po := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         number,
		VendorID:            vendorID,
		GodownID:            godownID,
		ProjectID:           projectID,
		OrderDate:           orderDate,
		ExpectedDate:        expected,
		Remarks:             strings.TrimSpace(remarks),
		Status:              OrderDraft,
		Subtotal:            decimal.Zero,
		TaxTotal:            decimal.Zero,
		GrandTotal:          decimal.Zero,
	}
	po.AddDomainEvent(NewOrderEvent(EventTypeOrderCreated, po))
	return po, nil
}

// SetLines replaces all lines of a draft order
func (po *PurchaseOrder) SetLines(inputs []LineInput) error {
	if po.Status != OrderDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Lines can only be changed on a draft order, current status is %s", po.Status)
	}
	seen := make(map[uuid.UUID]bool, len(inputs))
	lines := make([]OrderLine, 0, len(inputs))
	for i, in := range inputs {
		if in.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_INPUT", "Product is required on every line")
		}
		if seen[in.ProductID] {
			return shared.NewDomainError("INVALID_INPUT", "A product may appear only once per order")
		}
		seen[in.ProductID] = true
		if !in.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		if in.GSTRate.IsNegative() || in.GSTRate.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_GST_RATE", "GST rate must be between 0 and 100")
		}
		taxable := in.Quantity.Mul(in.UnitPrice).Round(2)
		tax := taxable.Mul(in.GSTRate).Div(hundred).Round(2)
		lines = append(lines, OrderLine{
			ID:          uuid.New(),
			OrderID:     po.ID,
			LineNo:      i + 1,
			ProductID:   in.ProductID,
			OrderedQty:  in.Quantity,
			ReceivedQty: decimal.Zero,
			UnitPrice:   in.UnitPrice,
			GSTRate:     in.GSTRate,
			Taxable:     taxable,
			TaxAmount:   tax,
			LineTotal:   taxable.Add(tax),
		})
	}
	po.Lines = lines
	po.recalculate()
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
	return nil
}

func (po *PurchaseOrder) recalculate() {
	sub, tax := decimal.Zero, decimal.Zero
	for _, l := range po.Lines {
		sub = sub.Add(l.Taxable)
		tax = tax.Add(l.TaxAmount)
	}
	po.Subtotal = sub
	po.TaxTotal = tax
	po.GrandTotal = sub.Add(tax)
}

// Confirm sends the order to the vendor
func (po *PurchaseOrder) Confirm() error {
	if po.Status != OrderDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Only draft orders can be confirmed, current status is %s", po.Status)
	}
	if len(po.Lines) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Order has no lines")
	}
	now := time.Now()
	po.Status = OrderConfirmed
	po.ConfirmedAt = &now
	po.UpdatedAt = now
	po.IncrementVersion()
	po.AddDomainEvent(NewOrderEvent(EventTypeOrderConfirmed, po))
	return nil
}

// Cancel abandons an order that has received nothing
func (po *PurchaseOrder) Cancel() error {
	if po.Status != OrderDraft && po.Status != OrderConfirmed {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot cancel an order in status %s", po.Status)
	}
	po.Status = OrderCancelled
	po.Changed(NewOrderEvent(EventTypeOrderCancelled, po))
	return nil
}

// ReceiptInput is the quantity arriving against one order line
type ReceiptInput struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// RegisterReceipt books received quantities and moves the status. It returns
// the affected lines in input order.
func (po *PurchaseOrder) RegisterReceipt(inputs []ReceiptInput) ([]OrderLine, error) {
	if !po.Status.CanReceive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Cannot receive against an order in status %s", po.Status)
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one receipt line is required")
	}
	index := make(map[uuid.UUID]int, len(po.Lines))
	for i, l := range po.Lines {
		index[l.ID] = i
	}
	// validate everything before mutating
	pending := make(map[uuid.UUID]decimal.Decimal, len(inputs))
	for _, in := range inputs {
		i, ok := index[in.LineID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_INPUT", "Receipt references a line that is not on this order").
				WithDetail("line_id", in.LineID.String())
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
		}
		total := pending[in.LineID].Add(in.Quantity)
		if total.GreaterThan(po.Lines[i].Outstanding()) {
			return nil, shared.ErrOverReceipt.
				WithDetail("line_id", in.LineID.String()).
				WithDetail("outstanding", po.Lines[i].Outstanding().String()).
				WithDetail("requested", total.String())
		}
		pending[in.LineID] = total
	}

	affected := make([]OrderLine, 0, len(inputs))
	for _, in := range inputs {
		i := index[in.LineID]
		po.Lines[i].ReceivedQty = po.Lines[i].ReceivedQty.Add(in.Quantity)
		affected = append(affected, po.Lines[i])
	}
	po.Status = OrderPartiallyReceived
	if po.FullyReceived() {
		po.Status = OrderReceived
	}
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
	return affected, nil
}

// FullyReceived reports whether every line is complete
func (po *PurchaseOrder) FullyReceived() bool {
	for _, l := range po.Lines {
		if l.Outstanding().IsPositive() {
			return false
		}
	}
	return len(po.Lines) > 0
}

// Line returns the line with the given id
func (po *PurchaseOrder) Line(id uuid.UUID) (*OrderLine, bool) {
	for i := range po.Lines {
		if po.Lines[i].ID == id {
			return &po.Lines[i], true
		}
	}
	return nil, false
}

// CanBeDeleted reports whether the order is still a draft
func (po *PurchaseOrder) CanBeDeleted() bool {
	return po.Status == OrderDraft
}
