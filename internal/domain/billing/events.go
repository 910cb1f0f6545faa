package billing

import (
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeBill is the aggregate type for bill events
const AggregateTypeBill = "Bill"

// Event types
const (
	EventTypeBillCreated     = "BillCreated"
	EventTypeBillIssued      = "BillIssued"
	EventTypeBillCancelled   = "BillCancelled"
	EventTypePaymentRecorded = "BillPaymentRecorded"
)

// BillEvent is raised on bill lifecycle changes
type BillEvent struct {
	shared.BaseDomainEvent
	BillNumber string          `json:"bill_number"`
	ProjectID  uuid.UUID       `json:"project_id"`
	Status     BillStatus      `json:"status"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	NetPayable decimal.Decimal `json:"net_payable"`
}

// NewBillEvent builds a BillEvent
func NewBillEvent(eventType string, b *Bill) *BillEvent {
	return &BillEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeBill, b.ID, b.TenantID),
		BillNumber:      b.BillNumber,
		ProjectID:       b.ProjectID,
		Status:          b.Status,
		GrossTotal:      b.GrossTotal,
		NetPayable:      b.NetPayable,
	}
}

// PaymentRecordedEvent is raised when money is received against a bill
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillNumber string          `json:"bill_number"`
	ProjectID  uuid.UUID       `json:"project_id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	Mode       PaymentMode     `json:"mode"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	Status     BillStatus      `json:"status"`
}

// NewPaymentRecordedEvent builds a PaymentRecordedEvent
func NewPaymentRecordedEvent(b *Bill, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeBill, b.ID, b.TenantID),
		BillNumber:      b.BillNumber,
		ProjectID:       b.ProjectID,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Mode:            p.Mode,
		BalanceDue:      b.BalanceDue,
		Status:          b.Status,
	}
}
