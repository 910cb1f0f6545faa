package billing

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode is how the money arrived
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentBank   PaymentMode = "bank"
	PaymentCheque PaymentMode = "cheque"
	PaymentUPI    PaymentMode = "upi"
)

// IsValid reports whether the mode is known
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBank, PaymentCheque, PaymentUPI:
		return true
	}
	return false
}

// Payment is money received against a bill. Payments are never edited.
type Payment struct {
	shared.TenantEntity
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidOn    time.Time       `gorm:"type:date;not null"`
	Mode      PaymentMode     `gorm:"type:varchar(20);not null"`
	Reference string          `gorm:"type:varchar(100)"`
	Remarks   string          `gorm:"type:text"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "bill_payments"
}
