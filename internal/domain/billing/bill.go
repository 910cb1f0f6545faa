// Package billing models running bills raised on projects, their GST split
// and the payments received against them.
package billing

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle of a bill
type BillStatus string

const (
	BillDraft         BillStatus = "draft"
	BillIssued        BillStatus = "issued"
	BillPartiallyPaid BillStatus = "partially_paid"
	BillPaid          BillStatus = "paid"
	BillCancelled     BillStatus = "cancelled"
)

// IsValid reports whether the status is known
func (s BillStatus) IsValid() bool {
	switch s {
	case BillDraft, BillIssued, BillPartiallyPaid, BillPaid, BillCancelled:
		return true
	}
	return false
}

// AcceptsPayment reports whether money can be recorded in this status
func (s BillStatus) AcceptsPayment() bool {
	return s == BillIssued || s == BillPartiallyPaid
}

// Bill is a tax invoice raised on a project
type Bill struct {
	shared.TenantAggregateRoot
	BillNumber        string          `gorm:"type:varchar(30);not null"`
	ProjectID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BillDate          time.Time       `gorm:"type:date;not null"`
	DueDate           *time.Time      `gorm:"type:date"`
	PeriodFrom        *time.Time      `gorm:"type:date"`
	PeriodTo          *time.Time      `gorm:"type:date"`
	SupplierStateCode string          `gorm:"type:varchar(2);not null"`
	PlaceOfSupply     string          `gorm:"type:varchar(2);not null"`
	Status            BillStatus      `gorm:"type:varchar(20);not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CGST              decimal.Decimal `gorm:"column:cgst;type:decimal(18,2);not null;default:0"`
	SGST              decimal.Decimal `gorm:"column:sgst;type:decimal(18,2);not null;default:0"`
	IGST              decimal.Decimal `gorm:"column:igst;type:decimal(18,2);not null;default:0"`
	TaxTotal          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RetentionPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	RetentionAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetPayable        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceDue        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Remarks           string          `gorm:"type:text"`
	IssuedAt          *time.Time
	Lines             []BillLine `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Bill) TableName() string {
	return "bills"
}

// BillLine is one billed item of work or material
type BillLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	Description string          `gorm:"type:text;not null"`
	HSNCode     string          `gorm:"column:hsn_code;type:varchar(10)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20)"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	Taxable     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CGST        decimal.Decimal `gorm:"column:cgst;type:decimal(18,2);not null"`
	SGST        decimal.Decimal `gorm:"column:sgst;type:decimal(18,2);not null"`
	IGST        decimal.Decimal `gorm:"column:igst;type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (BillLine) TableName() string {
	return "bill_lines"
}

// TaxAmount returns the line's total GST
func (l BillLine) TaxAmount() decimal.Decimal {
	return l.CGST.Add(l.SGST).Add(l.IGST)
}

// LineInput describes a line to put on the bill
type LineInput struct {
	Description string
	HSNCode     string
	Quantity    decimal.Decimal
	Unit        string
	Rate        decimal.Decimal
	GSTRate     decimal.Decimal
}

// Header carries the bill's non-line fields
type Header struct {
	BillDate      time.Time
	DueDate       *time.Time
	PeriodFrom    *time.Time
	PeriodTo      *time.Time
	PlaceOfSupply string
	Remarks       string
}

// NewBill opens a draft bill. supplierState is the tenant's GST state and
// retention is the project's retention percent at billing time.
func NewBill(tenantID uuid.UUID, number string, projectID, companyID uuid.UUID, supplierState string, retention decimal.Decimal, h Header) (*Bill, error) {
	if projectID == uuid.Nil || companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Project and company are required")
	}
	if retention.IsNegative() || retention.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_RETENTION", "Retention percent must be between 0 and 100")
	}
	b := &Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillNumber:          number,
		ProjectID:           projectID,
		CompanyID:           companyID,
		SupplierStateCode:   supplierState,
		RetentionPercent:    retention,
		Status:              BillDraft,
	}
	if err := b.applyHeader(h); err != nil {
		return nil, err
	}
	b.recalculate()
	b.AddDomainEvent(NewBillEvent(EventTypeBillCreated, b))
	return b, nil
}

func (b *Bill) applyHeader(h Header) error {
	if h.BillDate.IsZero() {
		h.BillDate = time.Now()
	}
	billDate := shared.DateOnly(h.BillDate)
	pos := strings.TrimSpace(h.PlaceOfSupply)
	if pos == "" {
		pos = b.SupplierStateCode
	}
	if !shared.ValidStateCode(pos) {
		return shared.NewDomainError("INVALID_STATE_CODE", "Place of supply must be a valid two digit GST state code")
	}
	due := datePtr(h.DueDate)
	if due != nil && due.Before(billDate) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Due date cannot be before bill date")
	}
	from, to := datePtr(h.PeriodFrom), datePtr(h.PeriodTo)
	if from != nil && to != nil && to.Before(*from) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Billing period end cannot be before its start")
	}
	b.BillDate = billDate
	b.DueDate = due
	b.PeriodFrom = from
	b.PeriodTo = to
	b.PlaceOfSupply = pos
	b.Remarks = strings.TrimSpace(h.Remarks)
	return nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := shared.DateOnly(*t)
	return &d
}

// UpdateHeader changes dates, place of supply and remarks of a draft bill
func (b *Bill) UpdateHeader(h Header) error {
	if err := b.requireDraft(); err != nil {
		return err
	}
	if err := b.applyHeader(h); err != nil {
		return err
	}
	// place of supply may have flipped the tax regime
	b.retax()
	b.touch()
	return nil
}

// SetLines replaces the lines of a draft bill and recomputes totals
func (b *Bill) SetLines(inputs []LineInput) error {
	if err := b.requireDraft(); err != nil {
		return err
	}
	lines := make([]BillLine, 0, len(inputs))
	for i, in := range inputs {
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return shared.NewDomainError("INVALID_INPUT", "Line description is required")
		}
		if !in.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if in.Rate.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Line rate cannot be negative")
		}
		if in.GSTRate.IsNegative() || in.GSTRate.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_GST_RATE", "GST rate must be between 0 and 100")
		}
		lines = append(lines, BillLine{
			ID:          uuid.New(),
			BillID:      b.ID,
			LineNo:      i + 1,
			Description: desc,
			HSNCode:     strings.TrimSpace(in.HSNCode),
			Quantity:    in.Quantity,
			Unit:        strings.TrimSpace(in.Unit),
			Rate:        in.Rate,
			GSTRate:     in.GSTRate,
			Taxable:     in.Quantity.Mul(in.Rate).Round(2),
		})
	}
	b.Lines = lines
	b.retax()
	b.touch()
	return nil
}

func (b *Bill) retax() {
	intra := IsIntraState(b.SupplierStateCode, b.PlaceOfSupply)
	for i := range b.Lines {
		split := ComputeTax(b.Lines[i].Taxable, b.Lines[i].GSTRate, intra)
		b.Lines[i].CGST = split.CGST
		b.Lines[i].SGST = split.SGST
		b.Lines[i].IGST = split.IGST
		b.Lines[i].LineTotal = b.Lines[i].Taxable.Add(split.Total())
	}
	b.recalculate()
}

func (b *Bill) recalculate() {
	sub, cgst, sgst, igst := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range b.Lines {
		sub = sub.Add(l.Taxable)
		cgst = cgst.Add(l.CGST)
		sgst = sgst.Add(l.SGST)
		igst = igst.Add(l.IGST)
	}
	b.Subtotal = sub
	b.CGST = cgst
	b.SGST = sgst
	b.IGST = igst
	b.TaxTotal = cgst.Add(sgst).Add(igst)
	b.GrossTotal = sub.Add(b.TaxTotal)
	b.RetentionAmount = b.GrossTotal.Mul(b.RetentionPercent).Div(hundred).Round(2)
	b.NetPayable = b.GrossTotal.Sub(b.RetentionAmount)
	b.BalanceDue = b.NetPayable.Sub(b.AmountPaid)
}

// IsIntraState reports whether the bill carries CGST and SGST
func (b *Bill) IsIntraState() bool {
	return IsIntraState(b.SupplierStateCode, b.PlaceOfSupply)
}

// Issue finalises the bill
func (b *Bill) Issue() error {
	if err := b.requireDraft(); err != nil {
		return err
	}
	if len(b.Lines) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Bill has no lines")
	}
	now := time.Now()
	b.Status = BillIssued
	b.IssuedAt = &now
	b.touch()
	b.AddDomainEvent(NewBillEvent(EventTypeBillIssued, b))
	return nil
}

// Cancel voids a bill that has not been paid
func (b *Bill) Cancel() error {
	if b.Status != BillDraft && b.Status != BillIssued {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot cancel a bill in status %s", b.Status)
	}
	b.Status = BillCancelled
	b.touch()
	b.AddDomainEvent(NewBillEvent(EventTypeBillCancelled, b))
	return nil
}

// RecordPayment books money received against the bill
func (b *Bill) RecordPayment(amount decimal.Decimal, paidOn time.Time, mode PaymentMode, reference, remarks string) (*Payment, error) {
	if !b.Status.AcceptsPayment() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Cannot record a payment on a bill in status %s", b.Status)
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_PAYMENT_MODE", "Unknown payment mode %q", mode)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(b.BalanceDue) {
		return nil, shared.ErrOverPayment.
			WithDetail("balance_due", b.BalanceDue.StringFixed(2)).
			WithDetail("amount", amount.StringFixed(2))
	}
	if paidOn.IsZero() {
		paidOn = time.Now()
	}
	p := &Payment{
		TenantEntity: shared.NewTenantEntity(b.TenantID),
		BillID:       b.ID,
		Amount:       amount,
		PaidOn:       shared.DateOnly(paidOn),
		Mode:         mode,
		Reference:    strings.TrimSpace(reference),
		Remarks:      strings.TrimSpace(remarks),
	}
	b.AmountPaid = b.AmountPaid.Add(amount)
	b.BalanceDue = b.NetPayable.Sub(b.AmountPaid)
	b.Status = BillPartiallyPaid
	if !b.BalanceDue.IsPositive() {
		b.Status = BillPaid
	}
	b.touch()
	b.AddDomainEvent(NewPaymentRecordedEvent(b, p))
	return p, nil
}

// CanBeDeleted reports whether the bill is still a draft
func (b *Bill) CanBeDeleted() bool {
	return b.Status == BillDraft
}

// AmountInWords spells the net payable
func (b *Bill) AmountInWords() string {
	return AmountInWords(b.NetPayable)
}

func (b *Bill) requireDraft() error {
	if b.Status != BillDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Only draft bills can be edited, current status is %s", b.Status)
	}
	return nil
}

func (b *Bill) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
