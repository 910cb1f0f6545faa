package billing

import (
	"time"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillLineRequest is one billed item of work or material
type BillLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	HSNCode     string          `json:"hsn_code" binding:"max=10"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	Unit        string          `json:"unit" binding:"max=20"`
	Rate        decimal.Decimal `json:"rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

func (r BillLineRequest) input() billing.LineInput {
	return billing.LineInput{
		Description: r.Description,
		HSNCode:     r.HSNCode,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		Rate:        r.Rate,
		GSTRate:     r.GSTRate,
	}
}

func lineInputs(reqs []BillLineRequest) []billing.LineInput {
	inputs := make([]billing.LineInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = r.input()
	}
	return inputs
}

// BillHeaderRequest carries the editable header of a bill
type BillHeaderRequest struct {
	BillDate      *time.Time `json:"bill_date"`
	DueDate       *time.Time `json:"due_date"`
	PeriodFrom    *time.Time `json:"period_from"`
	PeriodTo      *time.Time `json:"period_to"`
	PlaceOfSupply string     `json:"place_of_supply" binding:"omitempty,len=2,numeric"`
	Remarks       string     `json:"remarks" binding:"max=1000"`
}

func (r BillHeaderRequest) header(defaultDate time.Time) billing.Header {
	h := billing.Header{
		BillDate:      defaultDate,
		DueDate:       r.DueDate,
		PeriodFrom:    r.PeriodFrom,
		PeriodTo:      r.PeriodTo,
		PlaceOfSupply: r.PlaceOfSupply,
		Remarks:       r.Remarks,
	}
	if r.BillDate != nil {
		h.BillDate = *r.BillDate
	}
	return h
}

// CreateBillRequest represents a request to open a draft bill on a project
type CreateBillRequest struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
	BillHeaderRequest
	Lines     []BillLineRequest `json:"lines" binding:"omitempty,dive"`
	CreatedBy *uuid.UUID        `json:"-"`
}

// UpdateBillRequest changes the header of a draft bill
type UpdateBillRequest struct {
	BillHeaderRequest
}

// UpdateBillLinesRequest replaces every line of a draft bill
type UpdateBillLinesRequest struct {
	Lines []BillLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RecordPaymentRequest books money received against a bill
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	PaidOn    *time.Time      `json:"paid_on"`
	Mode      string          `json:"mode" binding:"required,oneof=cash bank cheque upi"`
	Reference string          `json:"reference" binding:"max=100"`
	Remarks   string          `json:"remarks" binding:"max=500"`
	CreatedBy *uuid.UUID      `json:"-"`
}

// BillListFilter represents filter options for bill list
type BillListFilter struct {
	ProjectID *uuid.UUID `form:"-"`
	CompanyID *uuid.UUID `form:"-"`
	Status    string     `form:"status"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BillLineResponse represents a bill line
type BillLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	Taxable     decimal.Decimal `json:"taxable"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID               uuid.UUID          `json:"id"`
	BillNumber       string             `json:"bill_number"`
	ProjectID        uuid.UUID          `json:"project_id"`
	CompanyID        uuid.UUID          `json:"company_id"`
	BillDate         time.Time          `json:"bill_date"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	PeriodFrom       *time.Time         `json:"period_from,omitempty"`
	PeriodTo         *time.Time         `json:"period_to,omitempty"`
	SupplierState    string             `json:"supplier_state_code"`
	PlaceOfSupply    string             `json:"place_of_supply"`
	IntraState       bool               `json:"intra_state"`
	Status           string             `json:"status"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	CGST             decimal.Decimal    `json:"cgst"`
	SGST             decimal.Decimal    `json:"sgst"`
	IGST             decimal.Decimal    `json:"igst"`
	TaxTotal         decimal.Decimal    `json:"tax_total"`
	GrossTotal       decimal.Decimal    `json:"gross_total"`
	RetentionPercent decimal.Decimal    `json:"retention_percent"`
	RetentionAmount  decimal.Decimal    `json:"retention_amount"`
	NetPayable       decimal.Decimal    `json:"net_payable"`
	AmountPaid       decimal.Decimal    `json:"amount_paid"`
	BalanceDue       decimal.Decimal    `json:"balance_due"`
	AmountInWords    string             `json:"amount_in_words"`
	Remarks          string             `json:"remarks,omitempty"`
	IssuedAt         *time.Time         `json:"issued_at,omitempty"`
	Lines            []BillLineResponse `json:"lines"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
}

// ToBillResponse converts a domain Bill to BillResponse
func ToBillResponse(b *billing.Bill) BillResponse {
	lines := make([]BillLineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = BillLineResponse{
			ID:          l.ID,
			LineNo:      l.LineNo,
			Description: l.Description,
			HSNCode:     l.HSNCode,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			Rate:        l.Rate,
			GSTRate:     l.GSTRate,
			Taxable:     l.Taxable,
			CGST:        l.CGST,
			SGST:        l.SGST,
			IGST:        l.IGST,
			LineTotal:   l.LineTotal,
		}
	}
	return BillResponse{
		ID:               b.ID,
		BillNumber:       b.BillNumber,
		ProjectID:        b.ProjectID,
		CompanyID:        b.CompanyID,
		BillDate:         b.BillDate,
		DueDate:          b.DueDate,
		PeriodFrom:       b.PeriodFrom,
		PeriodTo:         b.PeriodTo,
		SupplierState:    b.SupplierStateCode,
		PlaceOfSupply:    b.PlaceOfSupply,
		IntraState:       b.IsIntraState(),
		Status:           string(b.Status),
		Subtotal:         b.Subtotal,
		CGST:             b.CGST,
		SGST:             b.SGST,
		IGST:             b.IGST,
		TaxTotal:         b.TaxTotal,
		GrossTotal:       b.GrossTotal,
		RetentionPercent: b.RetentionPercent,
		RetentionAmount:  b.RetentionAmount,
		NetPayable:       b.NetPayable,
		AmountPaid:       b.AmountPaid,
		BalanceDue:       b.BalanceDue,
		AmountInWords:    b.AmountInWords(),
		Remarks:          b.Remarks,
		IssuedAt:         b.IssuedAt,
		Lines:            lines,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		Version:          b.Version,
	}
}

// PaymentResponse represents a bill payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	BillID    uuid.UUID       `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidOn    time.Time       `json:"paid_on"`
	Mode      string          `json:"mode"`
	Reference string          `json:"reference,omitempty"`
	Remarks   string          `json:"remarks,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		BillID:    p.BillID,
		Amount:    p.Amount,
		PaidOn:    p.PaidOn,
		Mode:      string(p.Mode),
		Reference: p.Reference,
		Remarks:   p.Remarks,
		CreatedAt: p.CreatedAt,
	}
}

// RecordPaymentResponse returns the payment with the updated bill
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Bill    BillResponse    `json:"bill"`
}

// PDFDocument is a rendered bill ready for download
type PDFDocument struct {
	FileName string
	Data     []byte
}
