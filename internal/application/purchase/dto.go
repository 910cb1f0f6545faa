package purchase

import (
	"time"

	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateVendorRequest represents a request to create a vendor
type CreateVendorRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	GSTIN     string     `json:"gstin" binding:"omitempty,gstin"`
	StateCode string     `json:"state_code" binding:"omitempty,len=2,numeric"`
	Phone     string     `json:"phone" binding:"omitempty,phone"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Address   string     `json:"address" binding:"max=1000"`
	CreatedBy *uuid.UUID `json:"-"`
}

func (r CreateVendorRequest) details() purchase.VendorDetails {
	return purchase.VendorDetails{
		Name:      r.Name,
		GSTIN:     r.GSTIN,
		StateCode: r.StateCode,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
	}
}

// UpdateVendorRequest represents a request to update a vendor
type UpdateVendorRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	GSTIN     string `json:"gstin" binding:"omitempty,gstin"`
	StateCode string `json:"state_code" binding:"omitempty,len=2,numeric"`
	Phone     string `json:"phone" binding:"omitempty,phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address" binding:"max=1000"`
}

func (r UpdateVendorRequest) details() purchase.VendorDetails {
	return purchase.VendorDetails{
		Name:      r.Name,
		GSTIN:     r.GSTIN,
		StateCode: r.StateCode,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
	}
}

// VendorListFilter represents filter options for vendor list
type VendorListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin,omitempty"`
	StateCode string    `json:"state_code,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToVendorResponse converts a domain Vendor to VendorResponse
func ToVendorResponse(v *purchase.Vendor) VendorResponse {
	return VendorResponse{
		ID:        v.ID,
		Code:      v.Code,
		Name:      v.Name,
		GSTIN:     v.GSTIN,
		StateCode: v.StateCode,
		Phone:     v.Phone,
		Email:     v.Email,
		Address:   v.Address,
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		Version:   v.Version,
	}
}

// OrderLineRequest is one product line of a purchase order
type OrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required,decimal_gt0"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	GSTRate   *decimal.Decimal `json:"gst_rate"`
}

// CreateOrderRequest represents a request to create a draft purchase order
type CreateOrderRequest struct {
	VendorID     uuid.UUID          `json:"vendor_id" binding:"required"`
	GodownID     uuid.UUID          `json:"godown_id" binding:"required"`
	ProjectID    *uuid.UUID         `json:"project_id"`
	OrderDate    *time.Time         `json:"order_date"`
	ExpectedDate *time.Time         `json:"expected_date"`
	Remarks      string             `json:"remarks" binding:"max=1000"`
	Lines        []OrderLineRequest `json:"lines" binding:"omitempty,dive"`
	CreatedBy    *uuid.UUID         `json:"-"`
}

// UpdateLinesRequest replaces every line of a draft order
type UpdateLinesRequest struct {
	Lines []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiptLineRequest is the quantity received against one order line
type ReceiptLineRequest struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
}

// ReceiveRequest records goods arriving against an order
type ReceiveRequest struct {
	Lines        []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	ReceivedDate *time.Time           `json:"received_date"`
	Remarks      string               `json:"remarks" binding:"max=1000"`
	CreatedBy    *uuid.UUID           `json:"-"`
}

// OrderListFilter represents filter options for purchase order list
type OrderListFilter struct {
	VendorID  *uuid.UUID `form:"-"`
	GodownID  *uuid.UUID `form:"-"`
	ProjectID *uuid.UUID `form:"-"`
	Status    string     `form:"status"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderLineResponse represents a purchase order line
type OrderLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	ProductID   uuid.UUID       `json:"product_id"`
	OrderedQty  decimal.Decimal `json:"ordered_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	Outstanding decimal.Decimal `json:"outstanding_qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	Taxable     decimal.Decimal `json:"taxable"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	VendorID     uuid.UUID           `json:"vendor_id"`
	GodownID     uuid.UUID           `json:"godown_id"`
	ProjectID    *uuid.UUID          `json:"project_id,omitempty"`
	OrderDate    time.Time           `json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	Remarks      string              `json:"remarks,omitempty"`
	Status       string              `json:"status"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	TaxTotal     decimal.Decimal     `json:"tax_total"`
	GrandTotal   decimal.Decimal     `json:"grand_total"`
	ConfirmedAt  *time.Time          `json:"confirmed_at,omitempty"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Version      int                 `json:"version"`
}

// ToOrderResponse converts a domain PurchaseOrder to OrderResponse
func ToOrderResponse(po *purchase.PurchaseOrder) OrderResponse {
	lines := make([]OrderLineResponse, len(po.Lines))
	for i, l := range po.Lines {
		lines[i] = OrderLineResponse{
			ID:          l.ID,
			LineNo:      l.LineNo,
			ProductID:   l.ProductID,
			OrderedQty:  l.OrderedQty,
			ReceivedQty: l.ReceivedQty,
			Outstanding: l.Outstanding(),
			UnitPrice:   l.UnitPrice,
			GSTRate:     l.GSTRate,
			Taxable:     l.Taxable,
			TaxAmount:   l.TaxAmount,
			LineTotal:   l.LineTotal,
		}
	}
	return OrderResponse{
		ID:           po.ID,
		OrderNumber:  po.OrderNumber,
		VendorID:     po.VendorID,
		GodownID:     po.GodownID,
		ProjectID:    po.ProjectID,
		OrderDate:    po.OrderDate,
		ExpectedDate: po.ExpectedDate,
		Remarks:      po.Remarks,
		Status:       string(po.Status),
		Subtotal:     po.Subtotal,
		TaxTotal:     po.TaxTotal,
		GrandTotal:   po.GrandTotal,
		ConfirmedAt:  po.ConfirmedAt,
		Lines:        lines,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
		Version:      po.Version,
	}
}

// ReceiptLineResponse is one line of a goods receipt
type ReceiptLineResponse struct {
	OrderLineID uuid.UUID       `json:"order_line_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     uuid.UUID       `json:"batch_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// ReceiptResponse represents a goods receipt note
type ReceiptResponse struct {
	ID            uuid.UUID             `json:"id"`
	ReceiptNumber string                `json:"receipt_number"`
	OrderID       uuid.UUID             `json:"order_id"`
	GodownID      uuid.UUID             `json:"godown_id"`
	ReceivedDate  time.Time             `json:"received_date"`
	Remarks       string                `json:"remarks,omitempty"`
	TotalValue    decimal.Decimal       `json:"total_value"`
	Lines         []ReceiptLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ToReceiptResponse converts a GoodsReceipt to ReceiptResponse
func ToReceiptResponse(r *purchase.GoodsReceipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = ReceiptLineResponse{
			OrderLineID: l.OrderLineID,
			ProductID:   l.ProductID,
			BatchID:     l.BatchID,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
		}
	}
	return ReceiptResponse{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		OrderID:       r.OrderID,
		GodownID:      r.GodownID,
		ReceivedDate:  r.ReceivedDate,
		Remarks:       r.Remarks,
		TotalValue:    r.TotalValue,
		Lines:         lines,
		CreatedAt:     r.CreatedAt,
	}
}

// ReceiveResponse reports the receipt and the order after it
type ReceiveResponse struct {
	Receipt         ReceiptResponse `json:"receipt"`
	Order           OrderResponse   `json:"order"`
	IsFullyReceived bool            `json:"is_fully_received"`
}
