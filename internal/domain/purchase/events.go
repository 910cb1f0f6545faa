package purchase

import (
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeVendor        = "Vendor"
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeGoodsReceipt  = "GoodsReceipt"
)

// Event types
const (
	EventTypeVendorCreated       = "VendorCreated"
	EventTypeVendorUpdated       = "VendorUpdated"
	EventTypeVendorStatusChanged = "VendorStatusChanged"
	EventTypeOrderCreated        = "PurchaseOrderCreated"
	EventTypeOrderConfirmed      = "PurchaseOrderConfirmed"
	EventTypeOrderCancelled      = "PurchaseOrderCancelled"
	EventTypeGoodsReceived       = "GoodsReceived"
)

// VendorEvent is raised on vendor changes
type VendorEvent struct {
	shared.BaseDomainEvent
	Code   string        `json:"code"`
	Status shared.Status `json:"status"`
}

// NewVendorEvent builds a VendorEvent
func NewVendorEvent(eventType string, v *Vendor) *VendorEvent {
	return &VendorEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeVendor, v.ID, v.TenantID),
		Code:            v.Code,
		Status:          v.Status,
	}
}

// OrderEvent is raised on purchase order lifecycle changes
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	Status      OrderStatus     `json:"status"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewOrderEvent builds an OrderEvent
func NewOrderEvent(eventType string, po *PurchaseOrder) *OrderEvent {
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePurchaseOrder, po.ID, po.TenantID),
		OrderNumber:     po.OrderNumber,
		VendorID:        po.VendorID,
		Status:          po.Status,
		GrandTotal:      po.GrandTotal,
	}
}

// GoodsReceivedEvent is raised after a delivery is booked into stock
type GoodsReceivedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string          `json:"receipt_number"`
	OrderID       uuid.UUID       `json:"order_id"`
	GodownID      uuid.UUID       `json:"godown_id"`
	OrderStatus   OrderStatus     `json:"order_status"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// NewGoodsReceivedEvent builds a GoodsReceivedEvent
func NewGoodsReceivedEvent(r *GoodsReceipt, status OrderStatus) *GoodsReceivedEvent {
	return &GoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoodsReceived, AggregateTypeGoodsReceipt, r.ID, r.TenantID),
		ReceiptNumber:   r.ReceiptNumber,
		OrderID:         r.OrderID,
		GodownID:        r.GodownID,
		OrderStatus:     status,
		TotalValue:      r.TotalValue,
	}
}
