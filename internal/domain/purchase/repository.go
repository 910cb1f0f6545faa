package purchase

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// VendorRepository persists vendors
type VendorRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Vendor, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, v *Vendor) error
	SaveWithLock(ctx context.Context, v *Vendor) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	HasOrders(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// OrderFilter narrows purchase order listings
type OrderFilter struct {
	shared.Filter
	VendorID  *uuid.UUID
	GodownID  *uuid.UUID
	ProjectID *uuid.UUID
	Status    OrderStatus
	Range     shared.DateRange
}

// PurchaseOrderRepository persists orders with their lines
type PurchaseOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]PurchaseOrder, int64, error)
	Create(ctx context.Context, po *PurchaseOrder) error
	// Update saves the header with optimistic locking and replaces or updates the lines
	Update(ctx context.Context, po *PurchaseOrder) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// GoodsReceiptRepository persists receipts
type GoodsReceiptRepository interface {
	Create(ctx context.Context, r *GoodsReceipt) error
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]GoodsReceipt, error)
}
