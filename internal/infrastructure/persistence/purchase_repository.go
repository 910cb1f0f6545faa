package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorRepository implements purchase.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByIDForTenant finds a vendor by ID within a tenant
func (r *GormVendorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Vendor, error) {
	var v purchase.Vendor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// FindAllForTenant lists vendors of a tenant
func (r *GormVendorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchase.Vendor, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&purchase.Vendor{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search, "code", "name", "gstin"), filter, "status")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vendors []purchase.Vendor
	if err := paginate(q, filter, VendorSortFields, "code").Find(&vendors).Error; err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormVendorRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &purchase.Vendor{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, v *purchase.Vendor) error {
	return saveVersioned(r.db.WithContext(ctx), v, v.TenantID, v.ID, v.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormVendorRepository) SaveWithLock(ctx context.Context, v *purchase.Vendor) error {
	return updateVersioned(r.db.WithContext(ctx), v, v.TenantID, v.ID, v.Version)
}

// DeleteForTenant deletes a vendor within a tenant
func (r *GormVendorRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &purchase.Vendor{}, tenantID, id)
}

// HasOrders reports whether any purchase order names the vendor
func (r *GormVendorRepository) HasOrders(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &purchase.PurchaseOrder{}, "tenant_id = ? AND vendor_id = ?", tenantID, id)
}

// GormPurchaseOrderRepository implements purchase.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no")
}

// FindByIDForTenant loads an order with its lines
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	var po purchase.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error; err != nil {
		return nil, translate(err)
	}
	return &po, nil
}

// FindByIDForUpdate loads and locks an order header, then reads its lines
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	var po purchase.PurchaseOrder
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error; err != nil {
		return nil, translate(err)
	}
	if err := orderLines(r.db.WithContext(ctx)).
		Where("order_id = ?", po.ID).
		Find(&po.Lines).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// FindAll lists order headers
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter purchase.OrderFilter) ([]purchase.PurchaseOrder, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&purchase.PurchaseOrder{}).Where("tenant_id = ?", tenantID)
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.GodownID != nil {
		q = q.Where("godown_id = ?", *filter.GodownID)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = search(dateRange(q, "order_date", filter.Range), f.Search, "order_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []purchase.PurchaseOrder
	if err := paginate(q, f, PurchaseOrderSortFields, "order_date").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create inserts an order with its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *purchase.PurchaseOrder) error {
	return translate(r.db.WithContext(ctx).Create(po).Error)
}

// Update saves the header with optimistic locking. Lines of a draft are
// rewritten; once confirmed, receipt lines reference them, so only the
// received quantity is written back.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, po *purchase.PurchaseOrder) error {
	db := r.db.WithContext(ctx)
	if err := updateVersioned(db, po, po.TenantID, po.ID, po.Version); err != nil {
		return err
	}
	if po.Status != purchase.OrderDraft {
		for _, line := range po.Lines {
			if err := db.Model(&purchase.OrderLine{}).
				Where("id = ? AND order_id = ?", line.ID, po.ID).
				Update("received_qty", line.ReceivedQty).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	}
	if err := db.Where("order_id = ?", po.ID).Delete(&purchase.OrderLine{}).Error; err != nil {
		return err
	}
	if len(po.Lines) == 0 {
		return nil
	}
	for i := range po.Lines {
		po.Lines[i].OrderID = po.ID
	}
	return translate(db.Create(&po.Lines).Error)
}

// DeleteForTenant deletes a draft order and its lines
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if _, err := r.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id).Delete(&purchase.OrderLine{}).Error; err != nil {
		return err
	}
	return deleteScoped(db, &purchase.PurchaseOrder{}, tenantID, id)
}

// GormGoodsReceiptRepository implements purchase.GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// Create inserts a receipt with its lines
func (r *GormGoodsReceiptRepository) Create(ctx context.Context, gr *purchase.GoodsReceipt) error {
	return translate(r.db.WithContext(ctx).Create(gr).Error)
}

// FindByOrder lists the receipts booked against an order, oldest first
func (r *GormGoodsReceiptRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]purchase.GoodsReceipt, error) {
	var receipts []purchase.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("received_date ASC, created_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}
