package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByIDsForTenant loads several products; missing IDs are simply absent from the result
func (r *GormProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAllForTenant lists products of a tenant
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search, "code", "name", "hsn_code"), filter, "status", "category")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []catalog.Product
	if err := paginate(q, filter, ProductSortFields, "code").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormProductRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &catalog.Product{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// FindByCodes loads the products of a tenant with the given codes
func (r *GormProductRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]catalog.Product, error) {
	if len(codes) == 0 {
		return []catalog.Product{}, nil
	}
	upper := make([]string, len(codes))
	for i, c := range codes {
		upper[i] = strings.ToUpper(c)
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code IN ?", tenantID, upper).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return saveVersioned(r.db.WithContext(ctx), p, p.TenantID, p.ID, p.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormProductRepository) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return updateVersioned(r.db.WithContext(ctx), p, p.TenantID, p.ID, p.Version)
}

// DeleteForTenant deletes a product within a tenant
func (r *GormProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &catalog.Product{}, tenantID, id)
}

// HasStockHistory reports whether any batch references the product
func (r *GormProductRepository) HasStockHistory(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &inventory.StockBatch{}, "tenant_id = ? AND product_id = ?", tenantID, id)
}
