package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGodownRepository implements inventory.GodownRepository using GORM
type GormGodownRepository struct {
	db *gorm.DB
}

// NewGormGodownRepository creates a new GormGodownRepository
func NewGormGodownRepository(db *gorm.DB) *GormGodownRepository {
	return &GormGodownRepository{db: db}
}

// FindByIDForTenant finds a godown by ID within a tenant
func (r *GormGodownRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Godown, error) {
	var g inventory.Godown
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&g).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// FindAllForTenant lists godowns of a tenant
func (r *GormGodownRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Godown, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.Godown{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search), filter, "status")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var godowns []inventory.Godown
	if err := paginate(q, filter, GodownSortFields, "code").Find(&godowns).Error; err != nil {
		return nil, 0, err
	}
	return godowns, total, nil
}

// FindDefault finds the default godown for a tenant
func (r *GormGodownRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*inventory.Godown, error) {
	var g inventory.Godown
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&g).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormGodownRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &inventory.Godown{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// Save creates or updates a godown
func (r *GormGodownRepository) Save(ctx context.Context, g *inventory.Godown) error {
	return saveVersioned(r.db.WithContext(ctx), g, g.TenantID, g.ID, g.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormGodownRepository) SaveWithLock(ctx context.Context, g *inventory.Godown) error {
	return updateVersioned(r.db.WithContext(ctx), g, g.TenantID, g.ID, g.Version)
}

// ClearDefault unsets IsDefault on every godown except keepID
func (r *GormGodownRepository) ClearDefault(ctx context.Context, tenantID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&inventory.Godown{}).
		Where("tenant_id = ? AND id <> ? AND is_default = ?", tenantID, keepID, true).
		Updates(map[string]any{
			"is_default": false,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// DeleteForTenant deletes a godown within a tenant
func (r *GormGodownRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &inventory.Godown{}, tenantID, id)
}

// HasStock reports whether the godown holds any quantity
func (r *GormGodownRepository) HasStock(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &inventory.GodownStock{}, "tenant_id = ? AND godown_id = ? AND quantity <> 0", tenantID, id)
}

// HasBatches reports whether any batch was ever received into the godown
func (r *GormGodownRepository) HasBatches(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &inventory.StockBatch{}, "tenant_id = ? AND godown_id = ?", tenantID, id)
}

// Count counts a tenant's godowns
func (r *GormGodownRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&inventory.Godown{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}
