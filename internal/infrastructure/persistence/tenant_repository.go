package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantRepository implements tenant.Repository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindByCode finds a tenant by its code
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.WithContext(ctx).First(&t, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindAll lists tenants
func (r *GormTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tenant.Tenant, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&tenant.Tenant{})
	q = equalFilters(search(q, filter.Search), filter, "status")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tenants []tenant.Tenant
	if err := paginate(q, filter, TenantSortFields, "code").Find(&tenants).Error; err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// ExistsByCode checks if a tenant code is taken
func (r *GormTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &tenant.Tenant{}, "code = ?", strings.ToUpper(code))
}

// Save inserts a new tenant or updates an existing one with optimistic locking
func (r *GormTenantRepository) Save(ctx context.Context, t *tenant.Tenant) error {
	db := r.db.WithContext(ctx)
	if t.Version <= 1 {
		return translate(db.Create(t).Error)
	}
	result := db.Model(t).
		Where("version = ?", t.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(t)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
