package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByIDForTenant finds a company by ID within a tenant
func (r *GormCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	var c company.Company
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindAllForTenant lists companies of a tenant
func (r *GormCompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]company.Company, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&company.Company{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search, "code", "name", "gstin"), filter, "status")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var companies []company.Company
	if err := paginate(q, filter, CompanySortFields, "code").Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormCompanyRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &company.Company{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return saveVersioned(r.db.WithContext(ctx), c, c.TenantID, c.ID, c.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormCompanyRepository) SaveWithLock(ctx context.Context, c *company.Company) error {
	return updateVersioned(r.db.WithContext(ctx), c, c.TenantID, c.ID, c.Version)
}

// DeleteForTenant deletes a company within a tenant
func (r *GormCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &company.Company{}, tenantID, id)
}

// CountProjects counts projects billed under the company
func (r *GormCompanyRepository) CountProjects(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&project.Project{}).
		Where("tenant_id = ? AND company_id = ?", tenantID, id).
		Count(&n).Error
	return n, err
}
