package persistence

import (
	"context"
	"strings"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByIDForTenant finds a project by ID within a tenant
func (r *GormProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindAllForTenant lists projects of a tenant
func (r *GormProjectRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]project.Project, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&project.Project{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search), filter, "status", "company_id")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []project.Project
	if err := paginate(q, filter, ProjectSortFields, "created_at").Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormProjectRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &project.Project{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return saveVersioned(r.db.WithContext(ctx), p, p.TenantID, p.ID, p.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, p *project.Project) error {
	return updateVersioned(r.db.WithContext(ctx), p, p.TenantID, p.ID, p.Version)
}

// DeleteForTenant deletes a project within a tenant
func (r *GormProjectRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &project.Project{}, tenantID, id)
}

// HasActivity reports whether any allocation, attendance or bill references the project
func (r *GormProjectRepository) HasActivity(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	for _, model := range []any{&inventory.Allocation{}, &labor.Attendance{}, &billing.Bill{}} {
		found, err := exists(db, model, "tenant_id = ? AND project_id = ?", tenantID, id)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}
