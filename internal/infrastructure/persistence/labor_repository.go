package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLaborRepository implements labor.Repository using GORM
type GormLaborRepository struct {
	db *gorm.DB
}

// NewGormLaborRepository creates a new GormLaborRepository
func NewGormLaborRepository(db *gorm.DB) *GormLaborRepository {
	return &GormLaborRepository{db: db}
}

// FindByIDForTenant finds a worker by ID within a tenant
func (r *GormLaborRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Labor, error) {
	var l labor.Labor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// FindByIDsForTenant loads several workers
func (r *GormLaborRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]labor.Labor, error) {
	if len(ids) == 0 {
		return []labor.Labor{}, nil
	}
	var workers []labor.Labor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

// FindAllForTenant lists workers of a tenant
func (r *GormLaborRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]labor.Labor, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&labor.Labor{}).Where("tenant_id = ?", tenantID)
	q = equalFilters(search(q, filter.Search, "code", "name", "phone"), filter, "status", "skill")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var workers []labor.Labor
	if err := paginate(q, filter, LaborSortFields, "code").Find(&workers).Error; err != nil {
		return nil, 0, err
	}
	return workers, total, nil
}

// ExistsByCode checks if a code is taken within a tenant
func (r *GormLaborRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return exists(r.db.WithContext(ctx), &labor.Labor{}, "tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code))
}

// Save creates or updates a worker
func (r *GormLaborRepository) Save(ctx context.Context, l *labor.Labor) error {
	return saveVersioned(r.db.WithContext(ctx), l, l.TenantID, l.ID, l.Version)
}

// SaveWithLock saves with optimistic locking
func (r *GormLaborRepository) SaveWithLock(ctx context.Context, l *labor.Labor) error {
	return updateVersioned(r.db.WithContext(ctx), l, l.TenantID, l.ID, l.Version)
}

// DeleteForTenant deletes a worker and their assignments
func (r *GormLaborRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tenant_id = ? AND labor_id = ?", tenantID, id).Delete(&labor.Assignment{}).Error; err != nil {
		return err
	}
	return deleteScoped(db, &labor.Labor{}, tenantID, id)
}

// HasAttendance reports whether the worker was ever marked
func (r *GormLaborRepository) HasAttendance(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &labor.Attendance{}, "tenant_id = ? AND labor_id = ?", tenantID, id)
}

// GormAssignmentRepository implements labor.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByIDForTenant finds an assignment by ID within a tenant
func (r *GormAssignmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Assignment, error) {
	var a labor.Assignment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindOpenByLabor returns the assignment with no end date
func (r *GormAssignmentRepository) FindOpenByLabor(ctx context.Context, tenantID, laborID uuid.UUID) (*labor.Assignment, error) {
	var a labor.Assignment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND labor_id = ? AND to_date IS NULL", tenantID, laborID).
		Order("from_date DESC").
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindCovering returns the assignment of laborID to projectID that covers day
func (r *GormAssignmentRepository) FindCovering(ctx context.Context, tenantID, laborID, projectID uuid.UUID, day time.Time) (*labor.Assignment, error) {
	day = shared.DateOnly(day)
	var a labor.Assignment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND labor_id = ? AND project_id = ?", tenantID, laborID, projectID).
		Where("from_date <= ? AND (to_date IS NULL OR to_date >= ?)", day, day).
		Order("from_date DESC").
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindByLabor lists a worker's assignment history, newest first
func (r *GormAssignmentRepository) FindByLabor(ctx context.Context, tenantID, laborID uuid.UUID) ([]labor.Assignment, error) {
	var list []labor.Assignment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND labor_id = ?", tenantID, laborID).
		Order("from_date DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByProject lists assignments to a project
func (r *GormAssignmentRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, openOnly bool) ([]labor.Assignment, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ? AND project_id = ?", tenantID, projectID)
	if openOnly {
		q = q.Where("to_date IS NULL")
	}
	var list []labor.Assignment
	if err := q.Order("from_date DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates or updates an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, a *labor.Assignment) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}
