package persistence

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAttendanceRepository implements labor.AttendanceRepository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// FindByIDForTenant finds an attendance row by ID within a tenant
func (r *GormAttendanceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Attendance, error) {
	var a labor.Attendance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindByLaborAndDate returns the single row a worker can have for a day
func (r *GormAttendanceRepository) FindByLaborAndDate(ctx context.Context, tenantID, laborID uuid.UUID, day time.Time) (*labor.Attendance, error) {
	var a labor.Attendance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND labor_id = ? AND work_date = ?", tenantID, laborID, shared.DateOnly(day)).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *GormAttendanceRepository) filtered(ctx context.Context, tenantID uuid.UUID, projectID, laborID *uuid.UUID, rng shared.DateRange) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&labor.Attendance{}).Where("attendance.tenant_id = ?", tenantID)
	if projectID != nil {
		q = q.Where("attendance.project_id = ?", *projectID)
	}
	if laborID != nil {
		q = q.Where("attendance.labor_id = ?", *laborID)
	}
	return dateRange(q, "attendance.work_date", rng)
}

// FindAll lists attendance rows
func (r *GormAttendanceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter labor.AttendanceFilter) ([]labor.Attendance, int64, error) {
	f := filter.Filter.Normalize()
	q := r.filtered(ctx, tenantID, filter.ProjectID, filter.LaborID, filter.Range)
	if filter.Status != "" {
		q = q.Where("attendance.status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []labor.Attendance
	if err := paginate(q, f, AttendanceSortFields, "work_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Save inserts a new row or applies an amendment with optimistic locking
func (r *GormAttendanceRepository) Save(ctx context.Context, a *labor.Attendance) error {
	return saveVersioned(r.db.WithContext(ctx), a, a.TenantID, a.ID, a.Version)
}

// DeleteForTenant deletes an attendance row within a tenant
func (r *GormAttendanceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(r.db.WithContext(ctx), &labor.Attendance{}, tenantID, id)
}

// WageSummary groups attendance per worker
func (r *GormAttendanceRepository) WageSummary(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, rng shared.DateRange) ([]labor.WageSummary, error) {
	var rows []labor.WageSummary
	err := r.filtered(ctx, tenantID, projectID, nil, rng).
		Select(`attendance.labor_id AS labor_id,
			labors.code AS labor_code,
			labors.name AS labor_name,
			SUM(CASE WHEN attendance.status = ? THEN 1 ELSE 0 END) AS present_days,
			SUM(CASE WHEN attendance.status = ? THEN 1 ELSE 0 END) AS half_days,
			SUM(CASE WHEN attendance.status = ? THEN 1 ELSE 0 END) AS absent_days,
			SUM(CASE WHEN attendance.status = ? THEN 1 ELSE 0 END) AS leave_days,
			COALESCE(SUM(attendance.overtime_hours), 0) AS overtime_hours,
			COALESCE(SUM(attendance.wage_amount), 0) AS total_wage`,
			labor.AttendancePresent, labor.AttendanceHalfDay, labor.AttendanceAbsent, labor.AttendanceLeave).
		Joins("JOIN labors ON labors.id = attendance.labor_id").
		Group("attendance.labor_id, labors.code, labors.name").
		Order("labors.code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumWages totals accrued wages
func (r *GormAttendanceRepository) SumWages(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, rng shared.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.filtered(ctx, tenantID, projectID, nil, rng).
		Select("COALESCE(SUM(attendance.wage_amount), 0)").
		Row().Scan(&total)
	return total, err
}
