package labor

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists workers
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Labor, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Labor, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Labor, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, l *Labor) error
	SaveWithLock(ctx context.Context, l *Labor) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	HasAttendance(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// AssignmentRepository persists project assignments
type AssignmentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Assignment, error)
	FindOpenByLabor(ctx context.Context, tenantID, laborID uuid.UUID) (*Assignment, error)
	// FindCovering returns the assignment of laborID to projectID that covers day, or ErrNotFound
	FindCovering(ctx context.Context, tenantID, laborID, projectID uuid.UUID, day time.Time) (*Assignment, error)
	FindByLabor(ctx context.Context, tenantID, laborID uuid.UUID) ([]Assignment, error)
	FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, openOnly bool) ([]Assignment, error)
	Save(ctx context.Context, a *Assignment) error
}

// AttendanceFilter narrows attendance queries
type AttendanceFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	LaborID   *uuid.UUID
	Status    AttendanceStatus
	Range     shared.DateRange
}

// AttendanceRepository persists attendance rows
type AttendanceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Attendance, error)
	FindByLaborAndDate(ctx context.Context, tenantID, laborID uuid.UUID, day time.Time) (*Attendance, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter AttendanceFilter) ([]Attendance, int64, error)
	Save(ctx context.Context, a *Attendance) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	WageSummary(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) ([]WageSummary, error)
	SumWages(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) (decimal.Decimal, error)
}
