package labor

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLaborRepository struct {
	mock.Mock
}

func (m *MockLaborRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Labor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Labor), args.Error(1)
}

func (m *MockLaborRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]labor.Labor, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]labor.Labor), args.Error(1)
}

func (m *MockLaborRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]labor.Labor, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]labor.Labor), args.Get(1).(int64), args.Error(2)
}

func (m *MockLaborRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockLaborRepository) Save(ctx context.Context, l *labor.Labor) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLaborRepository) SaveWithLock(ctx context.Context, l *labor.Labor) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLaborRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockLaborRepository) HasAttendance(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Assignment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindOpenByLabor(ctx context.Context, tenantID, laborID uuid.UUID) (*labor.Assignment, error) {
	args := m.Called(ctx, tenantID, laborID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindCovering(ctx context.Context, tenantID, laborID, projectID uuid.UUID, day time.Time) (*labor.Assignment, error) {
	args := m.Called(ctx, tenantID, laborID, projectID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByLabor(ctx context.Context, tenantID, laborID uuid.UUID) ([]labor.Assignment, error) {
	args := m.Called(ctx, tenantID, laborID)
	return args.Get(0).([]labor.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, openOnly bool) ([]labor.Assignment, error) {
	args := m.Called(ctx, tenantID, projectID, openOnly)
	return args.Get(0).([]labor.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Save(ctx context.Context, a *labor.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*labor.Attendance, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) FindByLaborAndDate(ctx context.Context, tenantID, laborID uuid.UUID, day time.Time) (*labor.Attendance, error) {
	args := m.Called(ctx, tenantID, laborID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*labor.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter labor.AttendanceFilter) ([]labor.Attendance, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]labor.Attendance), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttendanceRepository) Save(ctx context.Context, a *labor.Attendance) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAttendanceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockAttendanceRepository) WageSummary(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) ([]labor.WageSummary, error) {
	args := m.Called(ctx, tenantID, projectID, r)
	return args.Get(0).([]labor.WageSummary), args.Error(1)
}

func (m *MockAttendanceRepository) SumWages(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, projectID, r)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockProjectRepository only answers lookups
type MockProjectRepository struct {
	mock.Mock
	project.Repository
}

func (m *MockProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
