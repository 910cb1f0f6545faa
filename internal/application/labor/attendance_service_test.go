package labor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var workDay = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

type attendanceFixture struct {
	svc         *AttendanceService
	rows        *MockAttendanceRepository
	workers     *MockLaborRepository
	assignments *MockAssignmentRepository
	projects    *MockProjectRepository
	events      *recordingPublisher
	tenantID    uuid.UUID
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	f := &attendanceFixture{
		rows:        new(MockAttendanceRepository),
		workers:     new(MockLaborRepository),
		assignments: new(MockAssignmentRepository),
		projects:    new(MockProjectRepository),
		events:      &recordingPublisher{},
		tenantID:    uuid.New(),
	}
	scope := txn.NewNoOpScope(&txn.Set{AttendanceRepo: f.rows})
	f.svc = NewAttendanceService(f.rows, f.workers, f.assignments, f.projects, scope, nil)
	f.svc.SetEventPublisher(f.events)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestAttendanceService_Mark(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with snapshotted wage", func(t *testing.T) {
		f := newAttendanceFixture(t)
		l := newWorker(t, f.tenantID)
		p := newActiveProject(t, f.tenantID)
		a, _ := labor.NewAssignment(f.tenantID, l.ID, p.ID, workDay.AddDate(0, 0, -7), "")
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDForTenant", ctx, f.tenantID, l.ID).Return(l, nil)
		f.assignments.On("FindCovering", ctx, f.tenantID, l.ID, p.ID, workDay).Return(a, nil)
		f.rows.On("FindByLaborAndDate", ctx, f.tenantID, l.ID, workDay).Return(nil, shared.ErrNotFound)
		f.rows.On("Save", ctx, mock.AnythingOfType("*labor.Attendance")).Return(nil)

		resp, created, err := f.svc.Mark(ctx, f.tenantID, MarkAttendanceRequest{
			LaborID:       l.ID,
			ProjectID:     p.ID,
			WorkDate:      workDay.Add(10 * time.Hour),
			Status:        "half_day",
			OvertimeHours: decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, workDay, resp.WorkDate)
		assert.True(t, resp.WageAmount.Equal(decimal.NewFromInt(600)), "half of 800 plus 2h at 100, got %s", resp.WageAmount)
		assert.Equal(t, []string{labor.EventTypeAttendanceMarked}, f.events.types())
	})

	t.Run("second mark amends", func(t *testing.T) {
		f := newAttendanceFixture(t)
		l := newWorker(t, f.tenantID)
		p := newActiveProject(t, f.tenantID)
		a, _ := labor.NewAssignment(f.tenantID, l.ID, p.ID, workDay, "")
		existing, err := labor.NewAttendance(l, p.ID, workDay, labor.AttendancePresent, decimal.Zero, "", workDay)
		require.NoError(t, err)
		existing.ClearDomainEvents()
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDForTenant", ctx, f.tenantID, l.ID).Return(l, nil)
		f.assignments.On("FindCovering", ctx, f.tenantID, l.ID, p.ID, workDay).Return(a, nil)
		f.rows.On("FindByLaborAndDate", ctx, f.tenantID, l.ID, workDay).Return(existing, nil)
		f.rows.On("Save", ctx, existing).Return(nil)

		resp, created, err := f.svc.Mark(ctx, f.tenantID, MarkAttendanceRequest{
			LaborID: l.ID, ProjectID: p.ID, WorkDate: workDay, Status: "absent", OvertimeHours: decimal.NewFromInt(3),
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, resp.ID)
		assert.True(t, resp.WageAmount.IsZero())
		assert.True(t, resp.OvertimeHours.IsZero(), "overtime is dropped on days not worked")
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("future date", func(t *testing.T) {
		f := newAttendanceFixture(t)
		l := newWorker(t, f.tenantID)
		p := newActiveProject(t, f.tenantID)
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDForTenant", ctx, f.tenantID, l.ID).Return(l, nil)

		_, _, err := f.svc.Mark(ctx, f.tenantID, MarkAttendanceRequest{
			LaborID: l.ID, ProjectID: p.ID, WorkDate: workDay.AddDate(0, 0, 2), Status: "present",
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_DATE", de.Code)
	})

	t.Run("not assigned", func(t *testing.T) {
		f := newAttendanceFixture(t)
		l := newWorker(t, f.tenantID)
		p := newActiveProject(t, f.tenantID)
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDForTenant", ctx, f.tenantID, l.ID).Return(l, nil)
		f.assignments.On("FindCovering", ctx, f.tenantID, l.ID, p.ID, workDay).Return(nil, shared.ErrNotFound)

		_, _, err := f.svc.Mark(ctx, f.tenantID, MarkAttendanceRequest{
			LaborID: l.ID, ProjectID: p.ID, WorkDate: workDay, Status: "present",
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "NOT_ASSIGNED", de.Code)
		f.rows.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("project on hold", func(t *testing.T) {
		f := newAttendanceFixture(t)
		p := newActiveProject(t, f.tenantID)
		require.NoError(t, p.Hold())
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)

		_, _, err := f.svc.Mark(ctx, f.tenantID, MarkAttendanceRequest{
			LaborID: uuid.New(), ProjectID: p.ID, WorkDate: workDay, Status: "present",
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.workers.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAttendanceService_BulkMark(t *testing.T) {
	ctx := context.Background()

	t.Run("counts created and updated", func(t *testing.T) {
		f := newAttendanceFixture(t)
		p := newActiveProject(t, f.tenantID)
		first := newWorker(t, f.tenantID)
		second, err := labor.NewLabor(f.tenantID, "L-002", labor.Details{
			Name: "Suresh", Skill: labor.SkillHelper, DailyWage: decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		existing, err := labor.NewAttendance(second, p.ID, workDay, labor.AttendanceAbsent, decimal.Zero, "", workDay)
		require.NoError(t, err)
		existing.ClearDomainEvents()

		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDsForTenant", ctx, f.tenantID, []uuid.UUID{first.ID, second.ID}).
			Return([]labor.Labor{*first, *second}, nil)
		f.assignments.On("FindCovering", ctx, f.tenantID, mock.Anything, p.ID, workDay).Return(&labor.Assignment{}, nil)
		f.rows.On("FindByLaborAndDate", ctx, f.tenantID, first.ID, workDay).Return(nil, shared.ErrNotFound)
		f.rows.On("FindByLaborAndDate", ctx, f.tenantID, second.ID, workDay).Return(existing, nil)
		f.rows.On("Save", ctx, mock.AnythingOfType("*labor.Attendance")).Return(nil)

		resp, err := f.svc.BulkMark(ctx, f.tenantID, BulkMarkRequest{
			ProjectID: p.ID,
			WorkDate:  workDay,
			Lines: []BulkAttendanceLine{
				{LaborID: first.ID, Status: "present", OvertimeHours: decimal.NewFromInt(1)},
				{LaborID: second.ID, Status: "present"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Created)
		assert.Equal(t, 1, resp.Updated)
		f.rows.AssertNumberOfCalls(t, "Save", 2)
		assert.Len(t, f.events.events, 2)
	})

	t.Run("duplicate labor", func(t *testing.T) {
		f := newAttendanceFixture(t)
		p := newActiveProject(t, f.tenantID)
		id := uuid.New()
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)

		_, err := f.svc.BulkMark(ctx, f.tenantID, BulkMarkRequest{
			ProjectID: p.ID,
			WorkDate:  workDay,
			Lines:     []BulkAttendanceLine{{LaborID: id, Status: "present"}, {LaborID: id, Status: "absent"}},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("unknown labor", func(t *testing.T) {
		f := newAttendanceFixture(t)
		p := newActiveProject(t, f.tenantID)
		id := uuid.New()
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDsForTenant", ctx, f.tenantID, []uuid.UUID{id}).Return([]labor.Labor{}, nil)

		_, err := f.svc.BulkMark(ctx, f.tenantID, BulkMarkRequest{
			ProjectID: p.ID, WorkDate: workDay, Lines: []BulkAttendanceLine{{LaborID: id, Status: "present"}},
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_LABOR", de.Code)
	})

	t.Run("one failing line publishes nothing", func(t *testing.T) {
		f := newAttendanceFixture(t)
		p := newActiveProject(t, f.tenantID)
		first := newWorker(t, f.tenantID)
		f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
		f.workers.On("FindByIDsForTenant", ctx, f.tenantID, []uuid.UUID{first.ID}).Return([]labor.Labor{*first}, nil)
		f.assignments.On("FindCovering", ctx, f.tenantID, first.ID, p.ID, workDay).Return(nil, shared.ErrNotFound)

		_, err := f.svc.BulkMark(ctx, f.tenantID, BulkMarkRequest{
			ProjectID: p.ID, WorkDate: workDay, Lines: []BulkAttendanceLine{{LaborID: first.ID, Status: "present"}},
		})
		require.Error(t, err)
		assert.Empty(t, f.events.events)
	})
}

func TestAttendanceService_WageSummary(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	rows := []labor.WageSummary{
		{LaborID: uuid.New(), PresentDays: 5, TotalWage: decimal.NewFromInt(4000)},
		{LaborID: uuid.New(), PresentDays: 2, HalfDays: 2, TotalWage: decimal.NewFromInt(1500)},
	}
	f.rows.On("WageSummary", ctx, f.tenantID, (*uuid.UUID)(nil), shared.DateRange{From: from, To: to}).Return(rows, nil)

	resp, err := f.svc.WageSummary(ctx, f.tenantID, PeriodFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, resp.Workers, 2)
	assert.True(t, resp.TotalWage.Equal(decimal.NewFromInt(5500)))

	_, err = f.svc.WageSummary(ctx, f.tenantID, PeriodFilter{From: &to, To: &from})
	assert.Error(t, err)
}

func TestAttendanceService_ProjectLaborCost(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	p := newActiveProject(t, f.tenantID)
	f.projects.On("FindByIDForTenant", ctx, f.tenantID, p.ID).Return(p, nil)
	f.rows.On("SumWages", ctx, f.tenantID, &p.ID, shared.DateRange{}).Return(decimal.RequireFromString("12345.50"), nil)

	resp, err := f.svc.ProjectLaborCost(ctx, f.tenantID, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "12345.5", resp.Amount.String())
}

func TestAttendanceService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	l := newWorker(t, f.tenantID)
	a, err := labor.NewAttendance(l, uuid.New(), workDay, labor.AttendancePresent, decimal.Zero, "", workDay)
	require.NoError(t, err)
	f.rows.On("FindByIDForTenant", ctx, f.tenantID, a.ID).Return(a, nil)
	f.rows.On("DeleteForTenant", ctx, f.tenantID, a.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, a.ID))
	assert.Equal(t, []string{labor.EventTypeAttendanceDeleted}, f.events.types())
}
