package labor

import (
	"context"
	"errors"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AttendanceService records worker-days and the wages they accrue
type AttendanceService struct {
	attendanceRepo labor.AttendanceRepository
	laborRepo      labor.Repository
	assignmentRepo labor.AssignmentRepository
	projectRepo    project.Repository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo labor.AttendanceRepository,
	laborRepo labor.Repository,
	assignmentRepo labor.AssignmentRepository,
	projectRepo project.Repository,
	scope txn.Scope,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		laborRepo:      laborRepo,
		assignmentRepo: assignmentRepo,
		projectRepo:    projectRepo,
		scope:          scope,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AttendanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Mark records a worker-day. A second mark for the same worker and date
// amends the existing row.
func (s *AttendanceService) Mark(ctx context.Context, tenantID uuid.UUID, req MarkAttendanceRequest) (*AttendanceResponse, bool, error) {
	if err := s.checkProject(ctx, tenantID, req.ProjectID); err != nil {
		return nil, false, err
	}
	l, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, req.LaborID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, shared.NewDomainError("INVALID_LABOR", "Labor not found")
		}
		return nil, false, err
	}
	line := BulkAttendanceLine{
		LaborID:       req.LaborID,
		Status:        req.Status,
		OvertimeHours: req.OvertimeHours,
		Remarks:       req.Remarks,
	}
	a, created, err := s.upsert(ctx, s.attendanceRepo, l, req.ProjectID, req.WorkDate, line, req.CreatedBy)
	if err != nil {
		return nil, false, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, a)

	resp := ToAttendanceResponse(a)
	return &resp, created, nil
}

// BulkMark marks many workers on one project for one day. Either every line
// is written or none is.
func (s *AttendanceService) BulkMark(ctx context.Context, tenantID uuid.UUID, req BulkMarkRequest) (*BulkMarkResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one attendance line is required")
	}
	if err := s.checkProject(ctx, tenantID, req.ProjectID); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Lines))
	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if _, dup := seen[line.LaborID]; dup {
			return nil, shared.NewDomainError("INVALID_INPUT", "Labor appears more than once").
				WithDetail("labor_id", line.LaborID.String())
		}
		seen[line.LaborID] = struct{}{}
		ids = append(ids, line.LaborID)
	}
	workers, err := s.laborRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*labor.Labor, len(workers))
	for i := range workers {
		byID[workers[i].ID] = &workers[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainError("INVALID_LABOR", "Labor not found").WithDetail("labor_id", id.String())
		}
	}

	var (
		written []*labor.Attendance
		result  BulkMarkResponse
	)
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		written = written[:0]
		result = BulkMarkResponse{}
		for _, line := range req.Lines {
			a, created, err := s.upsert(ctx, repos.Attendance(), byID[line.LaborID], req.ProjectID, req.WorkDate, line, req.CreatedBy)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			written = append(written, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range written {
		_ = shared.PublishAndClear(ctx, s.eventPublisher, a)
	}
	s.logger.Info("Bulk attendance marked",
		zap.String("tenant_id", tenantID.String()),
		zap.String("project_id", req.ProjectID.String()),
		zap.Time("work_date", shared.DateOnly(req.WorkDate)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return &result, nil
}

// GetByID retrieves one attendance row
func (s *AttendanceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AttendanceResponse, error) {
	a, err := s.attendanceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAttendanceResponse(a)
	return &resp, nil
}

// List retrieves attendance with filtering and pagination
func (s *AttendanceService) List(ctx context.Context, tenantID uuid.UUID, filter AttendanceListFilter) (*shared.Paginated[AttendanceResponse], error) {
	r := toDateRange(filter.From, filter.To)
	if !r.Valid() {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	f := labor.AttendanceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		ProjectID: filter.ProjectID,
		LaborID:   filter.LaborID,
		Status:    labor.AttendanceStatus(filter.Status),
		Range:     r,
	}
	rows, total, err := s.attendanceRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]AttendanceResponse, len(rows))
	for i := range rows {
		items[i] = ToAttendanceResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update amends status, overtime and remarks and recomputes the wage
func (s *AttendanceService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateAttendanceRequest) (*AttendanceResponse, error) {
	a, err := s.attendanceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := a.Amend(labor.AttendanceStatus(req.Status), req.OvertimeHours, req.Remarks); err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, a)
	resp := ToAttendanceResponse(a)
	return &resp, nil
}

// Delete removes an attendance row
func (s *AttendanceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	a, err := s.attendanceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.attendanceRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, labor.NewAttendanceEvent(labor.EventTypeAttendanceDeleted, a)); err != nil {
			s.logger.Warn("Failed to publish attendance deletion", zap.Error(err))
		}
	}
	return nil
}

// WageSummary totals attendance per worker over a period
func (s *AttendanceService) WageSummary(ctx context.Context, tenantID uuid.UUID, filter PeriodFilter) (*WageSummaryResponse, error) {
	r := filter.dateRange()
	if !r.Valid() {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	rows, err := s.attendanceRepo.WageSummary(ctx, tenantID, filter.ProjectID, r)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalWage)
	}
	if rows == nil {
		rows = []labor.WageSummary{}
	}
	return &WageSummaryResponse{
		ProjectID: filter.ProjectID,
		From:      filter.From,
		To:        filter.To,
		Workers:   rows,
		TotalWage: total,
	}, nil
}

// ProjectLaborCost sums the wages booked against a project
func (s *AttendanceService) ProjectLaborCost(ctx context.Context, tenantID, projectID uuid.UUID, from, to *time.Time) (*LaborCostResponse, error) {
	if _, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, projectID); err != nil {
		return nil, err
	}
	r := toDateRange(from, to)
	if !r.Valid() {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	amount, err := s.attendanceRepo.SumWages(ctx, tenantID, &projectID, r)
	if err != nil {
		return nil, err
	}
	return &LaborCostResponse{ProjectID: projectID, From: from, To: to, Amount: amount}, nil
}

func (s *AttendanceService) checkProject(ctx context.Context, tenantID, projectID uuid.UUID) error {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PROJECT", "Project not found")
		}
		return err
	}
	if !p.AcceptsAttendance() {
		return shared.NewDomainErrorf("INVALID_STATE", "Attendance can only be marked on active projects, project is %s", p.Status)
	}
	return nil
}

// upsert validates the assignment and writes one worker-day through repo
func (s *AttendanceService) upsert(
	ctx context.Context,
	repo labor.AttendanceRepository,
	l *labor.Labor,
	projectID uuid.UUID,
	workDate time.Time,
	line BulkAttendanceLine,
	createdBy *uuid.UUID,
) (*labor.Attendance, bool, error) {
	day := shared.DateOnly(workDate)
	if day.After(shared.DateOnly(s.now())) {
		return nil, false, shared.NewDomainError("INVALID_DATE", "Attendance cannot be marked for a future date")
	}
	if _, err := s.assignmentRepo.FindCovering(ctx, l.TenantID, l.ID, projectID, day); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, shared.NewDomainErrorf("NOT_ASSIGNED", "Labor %s is not assigned to the project on this date", l.Code).
				WithDetail("labor_id", l.ID.String())
		}
		return nil, false, err
	}

	status := labor.AttendanceStatus(line.Status)
	existing, err := repo.FindByLaborAndDate(ctx, l.TenantID, l.ID, day)
	switch {
	case err == nil:
		if existing.ProjectID != projectID {
			return nil, false, shared.NewDomainErrorf("INVALID_STATE", "Labor %s is already marked on another project for this date", l.Code).
				WithDetail("labor_id", l.ID.String())
		}
		if err := existing.Amend(status, line.OvertimeHours, line.Remarks); err != nil {
			return nil, false, err
		}
		if err := repo.Save(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, err
	}

	a, err := labor.NewAttendance(l, projectID, day, status, line.OvertimeHours, line.Remarks, s.now())
	if err != nil {
		return nil, false, err
	}
	if createdBy != nil {
		a.SetCreatedBy(*createdBy)
	}
	if err := repo.Save(ctx, a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}
