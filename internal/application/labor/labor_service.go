// Package labor implements worker, assignment and attendance use cases.
package labor

import (
	"context"
	"errors"
	"time"

	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LaborService handles workers and their project assignments
type LaborService struct {
	laborRepo      labor.Repository
	assignmentRepo labor.AssignmentRepository
	projectRepo    project.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewLaborService creates a new LaborService
func NewLaborService(
	laborRepo labor.Repository,
	assignmentRepo labor.AssignmentRepository,
	projectRepo project.Repository,
	logger *zap.Logger,
) *LaborService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LaborService{
		laborRepo:      laborRepo,
		assignmentRepo: assignmentRepo,
		projectRepo:    projectRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LaborService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers an active worker
func (s *LaborService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLaborRequest) (*LaborResponse, error) {
	l, err := labor.NewLabor(tenantID, req.Code, labor.Details{
		Name:         req.Name,
		Phone:        req.Phone,
		Skill:        labor.Skill(req.Skill),
		DailyWage:    req.DailyWage,
		OvertimeRate: req.OvertimeRate,
		JoinedOn:     req.JoinedOn,
	})
	if err != nil {
		return nil, err
	}
	exists, err := s.laborRepo.ExistsByCode(ctx, tenantID, l.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Labor with this code already exists")
	}
	if req.CreatedBy != nil {
		l.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.laborRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, l)

	resp := ToLaborResponse(l)
	return &resp, nil
}

// GetByID retrieves a worker
func (s *LaborService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LaborResponse, error) {
	l, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToLaborResponse(l)
	return &resp, nil
}

// List retrieves workers with filtering and pagination
func (s *LaborService) List(ctx context.Context, tenantID uuid.UUID, filter LaborListFilter) (*shared.Paginated[LaborResponse], error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Skill != "" {
		if !labor.Skill(filter.Skill).IsValid() {
			return nil, shared.NewDomainErrorf("INVALID_SKILL", "Unknown skill %q", filter.Skill)
		}
		f.Filters["skill"] = filter.Skill
	}
	workers, total, err := s.laborRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]LaborResponse, len(workers))
	for i := range workers {
		items[i] = ToLaborResponse(&workers[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update changes the worker's details. Attendance already marked keeps its rates.
func (s *LaborService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateLaborRequest) (*LaborResponse, error) {
	return s.mutate(ctx, tenantID, id, func(l *labor.Labor) error {
		return l.Update(labor.Details{
			Name:         req.Name,
			Phone:        req.Phone,
			Skill:        labor.Skill(req.Skill),
			DailyWage:    req.DailyWage,
			OvertimeRate: req.OvertimeRate,
			JoinedOn:     req.JoinedOn,
		})
	})
}

// Activate marks a worker available
func (s *LaborService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*LaborResponse, error) {
	return s.mutate(ctx, tenantID, id, (*labor.Labor).Activate)
}

// Deactivate marks a worker unavailable and closes any open assignment today
func (s *LaborService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*LaborResponse, error) {
	resp, err := s.mutate(ctx, tenantID, id, (*labor.Labor).Deactivate)
	if err != nil {
		return nil, err
	}
	open, err := s.assignmentRepo.FindOpenByLabor(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	today := shared.DateOnly(s.now())
	if today.Before(open.FromDate) {
		today = open.FromDate
	}
	if err := s.closeAssignment(ctx, open, today); err != nil {
		return nil, err
	}
	s.logger.Info("Closed open assignment on deactivation",
		zap.String("tenant_id", tenantID.String()),
		zap.String("labor_id", id.String()),
		zap.String("project_id", open.ProjectID.String()))
	return resp, nil
}

// Delete removes a worker that has never been marked
func (s *LaborService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	l, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	marked, err := s.laborRepo.HasAttendance(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if marked {
		return shared.NewDomainError("INVALID_STATE", "Labor has attendance records, deactivate instead")
	}
	if err := s.laborRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Labor deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("labor_id", id.String()),
		zap.String("code", l.Code))
	return nil
}

// Assign places the worker on a project from the given date
func (s *LaborService) Assign(ctx context.Context, tenantID, laborID uuid.UUID, req AssignRequest) (*AssignmentResponse, error) {
	l, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, laborID)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Labor %s is inactive", l.Code)
	}
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, req.ProjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PROJECT", "Project not found")
		}
		return nil, err
	}
	if !p.AcceptsAssignments() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Cannot assign labor to a %s project", p.Status)
	}
	open, err := s.assignmentRepo.FindOpenByLabor(ctx, tenantID, laborID)
	switch {
	case err == nil:
		return nil, shared.NewDomainError("INVALID_STATE", "Labor already has an open assignment").
			WithDetail("project_id", open.ProjectID.String())
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	a, err := labor.NewAssignment(tenantID, laborID, p.ID, req.FromDate, req.Remarks)
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, labor.NewAssignmentEvent(labor.EventTypeLaborAssigned, a))

	resp := ToAssignmentResponse(a)
	return &resp, nil
}

// Release closes the worker's open assignment on the given date
func (s *LaborService) Release(ctx context.Context, tenantID, laborID uuid.UUID, req ReleaseRequest) (*AssignmentResponse, error) {
	open, err := s.assignmentRepo.FindOpenByLabor(ctx, tenantID, laborID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STATE", "Labor has no open assignment")
		}
		return nil, err
	}
	if err := s.closeAssignment(ctx, open, req.ToDate); err != nil {
		return nil, err
	}
	resp := ToAssignmentResponse(open)
	return &resp, nil
}

// AssignmentsByLabor lists a worker's assignments, newest first
func (s *LaborService) AssignmentsByLabor(ctx context.Context, tenantID, laborID uuid.UUID) ([]AssignmentResponse, error) {
	if _, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, laborID); err != nil {
		return nil, err
	}
	as, err := s.assignmentRepo.FindByLabor(ctx, tenantID, laborID)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponses(as), nil
}

// AssignmentsByProject lists the workers assigned to a project
func (s *LaborService) AssignmentsByProject(ctx context.Context, tenantID, projectID uuid.UUID, openOnly bool) ([]AssignmentResponse, error) {
	as, err := s.assignmentRepo.FindByProject(ctx, tenantID, projectID, openOnly)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponses(as), nil
}

func (s *LaborService) closeAssignment(ctx context.Context, a *labor.Assignment, to time.Time) error {
	if err := a.Close(to); err != nil {
		return err
	}
	if err := s.assignmentRepo.Save(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, labor.NewAssignmentEvent(labor.EventTypeLaborReleased, a))
	return nil
}

func (s *LaborService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish labor events", zap.Error(err))
	}
}

func (s *LaborService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*labor.Labor) error) (*LaborResponse, error) {
	l, err := s.laborRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	if err := s.laborRepo.SaveWithLock(ctx, l); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, l)
	resp := ToLaborResponse(l)
	return &resp, nil
}
