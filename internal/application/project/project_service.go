// Package project implements project lifecycle use cases.
package project

import (
	"context"
	"errors"

	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo    project.Repository
	companyRepo    company.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo project.Repository, companyRepo company.Repository, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projectRepo: projectRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProjectService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a planned project for an active company
func (s *ProjectService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, req.CompanyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_COMPANY", "Company not found")
		}
		return nil, err
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Company is inactive")
	}

	p, err := project.NewProject(tenantID, c.ID, req.Code, project.Details{
		Name:             req.Name,
		SiteAddress:      req.SiteAddress,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Budget:           req.Budget,
		ContractValue:    req.ContractValue,
		RetentionPercent: req.RetentionPercent,
	})
	if err != nil {
		return nil, err
	}
	exists, err := s.projectRepo.ExistsByCode(ctx, tenantID, p.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Project with this code already exists")
	}
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, p)

	resp := ToProjectResponse(p)
	return &resp, nil
}

// GetByID retrieves a project
func (s *ProjectService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// List retrieves projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, tenantID uuid.UUID, filter ProjectListFilter) (*shared.Paginated[ProjectResponse], error) {
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
	if filter.CompanyID != nil {
		f.Filters["company_id"] = *filter.CompanyID
	}
	projects, total, err := s.projectRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = ToProjectResponse(&projects[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates an open project
func (s *ProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, func(p *project.Project) error {
		return p.Update(project.Details{
			Name:             req.Name,
			SiteAddress:      req.SiteAddress,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
			Budget:           req.Budget,
			ContractValue:    req.ContractValue,
			RetentionPercent: req.RetentionPercent,
		})
	})
}

// Start moves a planned project to active
func (s *ProjectService) Start(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, (*project.Project).Start)
}

// Hold pauses an active project
func (s *ProjectService) Hold(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, (*project.Project).Hold)
}

// Resume reactivates a project on hold
func (s *ProjectService) Resume(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, (*project.Project).Resume)
}

// Complete closes an active project
func (s *ProjectService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, (*project.Project).Complete)
}

// Cancel abandons a project
func (s *ProjectService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	return s.mutate(ctx, tenantID, id, (*project.Project).Cancel)
}

// Delete removes a planned project nothing refers to
func (s *ProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !p.CanBeDeleted() {
		return shared.NewDomainErrorf("INVALID_STATE", "Only planned projects can be deleted, current status is %s", p.Status)
	}
	busy, err := s.projectRepo.HasActivity(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if busy {
		return shared.NewDomainError("INVALID_STATE", "Project has allocations, attendance or bills")
	}
	if err := s.projectRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("project_id", id.String()),
		zap.String("code", p.Code))
	return nil
}

func (s *ProjectService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*project.Project) error) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, p)
	resp := ToProjectResponse(p)
	return &resp, nil
}
