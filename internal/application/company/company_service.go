// Package company implements the client company use cases.
package company

import (
	"context"

	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyService handles client company operations
type CompanyService struct {
	companyRepo    company.Repository
	eventPublisher shared.EventPublisher
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo company.Repository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CompanyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a company
func (s *CompanyService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	c, err := company.NewCompany(tenantID, req.Code, company.Details{
		Name:          req.Name,
		GSTIN:         req.GSTIN,
		StateCode:     req.StateCode,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
	})
	if err != nil {
		return nil, err
	}
	exists, err := s.companyRepo.ExistsByCode(ctx, tenantID, c.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Company with this code already exists")
	}
	if req.CreatedBy != nil {
		c.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.companyRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, c)

	resp := ToCompanyResponse(c)
	return &resp, nil
}

// GetByID retrieves a company
func (s *CompanyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(c)
	return &resp, nil
}

// List retrieves companies with filtering and pagination
func (s *CompanyService) List(ctx context.Context, tenantID uuid.UUID, filter CompanyListFilter) (*shared.Paginated[CompanyResponse], error) {
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
	companies, total, err := s.companyRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]CompanyResponse, len(companies))
	for i := range companies {
		items[i] = ToCompanyResponse(&companies[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a company
func (s *CompanyService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	return s.mutate(ctx, tenantID, id, func(c *company.Company) error {
		return c.Update(req.details())
	})
}

// Activate re-enables a company
func (s *CompanyService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*CompanyResponse, error) {
	return s.mutate(ctx, tenantID, id, (*company.Company).Activate)
}

// Deactivate stops new projects for a company
func (s *CompanyService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*CompanyResponse, error) {
	return s.mutate(ctx, tenantID, id, (*company.Company).Deactivate)
}

// Delete removes a company that has no projects
func (s *CompanyService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	n, err := s.companyRepo.CountProjects(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewDomainError("INVALID_STATE", "Company has projects").WithDetail("projects", n)
	}
	if err := s.companyRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	c.ClearDomainEvents()
	c.AddDomainEvent(company.NewCompanyEvent(company.EventTypeCompanyDeleted, c))
	_ = shared.PublishAndClear(ctx, s.eventPublisher, c)
	return nil
}

func (s *CompanyService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*company.Company) error) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.companyRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, c)
	resp := ToCompanyResponse(c)
	return &resp, nil
}
