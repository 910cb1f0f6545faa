// Package inventory implements godown, stock and project allocation use cases.
package inventory

import (
	"context"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GodownService handles godown-related business operations
type GodownService struct {
	godownRepo     inventory.GodownRepository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewGodownService creates a new GodownService
func NewGodownService(godownRepo inventory.GodownRepository, scope txn.Scope, logger *zap.Logger) *GodownService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GodownService{
		godownRepo: godownRepo,
		scope:      scope,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *GodownService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new godown. The first godown of a tenant becomes its default.
func (s *GodownService) Create(ctx context.Context, tenantID uuid.UUID, req CreateGodownRequest) (*GodownResponse, error) {
	g, err := inventory.NewGodown(tenantID, req.Code, req.Name, req.Location)
	if err != nil {
		return nil, err
	}
	exists, err := s.godownRepo.ExistsByCode(ctx, tenantID, g.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Godown with this code already exists")
	}
	count, err := s.godownRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		g.SetCreatedBy(*req.CreatedBy)
	}
	if req.IsDefault || count == 0 {
		g.IsDefault = true
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		// the old default goes first, only one row may hold the flag
		if g.IsDefault {
			if err := repos.Godowns().ClearDefault(ctx, tenantID, g.ID); err != nil {
				return err
			}
		}
		return repos.Godowns().Save(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, g)

	resp := ToGodownResponse(g)
	return &resp, nil
}

// GetByID retrieves a godown by ID
func (s *GodownService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GodownResponse, error) {
	g, err := s.godownRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToGodownResponse(g)
	return &resp, nil
}

// List retrieves a list of godowns with filtering and pagination
func (s *GodownService) List(ctx context.Context, tenantID uuid.UUID, filter GodownListFilter) (*shared.Paginated[GodownResponse], error) {
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
	godowns, total, err := s.godownRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]GodownResponse, len(godowns))
	for i := range godowns {
		items[i] = ToGodownResponse(&godowns[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates the name and location of a godown
func (s *GodownService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateGodownRequest) (*GodownResponse, error) {
	g, err := s.godownRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := g.Update(req.Name, req.Location); err != nil {
		return nil, err
	}
	return s.save(ctx, g)
}

// SetDefault makes the godown the tenant default and clears the previous one
func (s *GodownService) SetDefault(ctx context.Context, tenantID, id uuid.UUID) (*GodownResponse, error) {
	var g *inventory.Godown
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		g, err = repos.Godowns().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if g.IsDefault {
			return nil
		}
		if err := g.MarkDefault(); err != nil {
			return err
		}
		if err := repos.Godowns().ClearDefault(ctx, tenantID, g.ID); err != nil {
			return err
		}
		return repos.Godowns().SaveWithLock(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, g)

	s.logger.Info("default godown changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("godown_id", g.ID.String()),
		zap.String("code", g.Code))

	resp := ToGodownResponse(g)
	return &resp, nil
}

// Activate activates a godown
func (s *GodownService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*GodownResponse, error) {
	g, err := s.godownRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := g.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, g)
}

// Deactivate deactivates a godown that holds no stock
func (s *GodownService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*GodownResponse, error) {
	g, err := s.godownRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	hasStock, err := s.godownRepo.HasStock(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := g.Deactivate(hasStock); err != nil {
		return nil, err
	}
	return s.save(ctx, g)
}

// Delete deletes a godown that never held a batch
func (s *GodownService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	g, err := s.godownRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	used, err := s.godownRepo.HasBatches(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("IN_USE", "Godown has stock batches, deactivate instead")
	}
	if g.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "The default godown cannot be deleted")
	}
	return s.godownRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *GodownService) save(ctx context.Context, g *inventory.Godown) (*GodownResponse, error) {
	if err := s.godownRepo.SaveWithLock(ctx, g); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, g)
	resp := ToGodownResponse(g)
	return &resp, nil
}
