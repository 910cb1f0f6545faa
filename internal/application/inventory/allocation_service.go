package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService issues material from godowns to projects and takes it back
type AllocationService struct {
	allocationRepo inventory.AllocationRepository
	godownRepo     inventory.GodownRepository
	productRepo    catalog.ProductRepository
	projectRepo    project.Repository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	allocationRepo inventory.AllocationRepository,
	godownRepo inventory.GodownRepository,
	productRepo catalog.ProductRepository,
	projectRepo project.Repository,
	scope txn.Scope,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		allocationRepo: allocationRepo,
		godownRepo:     godownRepo,
		productRepo:    productRepo,
		projectRepo:    projectRepo,
		scope:          scope,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Allocate FIFO-consumes every item from the godown and records one line per
// batch touched. Either every item is issued or nothing is.
func (s *AllocationService) Allocate(ctx context.Context, tenantID uuid.UUID, req AllocateRequest) (*AllocationResponse, error) {
	p, err := s.findProject(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !p.AcceptsAllocations() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Project %s is %s and cannot receive material", p.Code, p.Status)
	}
	if _, err := activeGodown(ctx, s.godownRepo, tenantID, req.GodownID); err != nil {
		return nil, err
	}
	items, err := inventory.MergeItems(toItemQuantities(req.Items))
	if err != nil {
		return nil, err
	}
	if err := s.checkProducts(ctx, tenantID, items); err != nil {
		return nil, err
	}
	on := orToday(req.AllocatedOn, s.now)

	var (
		ledger *inventory.StockLedger
		alloc  *inventory.Allocation
	)
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), tenantID, shared.PrefixAllocation, on)
		if err != nil {
			return err
		}
		alloc = inventory.NewAllocation(tenantID, number, req.ProjectID, req.GodownID, on, req.Remarks)
		if req.CreatedBy != nil {
			alloc.SetCreatedBy(*req.CreatedBy)
		}
		ref := inventory.Reference{Type: inventory.RefAllocation, ID: alloc.ID}

		ledger = txn.Ledger(repos)
		for _, it := range items {
			plan, err := ledger.Consume(ctx, inventory.ConsumeInput{
				TenantID:     tenantID,
				GodownID:     req.GodownID,
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				MovementType: inventory.MovementAllocation,
				Reference:    ref,
				Remarks:      req.Remarks,
				CreatedBy:    req.CreatedBy,
			})
			if err != nil {
				var de *shared.DomainError
				if errors.As(err, &de) && de.Code == shared.ErrInsufficientStock.Code {
					return de.WithDetail("product_id", it.ProductID.String())
				}
				return err
			}
			alloc.AddConsumption(it.ProductID, plan)
		}
		if err := alloc.Complete(); err != nil {
			return err
		}
		return repos.Allocations().Create(ctx, alloc)
	})
	if err != nil {
		return nil, err
	}
	publishStocks(ctx, s.eventPublisher, s.logger, ledger.TouchedStocks())
	s.publish(ctx, alloc)

	s.logger.Info("material allocated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("allocation_number", alloc.AllocationNumber),
		zap.String("project_id", alloc.ProjectID.String()),
		zap.Int("lines", len(alloc.Lines)),
		zap.String("total_cost", alloc.TotalCost.String()))

	resp := ToAllocationResponse(alloc)
	return &resp, nil
}

// Reverse returns allocated material to the batches it came from. With no
// items everything still outstanding is returned.
func (s *AllocationService) Reverse(ctx context.Context, tenantID, id uuid.UUID, req ReverseRequest) (*AllocationResponse, error) {
	current, err := s.allocationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	p, err := s.findProject(ctx, tenantID, current.ProjectID)
	if err != nil {
		return nil, err
	}
	if !p.AcceptsReversals() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Project %s is %s, reversals are closed", p.Code, p.Status)
	}
	var items []inventory.ItemQuantity
	if len(req.Items) > 0 {
		items = toItemQuantities(req.Items)
	}

	var (
		ledger *inventory.StockLedger
		alloc  *inventory.Allocation
	)
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		alloc, err = repos.Allocations().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		steps, err := alloc.PlanReversal(items)
		if err != nil {
			return err
		}
		ledger = txn.Ledger(repos)
		ref := inventory.Reference{Type: inventory.RefAllocation, ID: alloc.ID}
		for _, step := range steps {
			if _, err := ledger.Restore(ctx, inventory.RestoreInput{
				TenantID:     tenantID,
				BatchID:      step.BatchID,
				Quantity:     step.Quantity,
				MovementType: inventory.MovementAllocationReversal,
				Reference:    ref,
				Remarks:      req.Reason,
				CreatedBy:    req.CreatedBy,
			}); err != nil {
				return err
			}
		}
		if err := alloc.ApplyReversal(steps, req.Reason); err != nil {
			return err
		}
		return repos.Allocations().Update(ctx, alloc)
	})
	if err != nil {
		return nil, err
	}
	publishStocks(ctx, s.eventPublisher, s.logger, ledger.TouchedStocks())
	s.publish(ctx, alloc)

	s.logger.Info("allocation reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("allocation_number", alloc.AllocationNumber),
		zap.String("status", string(alloc.Status)),
		zap.String("reversed_cost", alloc.ReversedCost.String()))

	resp := ToAllocationResponse(alloc)
	return &resp, nil
}

// GetByID retrieves an allocation with its lines
func (s *AllocationService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AllocationResponse, error) {
	a, err := s.allocationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAllocationResponse(a)
	return &resp, nil
}

// List retrieves allocations with filtering and pagination
func (s *AllocationService) List(ctx context.Context, tenantID uuid.UUID, filter AllocationListFilter) (*shared.Paginated[AllocationResponse], error) {
	status := inventory.AllocationStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_STATUS", "Unknown allocation status %q", filter.Status)
	}
	r, err := toDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f := inventory.AllocationFilter{
		Filter:    listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		ProjectID: filter.ProjectID,
		GodownID:  filter.GodownID,
		Status:    status,
		Range:     r,
	}
	allocations, total, err := s.allocationRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]AllocationResponse, len(allocations))
	for i := range allocations {
		items[i] = ToAllocationResponse(&allocations[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// ProjectMaterialConsumption reports net material issued to a project per product
func (s *AllocationService) ProjectMaterialConsumption(ctx context.Context, tenantID, projectID uuid.UUID) (*MaterialConsumptionResponse, error) {
	if _, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.allocationRepo.ProjectConsumption(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	net := decimal.Zero
	for _, r := range rows {
		net = net.Add(r.NetCost)
	}
	if rows == nil {
		rows = []inventory.MaterialConsumption{}
	}
	return &MaterialConsumptionResponse{ProjectID: projectID, Items: rows, NetCost: net.Round(2)}, nil
}

func (s *AllocationService) findProject(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_PROJECT", "Project not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *AllocationService) checkProducts(ctx context.Context, tenantID uuid.UUID, items []inventory.ItemQuantity) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := s.productRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]bool, len(products))
	for i := range products {
		found[products[i].ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return shared.NewDomainError("INVALID_PRODUCT", "Product not found").WithDetail("product_id", id.String())
		}
	}
	return nil
}

// publish sends the allocation events once the transaction has committed.
// The allocation is already booked, so a failure is only logged.
func (s *AllocationService) publish(ctx context.Context, alloc *inventory.Allocation) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, alloc); err != nil {
		s.logger.Warn("failed to publish allocation events",
			zap.String("allocation_number", alloc.AllocationNumber),
			zap.Error(err))
	}
}
