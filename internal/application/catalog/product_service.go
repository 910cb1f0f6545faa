// Package catalog implements material master use cases.
package catalog

import (
	"context"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	p, err := catalog.NewProduct(tenantID, req.Code, req.details())
	if err != nil {
		return nil, err
	}
	exists, err := s.productRepo.ExistsByCode(ctx, tenantID, p.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, p)

	resp := ToProductResponse(p)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
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
	if filter.Category != "" {
		if !catalog.Category(filter.Category).IsValid() {
			return nil, shared.NewDomainErrorf("INVALID_CATEGORY", "Unknown category %q", filter.Category)
		}
		f.Filters["category"] = filter.Category
	}
	products, total, err := s.productRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a product. The unit is frozen once the product has been stocked.
func (s *ProductService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if catalog.Unit(req.Unit) != p.Unit {
		stocked, err := s.productRepo.HasStockHistory(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if stocked {
			return nil, shared.NewDomainError("INVALID_STATE", "Unit cannot change after the product has been stocked")
		}
	}
	if err := p.Update(req.details()); err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := p.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := p.Deactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

// Delete deletes a product no batch has ever referenced
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	stocked, err := s.productRepo.HasStockHistory(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if stocked {
		return shared.NewDomainError("IN_USE", "Product has stock history, deactivate instead")
	}
	return s.productRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *ProductService) save(ctx context.Context, p *catalog.Product) (*ProductResponse, error) {
	if err := s.productRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, p)
	resp := ToProductResponse(p)
	return &resp, nil
}
