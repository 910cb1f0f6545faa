// Package purchase implements vendor, purchase order and goods receipt use cases.
package purchase

import (
	"context"

	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// VendorService handles vendor operations
type VendorService struct {
	vendorRepo     purchase.VendorRepository
	eventPublisher shared.EventPublisher
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo purchase.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *VendorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a vendor
func (s *VendorService) Create(ctx context.Context, tenantID uuid.UUID, req CreateVendorRequest) (*VendorResponse, error) {
	v, err := purchase.NewVendor(tenantID, req.Code, req.details())
	if err != nil {
		return nil, err
	}
	exists, err := s.vendorRepo.ExistsByCode(ctx, tenantID, v.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Vendor with this code already exists")
	}
	if req.CreatedBy != nil {
		v.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.vendorRepo.Save(ctx, v); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, v)

	resp := ToVendorResponse(v)
	return &resp, nil
}

// GetByID retrieves a vendor
func (s *VendorService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*VendorResponse, error) {
	v, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToVendorResponse(v)
	return &resp, nil
}

// List retrieves vendors with filtering and pagination
func (s *VendorService) List(ctx context.Context, tenantID uuid.UUID, filter VendorListFilter) (*shared.Paginated[VendorResponse], error) {
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
	vendors, total, err := s.vendorRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]VendorResponse, len(vendors))
	for i := range vendors {
		items[i] = ToVendorResponse(&vendors[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	return s.mutate(ctx, tenantID, id, func(v *purchase.Vendor) error {
		return v.Update(req.details())
	})
}

// Activate re-enables a vendor
func (s *VendorService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*VendorResponse, error) {
	return s.mutate(ctx, tenantID, id, (*purchase.Vendor).Activate)
}

// Deactivate stops new orders to a vendor
func (s *VendorService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*VendorResponse, error) {
	return s.mutate(ctx, tenantID, id, (*purchase.Vendor).Deactivate)
}

// Delete removes a vendor that was never ordered from
func (s *VendorService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	used, err := s.vendorRepo.HasOrders(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if used {
		return shared.ErrInUse.WithDetail("reason", "vendor has purchase orders")
	}
	return s.vendorRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *VendorService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*purchase.Vendor) error) (*VendorResponse, error) {
	v, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(v); err != nil {
		return nil, err
	}
	if err := s.vendorRepo.SaveWithLock(ctx, v); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, v)
	resp := ToVendorResponse(v)
	return &resp, nil
}
