package tenant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultStatusTTL is how long a tenant lookup is served from memory
const DefaultStatusTTL = 30 * time.Second

type cachedTenant struct {
	t         tenant.Tenant
	expiresAt time.Time
}

// TenantService manages tenants and answers the per-request tenant check
type TenantService struct {
	tenantRepo     tenant.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID]cachedTenant
	ttl   time.Duration
	now   func() time.Time
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo tenant.Repository, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenantRepo: tenantRepo,
		logger:     logger,
		cache:      make(map[uuid.UUID]cachedTenant),
		ttl:        DefaultStatusTTL,
		now:        time.Now,
	}
}

// WithStatusTTL changes how long lookups are cached. Non-positive values
// keep the default.
func (s *TenantService) WithStatusTTL(ttl time.Duration) *TenantService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TenantService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a tenant
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	t, err := tenant.NewTenant(req.Code, req.Name, req.StateCode, req.GSTIN)
	if err != nil {
		return nil, err
	}
	exists, err := s.tenantRepo.ExistsByCode(ctx, t.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Tenant with this code already exists")
	}
	if err := s.tenantRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, t)

	s.logger.Info("Tenant created",
		zap.String("tenant_id", t.ID.String()),
		zap.String("code", t.Code))

	resp := ToTenantResponse(t)
	return &resp, nil
}

// GetByID retrieves a tenant
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	t, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(t)
	return &resp, nil
}

// List returns tenants matching the filter
func (s *TenantService) List(ctx context.Context, filter TenantListFilter) (*shared.Paginated[TenantResponse], error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "code",
		OrderDir: "asc",
		Search:   filter.Search,
	}.Normalize()
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	tenants, total, err := s.tenantRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]TenantResponse, len(tenants))
	for i := range tenants {
		items[i] = ToTenantResponse(&tenants[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update changes name, state code and GSTIN
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (*TenantResponse, error) {
	return s.mutate(ctx, id, func(t *tenant.Tenant) error {
		return t.Update(req.Name, req.StateCode, req.GSTIN)
	})
}

// Activate re-enables a tenant
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	return s.mutate(ctx, id, (*tenant.Tenant).Activate)
}

// Deactivate blocks all tenant-scoped requests of a tenant
func (s *TenantService) Deactivate(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	resp, err := s.mutate(ctx, id, (*tenant.Tenant).Deactivate)
	if err == nil {
		s.logger.Warn("Tenant deactivated", zap.String("tenant_id", id.String()))
	}
	return resp, err
}

func (s *TenantService) mutate(ctx context.Context, id uuid.UUID, fn func(*tenant.Tenant) error) (*TenantResponse, error) {
	t, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.forget(id)
	s.publish(ctx, t)
	resp := ToTenantResponse(t)
	return &resp, nil
}

// Lookup returns the tenant for a request, served from a short-lived cache
func (s *TenantService) Lookup(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		t := entry.t
		return &t, nil
	}

	t, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[id] = cachedTenant{t: *t, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return t, nil
}

// ValidateTenant checks that the tenant exists and is active. It returns the
// tenant code on success, shared.ErrNotFound or shared.ErrTenantInactive otherwise.
func (s *TenantService) ValidateTenant(ctx context.Context, id uuid.UUID) (string, error) {
	t, err := s.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	if !t.IsActive() {
		return t.Code, shared.ErrTenantInactive
	}
	return t.Code, nil
}

func (s *TenantService) forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

func (s *TenantService) publish(ctx context.Context, t *tenant.Tenant) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, t); err != nil {
		s.logger.Warn("Failed to publish tenant events", zap.Error(err))
	}
}
