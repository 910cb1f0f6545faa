package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how stale a cached report may get when no event evicts it
const DefaultCacheTTL = 5 * time.Minute

// Cache stores computed reports as JSON
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was present
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix evicts every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

func tenantPrefix(tenantID uuid.UUID) string {
	return fmt.Sprintf("report:%s:", tenantID)
}

func dashboardKey(tenantID uuid.UUID) string {
	return tenantPrefix(tenantID) + "dashboard"
}

func costSheetKey(tenantID, projectID uuid.UUID) string {
	return tenantPrefix(tenantID) + "project:" + projectID.String()
}

// CacheInvalidationHandler evicts a tenant's cached reports whenever
// something they are computed from changes
type CacheInvalidationHandler struct {
	cache  Cache
	logger *zap.Logger
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(cache Cache, logger *zap.Logger) *CacheInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeGodownCreated,
		inventory.EventTypeGodownStatusChanged,
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeStockRestored,
		inventory.EventTypeStockTransferred,
		inventory.EventTypeMaterialAllocated,
		inventory.EventTypeAllocationReversed,
		labor.EventTypeLaborCreated,
		labor.EventTypeLaborStatusChanged,
		labor.EventTypeAttendanceMarked,
		labor.EventTypeAttendanceUpdated,
		labor.EventTypeAttendanceDeleted,
		project.EventTypeProjectCreated,
		project.EventTypeProjectUpdated,
		project.EventTypeProjectStatusChanged,
		purchase.EventTypeGoodsReceived,
		billing.EventTypeBillIssued,
		billing.EventTypeBillCancelled,
		billing.EventTypePaymentRecorded,
	}
}

// Handle drops every cached report of the event's tenant
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.DeletePrefix(ctx, tenantPrefix(event.TenantID())); err != nil {
		h.logger.Warn("failed to invalidate report cache",
			zap.String("tenant_id", event.TenantID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*CacheInvalidationHandler)(nil)
