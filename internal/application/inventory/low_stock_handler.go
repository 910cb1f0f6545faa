package inventory

import (
	"context"
	"fmt"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
)

// LowStockHandler watches StockConsumed events and raises an alert when a
// product's stock across all godowns drops below its reorder level
type LowStockHandler struct {
	productRepo catalog.ProductRepository
	stockRepo   inventory.GodownStockRepository
	logger      *zap.Logger
	notifier    StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	TenantID      string `json:"tenant_id"`
	ProductID     string `json:"product_id"`
	ProductCode   string `json:"product_code"`
	GodownID      string `json:"godown_id"`
	TotalQuantity string `json:"total_quantity"`
	ReorderLevel  string `json:"reorder_level"`
	Unit          string `json:"unit"`
	ReferenceType string `json:"reference_type"`
	AlertType     string `json:"alert_type"`
}

// NewLowStockHandler creates a new handler for low stock detection
func NewLowStockHandler(productRepo catalog.ProductRepository, stockRepo inventory.GodownStockRepository, logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		logger:      logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockConsumed}
}

// Handle alerts only on the consumption that crosses the reorder level, not
// on every later one
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*inventory.StockChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockConsumed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockConsumed, event.EventType())
	}

	product, err := h.productRepo.FindByIDForTenant(ctx, event.TenantID(), changed.ProductID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", changed.ProductID, err)
	}
	if !product.ReorderLevel.IsPositive() {
		return nil
	}

	total, err := h.totalQuantity(ctx, event, changed)
	if err != nil {
		return err
	}
	before := total.Add(changed.Quantity)
	if total.GreaterThanOrEqual(product.ReorderLevel) || before.LessThan(product.ReorderLevel) {
		return nil
	}

	alertType := AlertLowStock
	if total.IsZero() {
		alertType = AlertOutOfStock
	}
	alert := StockAlert{
		TenantID:      event.TenantID().String(),
		ProductID:     product.ID.String(),
		ProductCode:   product.Code,
		GodownID:      changed.GodownID.String(),
		TotalQuantity: total.String(),
		ReorderLevel:  product.ReorderLevel.String(),
		Unit:          string(product.Unit),
		ReferenceType: changed.ReferenceType,
		AlertType:     alertType,
	}

	h.logger.Warn("stock below reorder level",
		zap.String("tenant_id", alert.TenantID),
		zap.String("product_code", alert.ProductCode),
		zap.String("total_quantity", alert.TotalQuantity),
		zap.String("reorder_level", alert.ReorderLevel),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure must not fail event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (h *LowStockHandler) totalQuantity(ctx context.Context, event shared.DomainEvent, changed *inventory.StockChangedEvent) (decimal.Decimal, error) {
	productID := changed.ProductID
	f := inventory.StockFilter{Filter: shared.Filter{Page: 1, PageSize: 100}.Normalize(), ProductID: &productID}
	total := decimal.Zero
	for {
		stocks, count, err := h.stockRepo.FindAll(ctx, event.TenantID(), f)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load stock of product %s: %w", productID, err)
		}
		for _, st := range stocks {
			total = total.Add(st.Quantity)
		}
		if int64(f.Page*f.PageSize) >= count || len(stocks) == 0 {
			return total, nil
		}
		f.Page++
	}
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier is a notifier that only logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_code", alert.ProductCode),
		zap.String("godown_id", alert.GodownID),
		zap.String("total_qty", alert.TotalQuantity),
		zap.String("reorder_level", alert.ReorderLevel),
		zap.String("unit", alert.Unit),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
