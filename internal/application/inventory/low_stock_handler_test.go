package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockStockAlertNotifier is a mock notifier for testing
type MockStockAlertNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
}

func NewMockStockAlertNotifier() *MockStockAlertNotifier {
	return &MockStockAlertNotifier{
		alerts: make([]StockAlert, 0),
	}
}

func (n *MockStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *MockStockAlertNotifier) GetAlerts() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]StockAlert, len(n.alerts))
	copy(result, n.alerts)
	return result
}

// consume issues qty of cement from godown through an adjustment and feeds
// the published StockConsumed event to the handler
func consume(t *testing.T, f *fixture, h *LowStockHandler, godownID uuid.UUID, qty int64) {
	t.Helper()
	ctx := context.Background()
	f.published.events = nil
	_, err := f.stock.Adjust(ctx, f.tenantID, AdjustStockRequest{
		GodownID: godownID, ProductID: f.cement.ID, Delta: d(-qty), Reason: "issue",
	})
	require.NoError(t, err)
	events := f.published.ofType(inventory.EventTypeStockConsumed)
	require.Len(t, events, 1)
	require.NoError(t, h.Handle(ctx, events[0]))
}

func TestLowStockHandler_Handle(t *testing.T) {
	f := newFixture(t)
	notifier := NewMockStockAlertNotifier()
	handler := NewLowStockHandler(memProducts{s: f.store}, memStocks{f.store}, zaptest.NewLogger(t)).
		WithNotifier(notifier)

	// reorder level of cement is 50, spread over two godowns
	f.receive(t, f.main.ID, f.cement.ID, 40, 10, 1)
	f.receive(t, f.site.ID, f.cement.ID, 30, 10, 1)

	t.Run("above reorder level", func(t *testing.T) {
		consume(t, f, handler, f.main.ID, 10)
		assert.Empty(t, notifier.GetAlerts())
	})

	t.Run("crossing the reorder level alerts once", func(t *testing.T) {
		consume(t, f, handler, f.main.ID, 20)
		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, AlertLowStock, alerts[0].AlertType)
		assert.Equal(t, "40", alerts[0].TotalQuantity)
		assert.Equal(t, "50", alerts[0].ReorderLevel)
		assert.Equal(t, "CEM-OPC53", alerts[0].ProductCode)
		assert.Equal(t, f.tenantID.String(), alerts[0].TenantID)
	})

	t.Run("already below does not alert again", func(t *testing.T) {
		consume(t, f, handler, f.site.ID, 5)
		assert.Len(t, notifier.GetAlerts(), 1)
	})

	t.Run("returns error for wrong event type", func(t *testing.T) {
		g, err := inventory.NewGodown(f.tenantID, "X", "X", "")
		require.NoError(t, err)
		err = handler.Handle(context.Background(), g.GetDomainEvents()[0])
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}

func TestLowStockHandler_OutOfStock(t *testing.T) {
	f := newFixture(t)
	notifier := NewMockStockAlertNotifier()
	handler := NewLowStockHandler(memProducts{s: f.store}, memStocks{f.store}, zap.NewNop()).
		WithNotifier(notifier)
	f.receive(t, f.main.ID, f.cement.ID, 60, 10, 1)

	consume(t, f, handler, f.main.ID, 60)
	alerts := notifier.GetAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertOutOfStock, alerts[0].AlertType)
}

func TestLowStockHandler_NoReorderLevel(t *testing.T) {
	f := newFixture(t)
	notifier := NewMockStockAlertNotifier()
	handler := NewLowStockHandler(memProducts{s: f.store}, memStocks{f.store}, zap.NewNop()).
		WithNotifier(notifier)
	f.receive(t, f.main.ID, f.steel.ID, 10, 60, 1)
	f.published.events = nil

	_, err := f.stock.Adjust(context.Background(), f.tenantID, AdjustStockRequest{
		GodownID: f.main.ID, ProductID: f.steel.ID, Delta: d(-10), Reason: "issue",
	})
	require.NoError(t, err)
	require.NoError(t, handler.Handle(context.Background(), f.published.ofType(inventory.EventTypeStockConsumed)[0]))
	assert.Empty(t, notifier.GetAlerts())
}

func TestLowStockHandler_EventTypes(t *testing.T) {
	handler := NewLowStockHandler(nil, nil, zap.NewNop())

	eventTypes := handler.EventTypes()
	assert.Len(t, eventTypes, 1)
	assert.Equal(t, inventory.EventTypeStockConsumed, eventTypes[0])
}

func TestLoggingStockAlertNotifier_SendAlert(t *testing.T) {
	notifier := NewLoggingStockAlertNotifier(zaptest.NewLogger(t))

	err := notifier.SendAlert(context.Background(), StockAlert{
		TenantID:      uuid.New().String(),
		ProductID:     uuid.New().String(),
		ProductCode:   "CEM-OPC53",
		TotalQuantity: "5",
		ReorderLevel:  "50",
		AlertType:     AlertLowStock,
	})
	assert.NoError(t, err)
}
