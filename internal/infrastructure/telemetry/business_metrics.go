package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics turns committed domain events into counters. It subscribes
// to the event bus, so nothing is counted for rolled back work.
type BusinessMetrics struct {
	stockMovements  metric.Int64Counter
	stockQuantity   metric.Float64Counter
	transfers       metric.Int64Counter
	transferValue   metric.Float64Counter
	allocations     metric.Int64Counter
	allocationValue metric.Float64Counter
	receipts        metric.Int64Counter
	receiptValue    metric.Float64Counter
	bills           metric.Int64Counter
	billedValue     metric.Float64Counter
	payments        metric.Int64Counter
	paymentValue    metric.Float64Counter
	attendance      metric.Int64Counter
	wageValue       metric.Float64Counter
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	b := &BusinessMetrics{}
	var err error
	ints := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&b.stockMovements, "buildledger.stock.movements", "Stock ledger movements by type"},
		{&b.transfers, "buildledger.stock.transfers", "Completed godown transfers"},
		{&b.allocations, "buildledger.allocations", "Material allocations and reversals"},
		{&b.receipts, "buildledger.goods_receipts", "Goods receipts booked"},
		{&b.bills, "buildledger.bills", "Bill lifecycle transitions"},
		{&b.payments, "buildledger.payments", "Payments recorded against bills"},
		{&b.attendance, "buildledger.attendance", "Attendance records by event"},
	}
	for _, c := range ints {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("{event}")); err != nil {
			return nil, &MetricsError{Metric: c.name, Err: err}
		}
	}
	floats := []struct {
		dst  *metric.Float64Counter
		name string
		desc string
		unit string
	}{
		{&b.stockQuantity, "buildledger.stock.quantity", "Quantity moved through the stock ledger", "{unit}"},
		{&b.transferValue, "buildledger.stock.transfer_value", "FIFO cost moved between godowns", "INR"},
		{&b.allocationValue, "buildledger.allocation_value", "Material cost allocated to projects", "INR"},
		{&b.receiptValue, "buildledger.goods_receipt_value", "Value of goods received", "INR"},
		{&b.billedValue, "buildledger.billed_value", "Gross value of issued bills", "INR"},
		{&b.paymentValue, "buildledger.payment_value", "Money received against bills", "INR"},
		{&b.wageValue, "buildledger.wage_value", "Wages accrued from attendance", "INR"},
	}
	for _, c := range floats {
		if *c.dst, err = meter.Float64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit)); err != nil {
			return nil, &MetricsError{Metric: c.name, Err: err}
		}
	}
	return b, nil
}

// EventTypes implements shared.EventHandler
func (b *BusinessMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeStockRestored,
		inventory.EventTypeStockTransferred,
		inventory.EventTypeMaterialAllocated,
		inventory.EventTypeAllocationReversed,
		purchase.EventTypeGoodsReceived,
		billing.EventTypeBillIssued,
		billing.EventTypeBillCancelled,
		billing.EventTypePaymentRecorded,
		labor.EventTypeAttendanceMarked,
		labor.EventTypeAttendanceDeleted,
	}
}

// Handle implements shared.EventHandler
func (b *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	kind := metric.WithAttributes(attribute.String("event_type", event.EventType()))

	switch e := event.(type) {
	case *inventory.StockChangedEvent:
		attrs := metric.WithAttributes(attribute.String("movement_type", string(e.MovementType)))
		b.stockMovements.Add(ctx, 1, attrs)
		b.stockQuantity.Add(ctx, amount(e.Quantity), attrs)
	case *inventory.StockTransferredEvent:
		b.transfers.Add(ctx, 1)
		b.transferValue.Add(ctx, amount(e.TotalCost))
	case *inventory.AllocationEvent:
		b.allocations.Add(ctx, 1, kind)
		if event.EventType() == inventory.EventTypeMaterialAllocated {
			b.allocationValue.Add(ctx, amount(e.TotalCost))
		}
	case *purchase.GoodsReceivedEvent:
		b.receipts.Add(ctx, 1, metric.WithAttributes(attribute.String("order_status", string(e.OrderStatus))))
		b.receiptValue.Add(ctx, amount(e.TotalValue))
	case *billing.BillEvent:
		b.bills.Add(ctx, 1, kind)
		if event.EventType() == billing.EventTypeBillIssued {
			b.billedValue.Add(ctx, amount(e.GrossTotal))
		}
	case *billing.PaymentRecordedEvent:
		attrs := metric.WithAttributes(attribute.String("mode", string(e.Mode)))
		b.payments.Add(ctx, 1, attrs)
		b.paymentValue.Add(ctx, amount(e.Amount), attrs)
	case *labor.AttendanceEvent:
		b.attendance.Add(ctx, 1, kind)
		if event.EventType() == labor.EventTypeAttendanceMarked {
			b.wageValue.Add(ctx, amount(e.WageAmount))
		}
	}
	return nil
}

// counters are monotonic, so negative inputs are dropped
func amount(d decimal.Decimal) float64 {
	if d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}

// MetricsError reports an instrument that could not be created
type MetricsError struct {
	Metric string
	Err    error
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("failed to create metric %s: %v", e.Metric, e.Err)
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}
