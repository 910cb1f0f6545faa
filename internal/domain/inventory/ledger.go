package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedger is the only writer of batches, balances and movements. Every
// method must run inside a transaction: it locks the rows it touches and
// leaves batches, balance and ledger consistent or returns an error.
// Locks are always taken balance row first, then batches.
type StockLedger struct {
	batches   StockBatchRepository
	stocks    GodownStockRepository
	movements StockMovementRepository
	sequences shared.SequenceRepository

	touched map[uuid.UUID]*GodownStock
}

// NewStockLedger creates a ledger over transaction-bound repositories
func NewStockLedger(
	batches StockBatchRepository,
	stocks GodownStockRepository,
	movements StockMovementRepository,
	sequences shared.SequenceRepository,
) *StockLedger {
	return &StockLedger{
		batches:   batches,
		stocks:    stocks,
		movements: movements,
		sequences: sequences,
		touched:   make(map[uuid.UUID]*GodownStock),
	}
}

// ReceiveInput describes stock entering a godown as a new batch
type ReceiveInput struct {
	TenantID      uuid.UUID
	GodownID      uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	ReceivedDate  time.Time
	Source        SourceType
	SourceID      *uuid.UUID
	ParentBatchID *uuid.UUID
	// BatchNumber is generated when empty
	BatchNumber  string
	MovementType MovementType
	Reference    Reference
	Remarks      string
	CreatedBy    *uuid.UUID
}

// Receive creates a batch and books it into the godown balance and ledger
func (l *StockLedger) Receive(ctx context.Context, in ReceiveInput) (*StockBatch, error) {
	if in.ReceivedDate.IsZero() {
		in.ReceivedDate = time.Now()
	}
	if in.MovementType == "" {
		in.MovementType = MovementInward
	}
	if !in.MovementType.IsInbound() {
		return nil, shared.NewDomainErrorf("INVALID_MOVEMENT", "%s is not an inbound movement", in.MovementType)
	}
	number := in.BatchNumber
	if number == "" {
		var err error
		number, err = shared.NextDocumentNumber(ctx, l.sequences, in.TenantID, shared.PrefixBatch, in.ReceivedDate)
		if err != nil {
			return nil, err
		}
	}

	batch, err := NewStockBatch(in.TenantID, in.GodownID, in.ProductID, number, in.Source, in.Quantity, in.UnitCost, in.ReceivedDate)
	if err != nil {
		return nil, err
	}
	batch.SourceID = in.SourceID
	batch.ParentBatchID = in.ParentBatchID

	stock, err := l.lockStock(ctx, in.TenantID, in.GodownID, in.ProductID, true)
	if err != nil {
		return nil, err
	}
	if err := stock.Increase(batch.OriginalQty, batch.OriginalQty.Mul(batch.UnitCost)); err != nil {
		return nil, err
	}
	stock.AddDomainEvent(NewStockChangedEvent(EventTypeStockReceived, stock, in.MovementType, batch.OriginalQty, in.Reference))

	if err := l.batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	if err := l.saveStock(ctx, stock); err != nil {
		return nil, err
	}
	movement := NewStockMovement(in.TenantID, in.GodownID, in.ProductID, &batch.ID, in.MovementType,
		batch.OriginalQty, batch.UnitCost, stock.Quantity, in.Reference, in.Remarks, in.CreatedBy)
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return batch, nil
}

// ConsumeInput describes stock leaving a godown
type ConsumeInput struct {
	TenantID     uuid.UUID
	GodownID     uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	MovementType MovementType
	Reference    Reference
	Remarks      string
	CreatedBy    *uuid.UUID
}

// Consume takes qty out of the godown oldest batch first. On INSUFFICIENT_STOCK
// nothing has been written.
func (l *StockLedger) Consume(ctx context.Context, in ConsumeInput) (*FIFOPlan, error) {
	if in.MovementType == "" || in.MovementType.IsInbound() {
		return nil, shared.NewDomainErrorf("INVALID_MOVEMENT", "%q is not an outbound movement", in.MovementType)
	}
	if !in.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	stock, err := l.lockStock(ctx, in.TenantID, in.GodownID, in.ProductID, false)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInsufficientStock.
				WithDetail("requested", in.Quantity.String()).
				WithDetail("available", "0")
		}
		return nil, err
	}
	batches, err := l.batches.FindAvailableForUpdate(ctx, in.TenantID, in.GodownID, in.ProductID)
	if err != nil {
		return nil, err
	}
	plan, err := PlanFIFO(batches, in.Quantity)
	if err != nil {
		return nil, err
	}
	if stock.Quantity.LessThan(plan.TotalQty) {
		return nil, fmt.Errorf("godown stock %s out of step with batches: %w", stock.ID,
			shared.ErrInsufficientStock.WithDetail("requested", in.Quantity.String()).WithDetail("available", stock.Quantity.String()))
	}

	byID := make(map[uuid.UUID]*StockBatch, len(batches))
	for i := range batches {
		byID[batches[i].ID] = &batches[i]
	}
	for _, line := range plan.Lines {
		batch := byID[line.BatchID]
		if err := batch.Consume(line.Quantity); err != nil {
			return nil, err
		}
		if err := l.batches.UpdateRemaining(ctx, batch); err != nil {
			return nil, err
		}
		if err := stock.Decrease(line.Quantity, line.Cost()); err != nil {
			return nil, err
		}
		batchID := batch.ID
		movement := NewStockMovement(in.TenantID, in.GodownID, in.ProductID, &batchID, in.MovementType,
			line.Quantity, line.UnitCost, stock.Quantity, in.Reference, in.Remarks, in.CreatedBy)
		if err := l.movements.Create(ctx, movement); err != nil {
			return nil, err
		}
	}
	stock.AddDomainEvent(NewStockChangedEvent(EventTypeStockConsumed, stock, in.MovementType, plan.TotalQty, in.Reference))
	if err := l.saveStock(ctx, stock); err != nil {
		return nil, err
	}
	return plan, nil
}

// RestoreInput describes stock returning to the exact batch it left
type RestoreInput struct {
	TenantID     uuid.UUID
	BatchID      uuid.UUID
	Quantity     decimal.Decimal
	MovementType MovementType
	Reference    Reference
	Remarks      string
	CreatedBy    *uuid.UUID
}

// Restore puts qty back into its original batch at the batch's cost
func (l *StockLedger) Restore(ctx context.Context, in RestoreInput) (*StockBatch, error) {
	if in.MovementType == "" {
		in.MovementType = MovementAllocationReversal
	}
	if !in.MovementType.IsInbound() {
		return nil, shared.NewDomainErrorf("INVALID_MOVEMENT", "%s is not an inbound movement", in.MovementType)
	}
	// godown and product never change on a batch, so an unlocked read is
	// enough to find which balance row to lock first
	located, err := l.batches.FindByIDForTenant(ctx, in.TenantID, in.BatchID)
	if err != nil {
		return nil, err
	}
	stock, err := l.lockStock(ctx, in.TenantID, located.GodownID, located.ProductID, true)
	if err != nil {
		return nil, err
	}
	batch, err := l.batches.FindByIDForUpdate(ctx, in.TenantID, in.BatchID)
	if err != nil {
		return nil, err
	}
	if err := batch.Restore(in.Quantity); err != nil {
		return nil, err
	}
	if err := stock.Increase(in.Quantity, in.Quantity.Mul(batch.UnitCost)); err != nil {
		return nil, err
	}
	stock.AddDomainEvent(NewStockChangedEvent(EventTypeStockRestored, stock, in.MovementType, in.Quantity, in.Reference))

	if err := l.batches.UpdateRemaining(ctx, batch); err != nil {
		return nil, err
	}
	if err := l.saveStock(ctx, stock); err != nil {
		return nil, err
	}
	batchID := batch.ID
	movement := NewStockMovement(in.TenantID, batch.GodownID, batch.ProductID, &batchID, in.MovementType,
		in.Quantity, batch.UnitCost, stock.Quantity, in.Reference, in.Remarks, in.CreatedBy)
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return batch, nil
}

// CurrentAverageCost returns the weighted average cost of a product in a godown, zero when none is held
func (l *StockLedger) CurrentAverageCost(ctx context.Context, tenantID, godownID, productID uuid.UUID) (decimal.Decimal, error) {
	stock, err := l.lockStock(ctx, tenantID, godownID, productID, false)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return stock.AverageCost, nil
}

// TouchedStocks returns every balance changed through this ledger, for event publishing
func (l *StockLedger) TouchedStocks() []*GodownStock {
	out := make([]*GodownStock, 0, len(l.touched))
	for _, s := range l.touched {
		out = append(out, s)
	}
	return out
}

// lockStock returns the cached balance for the key or locks it from the store.
// With create set, a missing balance row is inserted empty first. Create
// ignores a row that already exists, so two first receipts racing on the
// same key both end up locking the one row.
func (l *StockLedger) lockStock(ctx context.Context, tenantID, godownID, productID uuid.UUID, create bool) (*GodownStock, error) {
	for _, s := range l.touched {
		if s.GodownID == godownID && s.ProductID == productID {
			return s, nil
		}
	}
	stock, err := l.stocks.FindForUpdate(ctx, tenantID, godownID, productID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, shared.ErrNotFound) || !create {
		return nil, err
	}
	if err := l.stocks.Create(ctx, NewGodownStock(tenantID, godownID, productID)); err != nil {
		return nil, err
	}
	return l.stocks.FindForUpdate(ctx, tenantID, godownID, productID)
}

func (l *StockLedger) saveStock(ctx context.Context, stock *GodownStock) error {
	stock.IncrementVersion()
	if err := l.stocks.Update(ctx, stock); err != nil {
		return err
	}
	l.touched[stock.ID] = stock
	return nil
}
