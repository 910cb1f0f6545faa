package inventory

import (
	"sort"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumedLine is the part of one batch taken by a FIFO consumption
type ConsumedLine struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Cost is Quantity x UnitCost
func (l ConsumedLine) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// FIFOPlan is the ordered set of batch deductions that satisfies a request
type FIFOPlan struct {
	Lines     []ConsumedLine  `json:"lines"`
	TotalQty  decimal.Decimal `json:"total_qty"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// SortFIFO orders batches oldest first: received date, then creation time, then batch number
func SortFIFO(batches []StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.BatchNumber < b.BatchNumber
	})
}

// PlanFIFO picks batches oldest first until qty is covered. It never mutates
// the batches. When the batches cannot cover qty it returns INSUFFICIENT_STOCK
// carrying the requested and available quantities.
func PlanFIFO(batches []StockBatch, qty decimal.Decimal) (*FIFOPlan, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	ordered := make([]StockBatch, 0, len(batches))
	available := decimal.Zero
	for _, b := range batches {
		if b.HasStock() {
			ordered = append(ordered, b)
			available = available.Add(b.RemainingQty)
		}
	}
	if available.LessThan(qty) {
		return nil, shared.ErrInsufficientStock.
			WithDetail("requested", qty.String()).
			WithDetail("available", available.String())
	}
	SortFIFO(ordered)

	plan := &FIFOPlan{TotalQty: decimal.Zero, TotalCost: decimal.Zero}
	remaining := qty
	for _, b := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, b.RemainingQty)
		line := ConsumedLine{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
			UnitCost:    b.UnitCost,
		}
		plan.Lines = append(plan.Lines, line)
		plan.TotalQty = plan.TotalQty.Add(take)
		plan.TotalCost = plan.TotalCost.Add(line.Cost())
		remaining = remaining.Sub(take)
	}
	plan.TotalCost = plan.TotalCost.Round(4)
	return plan, nil
}

// AverageUnitCost is TotalCost / TotalQty
func (p *FIFOPlan) AverageUnitCost() decimal.Decimal {
	if p.TotalQty.IsZero() {
		return decimal.Zero
	}
	return p.TotalCost.Div(p.TotalQty).Round(4)
}
