package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStatus tracks how much of an allocation has been returned
type AllocationStatus string

const (
	AllocationAllocated         AllocationStatus = "allocated"
	AllocationPartiallyReversed AllocationStatus = "partially_reversed"
	AllocationReversed          AllocationStatus = "reversed"
)

// IsValid reports whether the status is known
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationAllocated, AllocationPartiallyReversed, AllocationReversed:
		return true
	}
	return false
}

// Allocation issues material from a godown to a project. Each line is the
// part of one batch consumed, in consumption order, so a reversal can return
// stock to the same batches it came from.
type Allocation struct {
	shared.TenantAggregateRoot
	AllocationNumber string           `gorm:"type:varchar(30);not null"`
	ProjectID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	GodownID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	AllocatedOn      time.Time        `gorm:"type:date;not null"`
	Remarks          string           `gorm:"type:text"`
	Status           AllocationStatus `gorm:"type:varchar(30);not null"`
	TotalCost        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ReversedCost     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Lines            []AllocationLine `gorm:"foreignKey:AllocationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// AllocationLine is one batch slice issued to the project
type AllocationLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AllocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID      uuid.UUID       `gorm:"type:uuid;not null"`
	BatchNumber  string          `gorm:"type:varchar(50);not null"`
	Seq          int             `gorm:"not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReversedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (AllocationLine) TableName() string {
	return "allocation_lines"
}

// Outstanding is the quantity still with the project
func (l AllocationLine) Outstanding() decimal.Decimal {
	return l.Quantity.Sub(l.ReversedQty)
}

// ItemQuantity is a product and quantity pair from a request
type ItemQuantity struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// MergeItems sums duplicate products, keeps first-seen order and rejects non-positive quantities
func MergeItems(items []ItemQuantity) ([]ItemQuantity, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one item is required")
	}
	index := make(map[uuid.UUID]int, len(items))
	merged := make([]ItemQuantity, 0, len(items))
	for _, it := range items {
		if it.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Product is required on every item")
		}
		if !it.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(it.Quantity)
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// NewAllocation opens an allocation document without lines
func NewAllocation(tenantID uuid.UUID, number string, projectID, godownID uuid.UUID, on time.Time, remarks string) *Allocation {
	if on.IsZero() {
		on = time.Now()
	}
	return &Allocation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AllocationNumber:    number,
		ProjectID:           projectID,
		GodownID:            godownID,
		AllocatedOn:         shared.DateOnly(on),
		Remarks:             strings.TrimSpace(remarks),
		Status:              AllocationAllocated,
		TotalCost:           decimal.Zero,
		ReversedCost:        decimal.Zero,
	}
}

// AddConsumption appends the FIFO lines consumed for productID
func (a *Allocation) AddConsumption(productID uuid.UUID, plan *FIFOPlan) {
	for _, c := range plan.Lines {
		a.Lines = append(a.Lines, AllocationLine{
			ID:           uuid.New(),
			AllocationID: a.ID,
			ProductID:    productID,
			BatchID:      c.BatchID,
			BatchNumber:  c.BatchNumber,
			Seq:          len(a.Lines) + 1,
			Quantity:     c.Quantity,
			ReversedQty:  decimal.Zero,
			UnitCost:     c.UnitCost,
		})
	}
	a.TotalCost = a.TotalCost.Add(plan.TotalCost).Round(4)
}

// Complete raises the allocation event once every item has been consumed
func (a *Allocation) Complete() error {
	if len(a.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Allocation has no lines")
	}
	a.AddDomainEvent(NewAllocationEvent(EventTypeMaterialAllocated, a, decimal.Zero))
	return nil
}

// ReversalStep returns qty from one allocation line to its batch
type ReversalStep struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	BatchID   uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// PlanReversal works out which lines give back stock. A nil items slice
// reverses everything outstanding. For each product the most recently
// consumed lines are unwound first.
func (a *Allocation) PlanReversal(items []ItemQuantity) ([]ReversalStep, error) {
	if a.Status == AllocationReversed {
		return nil, shared.NewDomainError("INVALID_STATE", "Allocation is already fully reversed")
	}

	if items == nil {
		var steps []ReversalStep
		for i := len(a.Lines) - 1; i >= 0; i-- {
			l := a.Lines[i]
			if out := l.Outstanding(); out.IsPositive() {
				steps = append(steps, ReversalStep{LineID: l.ID, ProductID: l.ProductID, BatchID: l.BatchID, Quantity: out, UnitCost: l.UnitCost})
			}
		}
		sortStepsBySeqDesc(steps, a.Lines)
		return steps, nil
	}

	merged, err := MergeItems(items)
	if err != nil {
		return nil, err
	}
	var steps []ReversalStep
	for _, it := range merged {
		lines := a.linesFor(it.ProductID)
		if len(lines) == 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Product is not part of this allocation").
				WithDetail("product_id", it.ProductID.String())
		}
		outstanding := decimal.Zero
		for _, l := range lines {
			outstanding = outstanding.Add(l.Outstanding())
		}
		if it.Quantity.GreaterThan(outstanding) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Reversal quantity exceeds the quantity still allocated").
				WithDetail("product_id", it.ProductID.String()).
				WithDetail("requested", it.Quantity.String()).
				WithDetail("outstanding", outstanding.String())
		}
		need := it.Quantity
		for i := len(lines) - 1; i >= 0 && need.IsPositive(); i-- {
			l := lines[i]
			take := decimal.Min(need, l.Outstanding())
			if !take.IsPositive() {
				continue
			}
			steps = append(steps, ReversalStep{LineID: l.ID, ProductID: l.ProductID, BatchID: l.BatchID, Quantity: take, UnitCost: l.UnitCost})
			need = need.Sub(take)
		}
	}
	return steps, nil
}

// ApplyReversal books the steps against the lines and moves the status
func (a *Allocation) ApplyReversal(steps []ReversalStep, reason string) error {
	if len(steps) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Nothing to reverse")
	}
	byID := make(map[uuid.UUID]int, len(a.Lines))
	for i, l := range a.Lines {
		byID[l.ID] = i
	}
	cost := decimal.Zero
	for _, s := range steps {
		i, ok := byID[s.LineID]
		if !ok {
			return shared.NewDomainError("INVALID_INPUT", "Reversal references an unknown allocation line")
		}
		if s.Quantity.GreaterThan(a.Lines[i].Outstanding()) {
			return shared.NewDomainError("INVALID_INPUT", "Reversal quantity exceeds the quantity still allocated")
		}
		a.Lines[i].ReversedQty = a.Lines[i].ReversedQty.Add(s.Quantity)
		cost = cost.Add(s.Quantity.Mul(s.UnitCost))
	}
	a.ReversedCost = a.ReversedCost.Add(cost).Round(4)
	a.Status = AllocationPartiallyReversed
	if a.OutstandingQty().IsZero() {
		a.Status = AllocationReversed
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	ev := NewAllocationEvent(EventTypeAllocationReversed, a, cost.Round(4))
	ev.Reason = strings.TrimSpace(reason)
	a.AddDomainEvent(ev)
	return nil
}

// OutstandingQty is the total quantity not yet returned
func (a *Allocation) OutstandingQty() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.Lines {
		total = total.Add(l.Outstanding())
	}
	return total
}

// NetCost is the cost of material still with the project
func (a *Allocation) NetCost() decimal.Decimal {
	return a.TotalCost.Sub(a.ReversedCost)
}

// linesFor returns the lines of one product in consumption order
func (a *Allocation) linesFor(productID uuid.UUID) []AllocationLine {
	var out []AllocationLine
	for _, l := range a.Lines {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func sortStepsBySeqDesc(steps []ReversalStep, lines []AllocationLine) {
	seq := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		seq[l.ID] = l.Seq
	}
	sort.SliceStable(steps, func(i, j int) bool { return seq[steps[i].LineID] > seq[steps[j].LineID] })
}
