package inventory

import (
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeGodown      = "Godown"
	AggregateTypeGodownStock = "GodownStock"
	AggregateTypeTransfer    = "StockTransfer"
	AggregateTypeAllocation  = "Allocation"
)

// Event types
const (
	EventTypeGodownCreated       = "GodownCreated"
	EventTypeGodownUpdated       = "GodownUpdated"
	EventTypeGodownStatusChanged = "GodownStatusChanged"
	EventTypeStockReceived       = "StockReceived"
	EventTypeStockConsumed       = "StockConsumed"
	EventTypeStockRestored       = "StockRestored"
	EventTypeStockTransferred    = "StockTransferred"
	EventTypeMaterialAllocated   = "MaterialAllocated"
	EventTypeAllocationReversed  = "AllocationReversed"
)

// GodownEvent is raised on godown master-data changes
type GodownEvent struct {
	shared.BaseDomainEvent
	Code      string        `json:"code"`
	Status    shared.Status `json:"status"`
	IsDefault bool          `json:"is_default"`
}

// NewGodownEvent builds a GodownEvent
func NewGodownEvent(eventType string, g *Godown) *GodownEvent {
	return &GodownEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeGodown, g.ID, g.TenantID),
		Code:            g.Code,
		Status:          g.Status,
		IsDefault:       g.IsDefault,
	}
}

// StockChangedEvent is raised whenever a godown balance moves
type StockChangedEvent struct {
	shared.BaseDomainEvent
	GodownID      uuid.UUID       `json:"godown_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	MovementType  MovementType    `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
}

// NewStockChangedEvent builds a StockChangedEvent
func NewStockChangedEvent(eventType string, s *GodownStock, t MovementType, qty decimal.Decimal, ref Reference) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeGodownStock, s.ID, s.TenantID),
		GodownID:        s.GodownID,
		ProductID:       s.ProductID,
		MovementType:    t,
		Quantity:        qty,
		BalanceAfter:    s.Quantity,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
	}
}

// StockTransferredEvent is raised when a transfer completes
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	TransferNumber string          `json:"transfer_number"`
	FromGodownID   uuid.UUID       `json:"from_godown_id"`
	ToGodownID     uuid.UUID       `json:"to_godown_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

// NewStockTransferredEvent builds a StockTransferredEvent
func NewStockTransferredEvent(t *StockTransfer) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
		FromGodownID:    t.FromGodownID,
		ToGodownID:      t.ToGodownID,
		ProductID:       t.ProductID,
		Quantity:        t.Quantity,
		TotalCost:       t.TotalCost,
	}
}

// AllocationEvent is raised on allocation and reversal
type AllocationEvent struct {
	shared.BaseDomainEvent
	AllocationNumber string           `json:"allocation_number"`
	ProjectID        uuid.UUID        `json:"project_id"`
	GodownID         uuid.UUID        `json:"godown_id"`
	Status           AllocationStatus `json:"status"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	ReversedCost     decimal.Decimal  `json:"reversed_cost,omitempty"`
	Reason           string           `json:"reason,omitempty"`
}

// NewAllocationEvent builds an AllocationEvent. reversedCost is the cost returned by this event.
func NewAllocationEvent(eventType string, a *Allocation, reversedCost decimal.Decimal) *AllocationEvent {
	return &AllocationEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypeAllocation, a.ID, a.TenantID),
		AllocationNumber: a.AllocationNumber,
		ProjectID:        a.ProjectID,
		GodownID:         a.GodownID,
		Status:           a.Status,
		TotalCost:        a.TotalCost,
		ReversedCost:     reversedCost,
	}
}
