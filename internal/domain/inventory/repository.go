package inventory

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GodownRepository persists godowns
type GodownRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Godown, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Godown, int64, error)
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*Godown, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, g *Godown) error
	SaveWithLock(ctx context.Context, g *Godown) error
	// ClearDefault unsets IsDefault on every godown except keepID
	ClearDefault(ctx context.Context, tenantID, keepID uuid.UUID) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	HasStock(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	HasBatches(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BatchFilter narrows batch listings
type BatchFilter struct {
	shared.Filter
	GodownID      *uuid.UUID
	ProductID     *uuid.UUID
	AvailableOnly bool
}

// StockBatchRepository persists batches
type StockBatchRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockBatch, error)
	// FindByIDForUpdate loads a batch and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*StockBatch, error)
	// FindAvailableForUpdate loads and locks every batch with stock, oldest first
	FindAvailableForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) ([]StockBatch, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]StockBatch, int64, error)
	Create(ctx context.Context, b *StockBatch) error
	// UpdateRemaining persists RemainingQty of an existing batch
	UpdateRemaining(ctx context.Context, b *StockBatch) error
}

// StockFilter narrows stock listings
type StockFilter struct {
	shared.Filter
	GodownID    *uuid.UUID
	ProductID   *uuid.UUID
	NonZeroOnly bool
}

// LowStockItem is a product whose total quantity is below its reorder level
type LowStockItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Unit         string          `json:"unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Shortfall is how far below the reorder level the product sits
func (i LowStockItem) Shortfall() decimal.Decimal {
	return i.ReorderLevel.Sub(i.Quantity)
}

// GodownValuation is the stock value held in a godown
type GodownValuation struct {
	GodownID   uuid.UUID       `json:"godown_id"`
	GodownCode string          `json:"godown_code"`
	GodownName string          `json:"godown_name"`
	Products   int64           `json:"products"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// GodownStockRepository persists balance rows
type GodownStockRepository interface {
	Find(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*GodownStock, error)
	// FindForUpdate loads and locks the balance row; ErrNotFound when the product never entered the godown
	FindForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*GodownStock, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter StockFilter) ([]GodownStock, int64, error)
	// Create inserts the balance row; a row already present for the godown and product is left as is
	Create(ctx context.Context, s *GodownStock) error
	// Update saves with optimistic locking; the caller has already incremented Version
	Update(ctx context.Context, s *GodownStock) error
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]LowStockItem, error)
	Valuation(ctx context.Context, tenantID uuid.UUID) ([]GodownValuation, error)
}

// MovementFilter narrows ledger queries
type MovementFilter struct {
	shared.Filter
	GodownID    *uuid.UUID
	ProductID   *uuid.UUID
	BatchID     *uuid.UUID
	Type        MovementType
	ReferenceID *uuid.UUID
	Range       shared.DateRange
}

// StockMovementRepository appends to and reads the ledger
type StockMovementRepository interface {
	Create(ctx context.Context, m *StockMovement) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)
}

// TransferFilter narrows transfer listings
type TransferFilter struct {
	shared.Filter
	GodownID  *uuid.UUID
	ProductID *uuid.UUID
	Range     shared.DateRange
}

// TransferRepository persists transfer documents
type TransferRepository interface {
	Create(ctx context.Context, t *StockTransfer) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockTransfer, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter TransferFilter) ([]StockTransfer, int64, error)
}

// AllocationFilter narrows allocation listings
type AllocationFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	GodownID  *uuid.UUID
	Status    AllocationStatus
	Range     shared.DateRange
}

// MaterialConsumption is the net material issued to a project for one product
type MaterialConsumption struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Unit         string          `json:"unit"`
	AllocatedQty decimal.Decimal `json:"allocated_qty"`
	ReversedQty  decimal.Decimal `json:"reversed_qty"`
	NetQty       decimal.Decimal `json:"net_qty"`
	NetCost      decimal.Decimal `json:"net_cost"`
}

// AllocationRepository persists allocations with their lines
type AllocationRepository interface {
	Create(ctx context.Context, a *Allocation) error
	// Update saves header status and the reversed quantities of the lines with optimistic locking
	Update(ctx context.Context, a *Allocation) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Allocation, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Allocation, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter AllocationFilter) ([]Allocation, int64, error)
	ProjectConsumption(ctx context.Context, tenantID, projectID uuid.UUID) ([]MaterialConsumption, error)
	// SumNetCost totals allocated minus reversed cost, optionally for one project and period
	SumNetCost(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) (decimal.Decimal, error)
}
