package inventory

import (
	"time"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateGodownRequest represents a request to create a godown
type CreateGodownRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	Location  string     `json:"location" binding:"max=1000"`
	IsDefault bool       `json:"is_default"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateGodownRequest represents a request to update a godown
type UpdateGodownRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Location string `json:"location" binding:"max=1000"`
}

// GodownListFilter represents filter options for godown list
type GodownListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// GodownResponse represents a godown in API responses
type GodownResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsDefault bool      `json:"is_default"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToGodownResponse converts a domain Godown to GodownResponse
func ToGodownResponse(g *inventory.Godown) GodownResponse {
	return GodownResponse{
		ID:        g.ID,
		Code:      g.Code,
		Name:      g.Name,
		Location:  g.Location,
		IsDefault: g.IsDefault,
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
		Version:   g.Version,
	}
}

// ReceiveStockRequest books opening or ad-hoc inward stock
type ReceiveStockRequest struct {
	GodownID     uuid.UUID       `json:"godown_id" binding:"required"`
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedDate *time.Time      `json:"received_date"`
	Opening      bool            `json:"opening"`
	BatchNumber  string          `json:"batch_number" binding:"max=50"`
	Remarks      string          `json:"remarks" binding:"max=500"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// TransferStockRequest moves stock between godowns
type TransferStockRequest struct {
	FromGodownID uuid.UUID       `json:"from_godown_id" binding:"required"`
	ToGodownID   uuid.UUID       `json:"to_godown_id" binding:"required"`
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	TransferDate *time.Time      `json:"transfer_date"`
	Remarks      string          `json:"remarks" binding:"max=500"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// AdjustStockRequest corrects a balance up or down
type AdjustStockRequest struct {
	GodownID  uuid.UUID        `json:"godown_id" binding:"required"`
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Delta     decimal.Decimal  `json:"delta" binding:"required"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	Reason    string           `json:"reason" binding:"required,min=1,max=500"`
	CreatedBy *uuid.UUID       `json:"-"`
}

// StockListFilter represents filter options for stock balances
type StockListFilter struct {
	GodownID    *uuid.UUID `form:"-"`
	ProductID   *uuid.UUID `form:"-"`
	NonZeroOnly bool       `form:"non_zero"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchListFilter represents filter options for batches
type BatchListFilter struct {
	GodownID      *uuid.UUID `form:"-"`
	ProductID     *uuid.UUID `form:"-"`
	AvailableOnly bool       `form:"available"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for the ledger
type MovementListFilter struct {
	GodownID    *uuid.UUID `form:"-"`
	ProductID   *uuid.UUID `form:"-"`
	BatchID     *uuid.UUID `form:"-"`
	Type        string     `form:"type"`
	ReferenceID *uuid.UUID `form:"-"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferListFilter represents filter options for transfers
type TransferListFilter struct {
	GodownID  *uuid.UUID `form:"-"`
	ProductID *uuid.UUID `form:"-"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockResponse is one godown balance
type StockResponse struct {
	ID          uuid.UUID       `json:"id"`
	GodownID    uuid.UUID       `json:"godown_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalValue  decimal.Decimal `json:"total_value"`
	AverageCost decimal.Decimal `json:"average_cost"`
	LastMovedAt *time.Time      `json:"last_moved_at,omitempty"`
	Version     int             `json:"version"`
}

// ToStockResponse converts a GodownStock to StockResponse
func ToStockResponse(s *inventory.GodownStock) StockResponse {
	return StockResponse{
		ID:          s.ID,
		GodownID:    s.GodownID,
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		TotalValue:  s.TotalValue,
		AverageCost: s.AverageCost,
		LastMovedAt: s.LastMovedAt,
		Version:     s.Version,
	}
}

// BatchResponse is one stock batch
type BatchResponse struct {
	ID            uuid.UUID       `json:"id"`
	GodownID      uuid.UUID       `json:"godown_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	BatchNumber   string          `json:"batch_number"`
	SourceType    string          `json:"source_type"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	ParentBatchID *uuid.UUID      `json:"parent_batch_id,omitempty"`
	ReceivedDate  time.Time       `json:"received_date"`
	OriginalQty   decimal.Decimal `json:"original_qty"`
	RemainingQty  decimal.Decimal `json:"remaining_qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToBatchResponse converts a StockBatch to BatchResponse
func ToBatchResponse(b *inventory.StockBatch) BatchResponse {
	return BatchResponse{
		ID:            b.ID,
		GodownID:      b.GodownID,
		ProductID:     b.ProductID,
		BatchNumber:   b.BatchNumber,
		SourceType:    string(b.SourceType),
		SourceID:      b.SourceID,
		ParentBatchID: b.ParentBatchID,
		ReceivedDate:  b.ReceivedDate,
		OriginalQty:   b.OriginalQty,
		RemainingQty:  b.RemainingQty,
		UnitCost:      b.UnitCost,
		CreatedAt:     b.CreatedAt,
	}
}

// MovementResponse is one ledger line
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	GodownID      uuid.UUID       `json:"godown_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	BatchID       *uuid.UUID      `json:"batch_id,omitempty"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Value         decimal.Decimal `json:"value"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Remarks       string          `json:"remarks,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ToMovementResponse converts a StockMovement to MovementResponse
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		GodownID:      m.GodownID,
		ProductID:     m.ProductID,
		BatchID:       m.BatchID,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Value:         m.Value,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Remarks:       m.Remarks,
		CreatedBy:     m.CreatedBy,
		OccurredAt:    m.OccurredAt,
	}
}

// ReceiveStockResponse reports the batch created and the new balance
type ReceiveStockResponse struct {
	Batch BatchResponse `json:"batch"`
	Stock StockResponse `json:"stock"`
}

// AdjustStockResponse reports an adjustment
type AdjustStockResponse struct {
	ReferenceID uuid.UUID                `json:"reference_id"`
	Batch       *BatchResponse           `json:"batch,omitempty"`
	Consumed    []inventory.ConsumedLine `json:"consumed,omitempty"`
	Stock       StockResponse            `json:"stock"`
}

// TransferLineResponse is one batch moved by a transfer
type TransferLineResponse struct {
	SourceBatchID uuid.UUID       `json:"source_batch_id"`
	DestBatchID   uuid.UUID       `json:"dest_batch_id"`
	BatchNumber   string          `json:"batch_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// TransferResponse represents a transfer document
type TransferResponse struct {
	ID             uuid.UUID              `json:"id"`
	TransferNumber string                 `json:"transfer_number"`
	FromGodownID   uuid.UUID              `json:"from_godown_id"`
	ToGodownID     uuid.UUID              `json:"to_godown_id"`
	ProductID      uuid.UUID              `json:"product_id"`
	Quantity       decimal.Decimal        `json:"quantity"`
	TotalCost      decimal.Decimal        `json:"total_cost"`
	TransferDate   time.Time              `json:"transfer_date"`
	Remarks        string                 `json:"remarks,omitempty"`
	Lines          []TransferLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ToTransferResponse converts a StockTransfer to TransferResponse
func ToTransferResponse(t *inventory.StockTransfer) TransferResponse {
	lines := make([]TransferLineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TransferLineResponse{
			SourceBatchID: l.SourceBatchID,
			DestBatchID:   l.DestBatchID,
			BatchNumber:   l.BatchNumber,
			Quantity:      l.Quantity,
			UnitCost:      l.UnitCost,
		}
	}
	return TransferResponse{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		FromGodownID:   t.FromGodownID,
		ToGodownID:     t.ToGodownID,
		ProductID:      t.ProductID,
		Quantity:       t.Quantity,
		TotalCost:      t.TotalCost,
		TransferDate:   t.TransferDate,
		Remarks:        t.Remarks,
		Lines:          lines,
		CreatedAt:      t.CreatedAt,
	}
}

// ValuationResponse is the stock value per godown and in total
type ValuationResponse struct {
	Godowns    []inventory.GodownValuation `json:"godowns"`
	TotalValue decimal.Decimal             `json:"total_value"`
}

// AllocationItem is one product and quantity in an allocation or reversal request
type AllocationItem struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
}

func toItemQuantities(items []AllocationItem) []inventory.ItemQuantity {
	out := make([]inventory.ItemQuantity, len(items))
	for i, it := range items {
		out[i] = inventory.ItemQuantity{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

// AllocateRequest issues material from a godown to a project
type AllocateRequest struct {
	ProjectID   uuid.UUID        `json:"project_id" binding:"required"`
	GodownID    uuid.UUID        `json:"godown_id" binding:"required"`
	AllocatedOn *time.Time       `json:"allocated_on"`
	Items       []AllocationItem `json:"items" binding:"required,min=1,dive"`
	Remarks     string           `json:"remarks" binding:"max=500"`
	CreatedBy   *uuid.UUID       `json:"-"`
}

// ReverseRequest returns allocated material. No items means everything outstanding.
type ReverseRequest struct {
	Items     []AllocationItem `json:"items" binding:"omitempty,dive"`
	Reason    string           `json:"reason" binding:"required,min=1,max=500"`
	CreatedBy *uuid.UUID       `json:"-"`
}

// AllocationListFilter represents filter options for allocations
type AllocationListFilter struct {
	ProjectID *uuid.UUID `form:"-"`
	GodownID  *uuid.UUID `form:"-"`
	Status    string     `form:"status" binding:"omitempty,oneof=allocated partially_reversed reversed"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AllocationLineResponse is one batch slice of an allocation
type AllocationLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReversedQty decimal.Decimal `json:"reversed_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// AllocationResponse represents an allocation document
type AllocationResponse struct {
	ID               uuid.UUID                `json:"id"`
	AllocationNumber string                   `json:"allocation_number"`
	ProjectID        uuid.UUID                `json:"project_id"`
	GodownID         uuid.UUID                `json:"godown_id"`
	AllocatedOn      time.Time                `json:"allocated_on"`
	Status           string                   `json:"status"`
	TotalCost        decimal.Decimal          `json:"total_cost"`
	ReversedCost     decimal.Decimal          `json:"reversed_cost"`
	NetCost          decimal.Decimal          `json:"net_cost"`
	Remarks          string                   `json:"remarks,omitempty"`
	Lines            []AllocationLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	Version          int                      `json:"version"`
}

// ToAllocationResponse converts an Allocation to AllocationResponse
func ToAllocationResponse(a *inventory.Allocation) AllocationResponse {
	lines := make([]AllocationLineResponse, len(a.Lines))
	for i, l := range a.Lines {
		lines[i] = AllocationLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			BatchID:     l.BatchID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			ReversedQty: l.ReversedQty,
			UnitCost:    l.UnitCost,
		}
	}
	return AllocationResponse{
		ID:               a.ID,
		AllocationNumber: a.AllocationNumber,
		ProjectID:        a.ProjectID,
		GodownID:         a.GodownID,
		AllocatedOn:      a.AllocatedOn,
		Status:           string(a.Status),
		TotalCost:        a.TotalCost,
		ReversedCost:     a.ReversedCost,
		NetCost:          a.NetCost(),
		Remarks:          a.Remarks,
		Lines:            lines,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		Version:          a.Version,
	}
}

// MaterialConsumptionResponse lists net material issued to a project
type MaterialConsumptionResponse struct {
	ProjectID uuid.UUID                       `json:"project_id"`
	Items     []inventory.MaterialConsumption `json:"items"`
	NetCost   decimal.Decimal                 `json:"net_cost"`
}

func toDateRange(from, to *time.Time) (shared.DateRange, error) {
	var r shared.DateRange
	if from != nil {
		r.From = shared.DateOnly(*from)
	}
	if to != nil {
		r.To = shared.DateOnly(*to)
	}
	if !r.Valid() {
		return r, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	return r, nil
}

func orToday(t *time.Time, now func() time.Time) time.Time {
	if t == nil || t.IsZero() {
		return shared.DateOnly(now())
	}
	return shared.DateOnly(*t)
}

// LowStockResponse is a product whose total stock is below its reorder level
type LowStockResponse struct {
	inventory.LowStockItem
	Shortfall decimal.Decimal `json:"shortfall"`
}
