package persistence

import (
	"context"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockBatchRepository implements inventory.StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByIDForTenant finds a batch by ID within a tenant
func (r *GormStockBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockBatch, error) {
	var b inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindByIDForUpdate loads a batch and locks its row until the transaction ends
func (r *GormStockBatchRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockBatch, error) {
	var b inventory.StockBatch
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindAvailableForUpdate loads and locks every batch with stock, oldest first
func (r *GormStockBatchRepository) FindAvailableForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND godown_id = ? AND product_id = ? AND remaining_qty > 0", tenantID, godownID, productID).
		Order("received_date ASC, created_at ASC, batch_number ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAll lists batches
func (r *GormStockBatchRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.BatchFilter) ([]inventory.StockBatch, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.StockBatch{}).Where("tenant_id = ?", tenantID)
	if filter.GodownID != nil {
		q = q.Where("godown_id = ?", *filter.GodownID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.AvailableOnly {
		q = q.Where("remaining_qty > 0")
	}
	q = search(q, f.Search, "batch_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "received_date", "asc"
	}
	var batches []inventory.StockBatch
	if err := paginate(q, f, BatchSortFields, "received_date").Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// Create inserts a batch
func (r *GormStockBatchRepository) Create(ctx context.Context, b *inventory.StockBatch) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

// UpdateRemaining persists RemainingQty of an existing batch
func (r *GormStockBatchRepository) UpdateRemaining(ctx context.Context, b *inventory.StockBatch) error {
	result := r.db.WithContext(ctx).Model(&inventory.StockBatch{}).
		Where("tenant_id = ? AND id = ?", b.TenantID, b.ID).
		Updates(map[string]any{"remaining_qty": b.RemainingQty, "updated_at": b.UpdatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var stockKeyColumns = []clause.Column{{Name: "tenant_id"}, {Name: "godown_id"}, {Name: "product_id"}}

// GormGodownStockRepository implements inventory.GodownStockRepository using GORM
type GormGodownStockRepository struct {
	db *gorm.DB
}

// NewGormGodownStockRepository creates a new GormGodownStockRepository
func NewGormGodownStockRepository(db *gorm.DB) *GormGodownStockRepository {
	return &GormGodownStockRepository{db: db}
}

// Find loads a balance row
func (r *GormGodownStockRepository) Find(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*inventory.GodownStock, error) {
	var s inventory.GodownStock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND godown_id = ? AND product_id = ?", tenantID, godownID, productID).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindForUpdate loads and locks the balance row
func (r *GormGodownStockRepository) FindForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*inventory.GodownStock, error) {
	var s inventory.GodownStock
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND godown_id = ? AND product_id = ?", tenantID, godownID, productID).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindAll lists balance rows
func (r *GormGodownStockRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.StockFilter) ([]inventory.GodownStock, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.GodownStock{}).Where("tenant_id = ?", tenantID)
	if filter.GodownID != nil {
		q = q.Where("godown_id = ?", *filter.GodownID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.NonZeroOnly {
		q = q.Where("quantity <> 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []inventory.GodownStock
	if err := paginate(q, f, StockSortFields, "updated_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a balance row unless the godown already holds the product.
// The conflict target is idx_godown_stocks_key.
func (r *GormGodownStockRepository) Create(ctx context.Context, s *inventory.GodownStock) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: stockKeyColumns, DoNothing: true}).
		Create(s).Error)
}

// Update saves with optimistic locking; the caller has already incremented Version
func (r *GormGodownStockRepository) Update(ctx context.Context, s *inventory.GodownStock) error {
	return updateVersioned(r.db.WithContext(ctx), s, s.TenantID, s.ID, s.Version)
}

// LowStock lists active products whose quantity across all godowns is under the reorder level
func (r *GormGodownStockRepository) LowStock(ctx context.Context, tenantID uuid.UUID) ([]inventory.LowStockItem, error) {
	var items []inventory.LowStockItem
	err := r.db.WithContext(ctx).
		Table("products").
		Select(`products.id AS product_id,
			products.code AS product_code,
			products.name AS product_name,
			products.unit AS unit,
			products.reorder_level AS reorder_level,
			COALESCE(SUM(godown_stocks.quantity), 0) AS quantity`).
		Joins("LEFT JOIN godown_stocks ON godown_stocks.product_id = products.id AND godown_stocks.tenant_id = products.tenant_id").
		Where("products.tenant_id = ? AND products.status = ? AND products.reorder_level > 0", tenantID, shared.StatusActive).
		Group("products.id, products.code, products.name, products.unit, products.reorder_level").
		Having("COALESCE(SUM(godown_stocks.quantity), 0) < products.reorder_level").
		Order("products.code").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Valuation totals stock value per godown
func (r *GormGodownStockRepository) Valuation(ctx context.Context, tenantID uuid.UUID) ([]inventory.GodownValuation, error) {
	var rows []inventory.GodownValuation
	err := r.db.WithContext(ctx).
		Table("godowns").
		Select(`godowns.id AS godown_id,
			godowns.code AS godown_code,
			godowns.name AS godown_name,
			COUNT(CASE WHEN godown_stocks.quantity > 0 THEN 1 END) AS products,
			COALESCE(SUM(godown_stocks.total_value), 0) AS total_value`).
		Joins("LEFT JOIN godown_stocks ON godown_stocks.godown_id = godowns.id AND godown_stocks.tenant_id = godowns.tenant_id").
		Where("godowns.tenant_id = ?", tenantID).
		Group("godowns.id, godowns.code, godowns.name").
		Order("godowns.code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a ledger entry
func (r *GormStockMovementRepository) Create(ctx context.Context, m *inventory.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// FindAll reads the ledger, newest first by default
func (r *GormStockMovementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Where("tenant_id = ?", tenantID)
	if filter.GodownID != nil {
		q = q.Where("godown_id = ?", *filter.GodownID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.BatchID != nil {
		q = q.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.Type != "" {
		q = q.Where("movement_type = ?", filter.Type)
	}
	if !filter.Range.From.IsZero() {
		q = q.Where("occurred_at >= ?", shared.DateOnly(filter.Range.From))
	}
	if !filter.Range.To.IsZero() {
		q = q.Where("occurred_at < ?", shared.DateOnly(filter.Range.To).AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []inventory.StockMovement
	if err := paginate(q, f, MovementSortFields, "occurred_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
