package persistence

import (
	"context"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements inventory.TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Create inserts a transfer with its lines
func (r *GormTransferRepository) Create(ctx context.Context, t *inventory.StockTransfer) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

// FindByIDForTenant loads a transfer with its lines
func (r *GormTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockTransfer, error) {
	var t inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("batch_number") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindAll lists transfers touching a godown or product
func (r *GormTransferRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.TransferFilter) ([]inventory.StockTransfer, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).Where("tenant_id = ?", tenantID)
	if filter.GodownID != nil {
		q = q.Where("(from_godown_id = ? OR to_godown_id = ?)", *filter.GodownID, *filter.GodownID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	q = search(dateRange(q, "transfer_date", filter.Range), f.Search, "transfer_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var transfers []inventory.StockTransfer
	if err := paginate(q, f, TransferSortFields, "transfer_date").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
