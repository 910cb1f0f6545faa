package persistence

import (
	"context"

	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAllocationRepository implements inventory.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("seq")
}

// Create inserts an allocation with its lines
func (r *GormAllocationRepository) Create(ctx context.Context, a *inventory.Allocation) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

// Update saves header status and the reversed quantities of the lines
func (r *GormAllocationRepository) Update(ctx context.Context, a *inventory.Allocation) error {
	db := r.db.WithContext(ctx)
	if err := updateVersioned(db, a, a.TenantID, a.ID, a.Version); err != nil {
		return err
	}
	for _, line := range a.Lines {
		if err := db.Model(&inventory.AllocationLine{}).
			Where("id = ? AND allocation_id = ?", line.ID, a.ID).
			Update("reversed_qty", line.ReversedQty).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByIDForTenant loads an allocation with its lines
func (r *GormAllocationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Allocation, error) {
	var a inventory.Allocation
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindByIDForUpdate loads and locks an allocation header
func (r *GormAllocationRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Allocation, error) {
	var a inventory.Allocation
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.db.WithContext(ctx).
		Where("allocation_id = ?", a.ID).
		Order("seq").
		Find(&a.Lines).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAll lists allocation headers
func (r *GormAllocationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.AllocationFilter) ([]inventory.Allocation, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&inventory.Allocation{}).Where("tenant_id = ?", tenantID)
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.GodownID != nil {
		q = q.Where("godown_id = ?", *filter.GodownID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = search(dateRange(q, "allocated_on", filter.Range), f.Search, "allocation_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []inventory.Allocation
	if err := paginate(q, f, AllocationSortFields, "allocated_on").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ProjectConsumption sums allocation lines per product for one project
func (r *GormAllocationRepository) ProjectConsumption(ctx context.Context, tenantID, projectID uuid.UUID) ([]inventory.MaterialConsumption, error) {
	var rows []inventory.MaterialConsumption
	err := r.db.WithContext(ctx).
		Table("allocation_lines").
		Select(`allocation_lines.product_id AS product_id,
			products.code AS product_code,
			products.name AS product_name,
			products.unit AS unit,
			SUM(allocation_lines.quantity) AS allocated_qty,
			SUM(allocation_lines.reversed_qty) AS reversed_qty,
			SUM(allocation_lines.quantity - allocation_lines.reversed_qty) AS net_qty,
			SUM((allocation_lines.quantity - allocation_lines.reversed_qty) * allocation_lines.unit_cost) AS net_cost`).
		Joins("JOIN allocations ON allocations.id = allocation_lines.allocation_id").
		Joins("JOIN products ON products.id = allocation_lines.product_id").
		Where("allocations.tenant_id = ? AND allocations.project_id = ?", tenantID, projectID).
		Group("allocation_lines.product_id, products.code, products.name, products.unit").
		Order("products.code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].NetCost = rows[i].NetCost.Round(2)
	}
	return rows, nil
}

// SumNetCost totals allocated minus reversed cost
func (r *GormAllocationRepository) SumNetCost(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, rng shared.DateRange) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&inventory.Allocation{}).Where("tenant_id = ?", tenantID)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var total decimal.Decimal
	err := dateRange(q, "allocated_on", rng).
		Select("COALESCE(SUM(total_cost - reversed_cost), 0)").
		Row().Scan(&total)
	return total, err
}
