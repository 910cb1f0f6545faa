package persistence

import (
	"context"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// billedStatuses are the statuses that count as billed revenue
var billedStatuses = []billing.BillStatus{billing.BillIssued, billing.BillPartiallyPaid, billing.BillPaid}

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func billLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no")
}

// FindByIDForTenant loads a bill with its lines
func (r *GormBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	var b billing.Bill
	if err := r.db.WithContext(ctx).
		Preload("Lines", billLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindByIDForUpdate loads and locks a bill header, then reads its lines
func (r *GormBillRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	var b billing.Bill
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	if err := billLines(r.db.WithContext(ctx)).
		Where("bill_id = ?", b.ID).
		Find(&b.Lines).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindAll lists bill headers
func (r *GormBillRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	f := filter.Filter.Normalize()
	q := r.db.WithContext(ctx).Model(&billing.Bill{}).Where("tenant_id = ?", tenantID)
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = search(dateRange(q, "bill_date", filter.Range), f.Search, "bill_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bills []billing.Bill
	if err := paginate(q, f, BillSortFields, "bill_date").Find(&bills).Error; err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// Create inserts a bill with its lines
func (r *GormBillRepository) Create(ctx context.Context, b *billing.Bill) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

// Update saves the header with optimistic locking and replaces the lines
func (r *GormBillRepository) Update(ctx context.Context, b *billing.Bill) error {
	db := r.db.WithContext(ctx)
	if err := updateVersioned(db, b, b.TenantID, b.ID, b.Version); err != nil {
		return err
	}
	if err := db.Where("bill_id = ?", b.ID).Delete(&billing.BillLine{}).Error; err != nil {
		return err
	}
	if len(b.Lines) == 0 {
		return nil
	}
	for i := range b.Lines {
		b.Lines[i].BillID = b.ID
	}
	return translate(db.Create(&b.Lines).Error)
}

// DeleteForTenant deletes a bill and its lines
func (r *GormBillRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if _, err := r.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	if err := db.Where("bill_id = ?", id).Delete(&billing.BillLine{}).Error; err != nil {
		return err
	}
	return deleteScoped(db, &billing.Bill{}, tenantID, id)
}

// Totals sums non-draft, non-cancelled bills dated within the range
func (r *GormBillRepository) Totals(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, rng shared.DateRange) (billing.Totals, error) {
	q := r.db.WithContext(ctx).Model(&billing.Bill{}).
		Where("tenant_id = ? AND status IN ?", tenantID, billedStatuses)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var t billing.Totals
	err := dateRange(q, "bill_date", rng).
		Select(`COALESCE(SUM(gross_total), 0),
			COALESCE(SUM(retention_amount), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(CASE WHEN status <> ? THEN balance_due ELSE 0 END), 0)`, billing.BillPaid).
		Row().Scan(&t.Billed, &t.Retention, &t.Received, &t.Outstanding)
	return t, err
}

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// FindByBill lists payments against a bill in the order they were received
func (r *GormPaymentRepository) FindByBill(ctx context.Context, tenantID, billID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND bill_id = ?", tenantID, billID).
		Order("paid_on ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumReceived totals payments dated within the range
func (r *GormPaymentRepository) SumReceived(ctx context.Context, tenantID uuid.UUID, rng shared.DateRange) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&billing.Payment{}).Where("tenant_id = ?", tenantID)
	var total decimal.Decimal
	err := dateRange(q, "paid_on", rng).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	return total, err
}
