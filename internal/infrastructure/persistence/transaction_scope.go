package persistence

import (
	"context"

	"github.com/erp/buildledger/internal/application/txn"
	"gorm.io/gorm"
)

// GormTransactionScope implements txn.Scope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositorySet(tx))
	})
}

// NewRepositorySet builds every transactional repository over db
func NewRepositorySet(db *gorm.DB) *txn.Set {
	return &txn.Set{
		ProductRepo:       NewGormProductRepository(db),
		GodownRepo:        NewGormGodownRepository(db),
		BatchRepo:         NewGormStockBatchRepository(db),
		StockRepo:         NewGormGodownStockRepository(db),
		MovementRepo:      NewGormStockMovementRepository(db),
		TransferRepo:      NewGormTransferRepository(db),
		AllocationRepo:    NewGormAllocationRepository(db),
		PurchaseOrderRepo: NewGormPurchaseOrderRepository(db),
		ReceiptRepo:       NewGormGoodsReceiptRepository(db),
		AttendanceRepo:    NewGormAttendanceRepository(db),
		BillRepo:          NewGormBillRepository(db),
		PaymentRepo:       NewGormPaymentRepository(db),
		SequenceRepo:      NewGormSequenceRepository(db),
	}
}

var _ txn.Scope = (*GormTransactionScope)(nil)
