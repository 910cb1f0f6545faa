// Package txn defines the unit of work shared by application services whose
// writes span more than one aggregate.
package txn

import (
	"context"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
)

// Scope runs a function inside one database transaction.
// If fn returns an error, everything it wrote is rolled back.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories are bound to the transaction of the enclosing Execute call
type Repositories interface {
	Products() catalog.ProductRepository
	Godowns() inventory.GodownRepository
	Batches() inventory.StockBatchRepository
	Stocks() inventory.GodownStockRepository
	Movements() inventory.StockMovementRepository
	Transfers() inventory.TransferRepository
	Allocations() inventory.AllocationRepository
	PurchaseOrders() purchase.PurchaseOrderRepository
	Receipts() purchase.GoodsReceiptRepository
	Attendance() labor.AttendanceRepository
	Bills() billing.BillRepository
	Payments() billing.PaymentRepository
	Sequences() shared.SequenceRepository
}

// Ledger builds a stock ledger over the transaction's repositories
func Ledger(repos Repositories) *inventory.StockLedger {
	return inventory.NewStockLedger(repos.Batches(), repos.Stocks(), repos.Movements(), repos.Sequences())
}

// Set is a plain bundle of repositories. Used as the Repositories of a
// NoOpScope and by persistence when building tx-bound repositories.
type Set struct {
	ProductRepo       catalog.ProductRepository
	GodownRepo        inventory.GodownRepository
	BatchRepo         inventory.StockBatchRepository
	StockRepo         inventory.GodownStockRepository
	MovementRepo      inventory.StockMovementRepository
	TransferRepo      inventory.TransferRepository
	AllocationRepo    inventory.AllocationRepository
	PurchaseOrderRepo purchase.PurchaseOrderRepository
	ReceiptRepo       purchase.GoodsReceiptRepository
	AttendanceRepo    labor.AttendanceRepository
	BillRepo          billing.BillRepository
	PaymentRepo       billing.PaymentRepository
	SequenceRepo      shared.SequenceRepository
}

func (s *Set) Products() catalog.ProductRepository { return s.ProductRepo }
func (s *Set) Godowns() inventory.GodownRepository { return s.GodownRepo }
func (s *Set) Batches() inventory.StockBatchRepository { return s.BatchRepo }
func (s *Set) Stocks() inventory.GodownStockRepository { return s.StockRepo }
func (s *Set) Movements() inventory.StockMovementRepository { return s.MovementRepo }
func (s *Set) Transfers() inventory.TransferRepository { return s.TransferRepo }
func (s *Set) Allocations() inventory.AllocationRepository { return s.AllocationRepo }
func (s *Set) PurchaseOrders() purchase.PurchaseOrderRepository { return s.PurchaseOrderRepo }
func (s *Set) Receipts() purchase.GoodsReceiptRepository { return s.ReceiptRepo }
func (s *Set) Attendance() labor.AttendanceRepository { return s.AttendanceRepo }
func (s *Set) Bills() billing.BillRepository { return s.BillRepo }
func (s *Set) Payments() billing.PaymentRepository { return s.PaymentRepo }
func (s *Set) Sequences() shared.SequenceRepository { return s.SequenceRepo }

// NoOpScope runs fn directly against its repositories without a transaction.
// This is useful for testing.
type NoOpScope struct {
	repos *Set
}

// NewNoOpScope creates a NoOpScope over repos
func NewNoOpScope(repos *Set) *NoOpScope {
	return &NoOpScope{repos: repos}
}

// Execute calls fn once
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var (
	_ Scope        = (*NoOpScope)(nil)
	_ Repositories = (*Set)(nil)
)
