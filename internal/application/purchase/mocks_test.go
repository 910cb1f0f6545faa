package purchase

import (
	"context"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Vendor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchase.Vendor, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchase.Vendor), args.Get(1).(int64), args.Error(2)
}

func (m *MockVendorRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, v *purchase.Vendor) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVendorRepository) SaveWithLock(ctx context.Context, v *purchase.Vendor) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVendorRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockVendorRepository) HasOrders(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter purchase.OrderFilter) ([]purchase.PurchaseOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchase.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(ctx context.Context, po *purchase.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, po *purchase.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *MockOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, r *purchase.GoodsReceipt) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReceiptRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]purchase.GoodsReceipt, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).([]purchase.GoodsReceipt), args.Error(1)
}

// MockGodownRepository only implements the lookups the order service makes
type MockGodownRepository struct {
	inventory.GodownRepository
	mock.Mock
}

func (m *MockGodownRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Godown, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Godown), args.Error(1)
}

type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

type MockProjectRepository struct {
	project.Repository
	mock.Mock
}

func (m *MockProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	args := m.Called(ctx, tenantID, key)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockRepository keeps the rows it was asked to write, so a balance
// created inside a ledger call can be locked again by the same call
type MockStockRepository struct {
	inventory.GodownStockRepository
	mock.Mock
	rows map[[2]uuid.UUID]inventory.GodownStock
}

func (m *MockStockRepository) keep(s *inventory.GodownStock) {
	if m.rows == nil {
		m.rows = make(map[[2]uuid.UUID]inventory.GodownStock)
	}
	m.rows[[2]uuid.UUID{s.GodownID, s.ProductID}] = *s
}

func (m *MockStockRepository) FindForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*inventory.GodownStock, error) {
	if row, ok := m.rows[[2]uuid.UUID{godownID, productID}]; ok {
		return &row, nil
	}
	args := m.Called(ctx, tenantID, godownID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GodownStock), args.Error(1)
}

func (m *MockStockRepository) Create(ctx context.Context, s *inventory.GodownStock) error {
	if err := m.Called(ctx, s).Error(0); err != nil {
		return err
	}
	if _, ok := m.rows[[2]uuid.UUID{s.GodownID, s.ProductID}]; !ok {
		m.keep(s)
	}
	return nil
}

func (m *MockStockRepository) Update(ctx context.Context, s *inventory.GodownStock) error {
	if err := m.Called(ctx, s).Error(0); err != nil {
		return err
	}
	m.keep(s)
	return nil
}

type MockBatchRepository struct {
	inventory.StockBatchRepository
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, b *inventory.StockBatch) error {
	return m.Called(ctx, b).Error(0)
}

type MockMovementRepository struct {
	inventory.StockMovementRepository
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, mv *inventory.StockMovement) error {
	return m.Called(ctx, mv).Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
