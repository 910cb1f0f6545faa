package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProductRepository) HasStockHistory(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func cement(t *testing.T, tenantID uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, "CEM-OPC53", catalog.Details{
		Name:     "OPC 53 Cement",
		Category: catalog.CategoryCement,
		Unit:     catalog.UnitBag,
		HSNCode:  "2523",
		GSTRate:  decimal.NewFromInt(28),
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, nil)
		repo.On("ExistsByCode", ctx, tenantID, "TMT-12").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, CreateProductRequest{
			Code:     "tmt-12",
			Name:     "TMT Bar 12mm",
			Category: "steel",
			Unit:     "kg",
			GSTRate:  decimal.NewFromInt(18),
		})
		require.NoError(t, err)
		assert.Equal(t, "TMT-12", resp.Code)
		assert.Equal(t, "kg", resp.Unit)
		repo.AssertExpectations(t)
	})

	t.Run("invalid gst rate", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, nil)

		_, err := svc.Create(ctx, tenantID, CreateProductRequest{
			Code: "X", Name: "X", Category: "steel", Unit: "kg", GSTRate: decimal.NewFromInt(15),
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_GST_RATE", de.Code)
		repo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, nil)
		repo.On("ExistsByCode", ctx, tenantID, "TMT-12").Return(true, nil)

		_, err := svc.Create(ctx, tenantID, CreateProductRequest{
			Code: "TMT-12", Name: "TMT", Category: "steel", Unit: "kg", GSTRate: decimal.NewFromInt(18),
		})
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("unit frozen after stocking", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, nil)
		p := cement(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		repo.On("HasStockHistory", ctx, tenantID, p.ID).Return(true, nil)

		_, err := svc.Update(ctx, tenantID, p.ID, UpdateProductRequest{
			Name: "OPC 53 Cement", Category: "cement", Unit: "kg", GSTRate: decimal.NewFromInt(28),
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("same unit skips stock check", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, nil)
		p := cement(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		repo.On("SaveWithLock", ctx, p).Return(nil)

		resp, err := svc.Update(ctx, tenantID, p.ID, UpdateProductRequest{
			Name: "OPC 53 Grade Cement", Category: "cement", Unit: "bag", GSTRate: decimal.NewFromInt(28),
			ReorderLevel: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		assert.Equal(t, "OPC 53 Grade Cement", resp.Name)
		assert.Equal(t, 2, resp.Version)
		repo.AssertNotCalled(t, "HasStockHistory", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil)
	stocked := cement(t, tenantID)
	fresh := cement(t, tenantID)
	repo.On("FindByIDForTenant", ctx, tenantID, stocked.ID).Return(stocked, nil)
	repo.On("FindByIDForTenant", ctx, tenantID, fresh.ID).Return(fresh, nil)
	repo.On("HasStockHistory", ctx, tenantID, stocked.ID).Return(true, nil)
	repo.On("HasStockHistory", ctx, tenantID, fresh.ID).Return(false, nil)
	repo.On("DeleteForTenant", ctx, tenantID, fresh.ID).Return(nil)

	assert.True(t, errors.Is(svc.Delete(ctx, tenantID, stocked.ID), shared.ErrInUse))
	require.NoError(t, svc.Delete(ctx, tenantID, fresh.ID))
	repo.AssertNumberOfCalls(t, "DeleteForTenant", 1)
}

func TestProductService_Deactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil)
	p := cement(t, tenantID)
	repo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(nil)

	resp, err := svc.Deactivate(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	_, err = svc.Deactivate(ctx, tenantID, p.ID)
	assert.Error(t, err)
}
