package company

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]company.Company, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]company.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) SaveWithLock(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockCompanyRepository) CountProjects(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestCompanyService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	repo := new(MockCompanyRepository)
	svc := NewCompanyService(repo)
	repo.On("ExistsByCode", ctx, tenantID, "NHAI").Return(false, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*company.Company")).Return(nil)

	resp, err := svc.Create(ctx, tenantID, CreateCompanyRequest{
		Code:      "nhai",
		Name:      "National Highways",
		GSTIN:     "27AAPFU0939F1ZV",
		CreatedBy: &userID,
	})
	require.NoError(t, err)
	assert.Equal(t, "NHAI", resp.Code)
	assert.Equal(t, "27", resp.StateCode)

	saved := repo.Calls[1].Arguments.Get(1).(*company.Company)
	require.NotNil(t, saved.CreatedBy)
	assert.Equal(t, userID, *saved.CreatedBy)
}

func TestCompanyService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	c, err := company.NewCompany(tenantID, "C1", company.Details{Name: "Client"})
	require.NoError(t, err)

	t.Run("rejected while projects exist", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		svc := NewCompanyService(repo)
		repo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
		repo.On("CountProjects", ctx, tenantID, c.ID).Return(int64(2), nil)

		err := svc.Delete(ctx, tenantID, c.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		repo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes without projects", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		svc := NewCompanyService(repo)
		repo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
		repo.On("CountProjects", ctx, tenantID, c.ID).Return(int64(0), nil)
		repo.On("DeleteForTenant", ctx, tenantID, c.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, tenantID, c.ID))
		repo.AssertExpectations(t)
	})
}

func TestCompanyService_Deactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	c, err := company.NewCompany(tenantID, "C1", company.Details{Name: "Client"})
	require.NoError(t, err)

	repo := new(MockCompanyRepository)
	svc := NewCompanyService(repo)
	repo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
	repo.On("SaveWithLock", ctx, c).Return(nil).Once()

	resp, err := svc.Deactivate(ctx, tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	assert.Equal(t, 2, resp.Version)

	_, err = svc.Deactivate(ctx, tenantID, c.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	repo.On("SaveWithLock", ctx, c).Return(shared.ErrConcurrencyConflict)
	_, err = svc.Activate(ctx, tenantID, c.ID)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
}
