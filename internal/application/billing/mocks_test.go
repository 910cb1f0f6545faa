package billing

import (
	"context"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
	infra "github.com/erp/buildledger/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) Create(ctx context.Context, b *billing.Bill) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBillRepository) Update(ctx context.Context, b *billing.Bill) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBillRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockBillRepository) Totals(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, r shared.DateRange) (billing.Totals, error) {
	args := m.Called(ctx, tenantID, projectID, r)
	return args.Get(0).(billing.Totals), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByBill(ctx context.Context, tenantID, billID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, billID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumReceived(ctx context.Context, tenantID uuid.UUID, r shared.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, r)
	return args.Get(0).(decimal.Decimal), args.Error(1)
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

type MockCompanyRepository struct {
	company.Repository
	mock.Mock
}

func (m *MockCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

type MockTenantRepository struct {
	tenant.Repository
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Tenant), args.Error(1)
}

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	args := m.Called(ctx, tenantID, key)
	return args.Get(0).(int64), args.Error(1)
}

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
