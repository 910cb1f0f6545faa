package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
	infra "github.com/erp/buildledger/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type billFixture struct {
	ctx       context.Context
	tenantID  uuid.UUID
	bills     *MockBillRepository
	payments  *MockPaymentRepository
	projects  *MockProjectRepository
	companies *MockCompanyRepository
	tenants   *MockTenantRepository
	seqs      *MockSequenceRepository
	pdf       *MockPDFRenderer
	publisher *MockEventPublisher
	svc       *BillService

	tenant  *tenant.Tenant
	company *company.Company
	project *project.Project
}

func newBillFixture(t *testing.T) *billFixture {
	t.Helper()
	f := &billFixture{
		ctx:       context.Background(),
		tenantID:  uuid.New(),
		bills:     new(MockBillRepository),
		payments:  new(MockPaymentRepository),
		projects:  new(MockProjectRepository),
		companies: new(MockCompanyRepository),
		tenants:   new(MockTenantRepository),
		seqs:      new(MockSequenceRepository),
		pdf:       new(MockPDFRenderer),
		publisher: new(MockEventPublisher),
	}

	var err error
	f.tenant, err = tenant.NewTenant("sai-infra", "Sai Infra Projects", "27", "27AAPFU0939F1ZV")
	require.NoError(t, err)
	f.company, err = company.NewCompany(f.tenantID, "MHL", company.Details{Name: "Metro Housing Ltd", Address: "Baner, Pune", StateCode: "27"})
	require.NoError(t, err)
	five := decimal.NewFromInt(5)
	f.project, err = project.NewProject(f.tenantID, f.company.ID, "PRJ-7", project.Details{
		Name:             "Skyline Towers",
		SiteAddress:      "Survey 42, Hinjewadi",
		RetentionPercent: &five,
	})
	require.NoError(t, err)

	engine, err := infra.NewTemplateEngine()
	require.NoError(t, err)

	scope := txn.NewNoOpScope(&txn.Set{
		BillRepo:     f.bills,
		PaymentRepo:  f.payments,
		SequenceRepo: f.seqs,
	})
	f.svc = NewBillService(BillRepositories{
		Bills:     f.bills,
		Payments:  f.payments,
		Projects:  f.projects,
		Companies: f.companies,
		Tenants:   f.tenants,
	}, scope, engine, f.pdf, nil)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func slabLine() BillLineRequest {
	return BillLineRequest{
		Description: "RCC slab work, 3rd floor",
		HSNCode:     "995411",
		Quantity:    decimal.NewFromInt(10),
		Unit:        "cum",
		Rate:        decimal.NewFromInt(1000),
		GSTRate:     decimal.NewFromInt(18),
	}
}

// issuedBill returns an issued intra-state bill with net payable 11210
func (f *billFixture) issuedBill(t *testing.T) *billing.Bill {
	t.Helper()
	b, err := billing.NewBill(f.tenantID, "INV-2025-0001", f.project.ID, f.company.ID, "27", decimal.NewFromInt(5),
		billing.Header{BillDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, b.SetLines([]billing.LineInput{slabLine().input()}))
	require.NoError(t, b.Issue())
	b.ClearDomainEvents()
	return b
}

func TestBillService_Create(t *testing.T) {
	t.Run("intra-state bill with retention", func(t *testing.T) {
		f := newBillFixture(t)
		f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, f.project.ID).Return(f.project, nil)
		f.tenants.On("FindByID", f.ctx, f.tenantID).Return(f.tenant, nil)
		f.seqs.On("Next", f.ctx, f.tenantID, "INV-2025").Return(int64(1), nil)
		f.bills.On("Create", f.ctx, mock.AnythingOfType("*billing.Bill")).Return(nil)

		resp, err := f.svc.Create(f.ctx, f.tenantID, CreateBillRequest{
			ProjectID: f.project.ID,
			Lines:     []BillLineRequest{slabLine()},
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-2025-0001", resp.BillNumber)
		assert.Equal(t, f.company.ID, resp.CompanyID)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "27", resp.PlaceOfSupply)
		assert.True(t, resp.IntraState)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), resp.BillDate)
		assert.True(t, decimal.NewFromInt(10000).Equal(resp.Subtotal))
		assert.True(t, decimal.NewFromInt(900).Equal(resp.CGST))
		assert.True(t, decimal.NewFromInt(900).Equal(resp.SGST))
		assert.True(t, resp.IGST.IsZero())
		assert.True(t, decimal.NewFromInt(11800).Equal(resp.GrossTotal))
		assert.True(t, decimal.NewFromInt(590).Equal(resp.RetentionAmount))
		assert.True(t, decimal.NewFromInt(11210).Equal(resp.NetPayable))
		assert.True(t, decimal.NewFromInt(11210).Equal(resp.BalanceDue))
		assert.Equal(t, "Rupees Eleven Thousand Two Hundred Ten Only", resp.AmountInWords)
		f.bills.AssertExpectations(t)
		f.publisher.AssertCalled(t, "Publish", f.ctx, mock.Anything)
	})

	t.Run("inter-state place of supply", func(t *testing.T) {
		f := newBillFixture(t)
		f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, f.project.ID).Return(f.project, nil)
		f.tenants.On("FindByID", f.ctx, f.tenantID).Return(f.tenant, nil)
		f.seqs.On("Next", f.ctx, f.tenantID, "INV-2024").Return(int64(12), nil)
		f.bills.On("Create", f.ctx, mock.Anything).Return(nil)

		billDate := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
		resp, err := f.svc.Create(f.ctx, f.tenantID, CreateBillRequest{
			ProjectID:         f.project.ID,
			BillHeaderRequest: BillHeaderRequest{BillDate: &billDate, PlaceOfSupply: "29"},
			Lines:             []BillLineRequest{slabLine()},
		})
		require.NoError(t, err)
		assert.Equal(t, "INV-2024-0012", resp.BillNumber)
		assert.False(t, resp.IntraState)
		assert.True(t, decimal.NewFromInt(1800).Equal(resp.IGST))
		assert.True(t, resp.CGST.IsZero())
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newBillFixture(t)
		id := uuid.New()
		f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(f.ctx, f.tenantID, CreateBillRequest{ProjectID: id})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_PROJECT", de.Code)
	})

	t.Run("cancelled project", func(t *testing.T) {
		f := newBillFixture(t)
		f.project.Status = project.StatusCancelled
		f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, f.project.ID).Return(f.project, nil)

		_, err := f.svc.Create(f.ctx, f.tenantID, CreateBillRequest{ProjectID: f.project.ID})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.seqs.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("due date before bill date", func(t *testing.T) {
		f := newBillFixture(t)
		f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, f.project.ID).Return(f.project, nil)
		f.tenants.On("FindByID", f.ctx, f.tenantID).Return(f.tenant, nil)
		f.seqs.On("Next", f.ctx, f.tenantID, "INV-2025").Return(int64(2), nil)

		due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		_, err := f.svc.Create(f.ctx, f.tenantID, CreateBillRequest{
			ProjectID:         f.project.ID,
			BillHeaderRequest: BillHeaderRequest{DueDate: &due},
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_DATE_RANGE", de.Code)
		f.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBillService_Lifecycle(t *testing.T) {
	t.Run("issued bill lines are frozen", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)

		_, err := f.svc.UpdateLines(f.ctx, f.tenantID, b.ID, UpdateBillLinesRequest{Lines: []BillLineRequest{slabLine()}})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.bills.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("issue a bill without lines", func(t *testing.T) {
		f := newBillFixture(t)
		b, err := billing.NewBill(f.tenantID, "INV-2025-0003", f.project.ID, f.company.ID, "27", decimal.Zero, billing.Header{})
		require.NoError(t, err)
		f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)

		_, err = f.svc.Issue(f.ctx, f.tenantID, b.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("update header retaxes lines", func(t *testing.T) {
		f := newBillFixture(t)
		b, err := billing.NewBill(f.tenantID, "INV-2025-0004", f.project.ID, f.company.ID, "27", decimal.Zero, billing.Header{BillDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		require.NoError(t, b.SetLines([]billing.LineInput{slabLine().input()}))
		f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)
		f.bills.On("Update", f.ctx, b).Return(nil)

		resp, err := f.svc.UpdateHeader(f.ctx, f.tenantID, b.ID, UpdateBillRequest{BillHeaderRequest{PlaceOfSupply: "29", Remarks: "RA bill 3"}})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), resp.BillDate)
		assert.True(t, decimal.NewFromInt(1800).Equal(resp.IGST))
		assert.Equal(t, "RA bill 3", resp.Remarks)
	})

	t.Run("cancel issued bill", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)
		f.bills.On("Update", f.ctx, b).Return(nil)

		resp, err := f.svc.Cancel(f.ctx, f.tenantID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
	})

	t.Run("delete issued bill", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)

		err := f.svc.Delete(f.ctx, f.tenantID, b.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.bills.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.List(f.ctx, f.tenantID, BillListFilter{Status: "overdue"})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_STATUS", de.Code)
	})

	t.Run("list by project", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.bills.On("FindAll", f.ctx, f.tenantID, mock.MatchedBy(func(bf billing.BillFilter) bool {
			return bf.ProjectID != nil && *bf.ProjectID == f.project.ID && bf.Status == billing.BillIssued && bf.PageSize == 20
		})).Return([]billing.Bill{*b}, int64(1), nil)

		page, err := f.svc.List(f.ctx, f.tenantID, BillListFilter{ProjectID: &f.project.ID, Status: "issued"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "INV-2025-0001", page.Items[0].BillNumber)
	})
}

func TestBillService_RecordPayment(t *testing.T) {
	t.Run("partial then full payment", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		userID := uuid.New()
		f.bills.On("FindByIDForUpdate", f.ctx, f.tenantID, b.ID).Return(b, nil)
		f.bills.On("Update", f.ctx, b).Return(nil)
		f.payments.On("Create", f.ctx, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.BillID == b.ID && p.CreatedBy != nil && *p.CreatedBy == userID
		})).Return(nil)

		resp, err := f.svc.RecordPayment(f.ctx, f.tenantID, b.ID, RecordPaymentRequest{
			Amount:    decimal.NewFromInt(5000),
			Mode:      "bank",
			Reference: "NEFT-88121",
			CreatedBy: &userID,
		})
		require.NoError(t, err)
		assert.Equal(t, "partially_paid", resp.Bill.Status)
		assert.True(t, decimal.NewFromInt(6210).Equal(resp.Bill.BalanceDue))
		assert.Equal(t, "bank", resp.Payment.Mode)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), resp.Payment.PaidOn)

		resp, err = f.svc.RecordPayment(f.ctx, f.tenantID, b.ID, RecordPaymentRequest{
			Amount:    decimal.NewFromInt(6210),
			Mode:      "cheque",
			CreatedBy: &userID,
		})
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Bill.Status)
		assert.True(t, resp.Bill.BalanceDue.IsZero())
		f.payments.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("over payment", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.bills.On("FindByIDForUpdate", f.ctx, f.tenantID, b.ID).Return(b, nil)

		_, err := f.svc.RecordPayment(f.ctx, f.tenantID, b.ID, RecordPaymentRequest{
			Amount: decimal.NewFromInt(20000),
			Mode:   "cash",
		})
		assert.True(t, errors.Is(err, shared.ErrOverPayment))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "11210.00", de.Details["balance_due"])
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.bills.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("draft bill", func(t *testing.T) {
		f := newBillFixture(t)
		b, err := billing.NewBill(f.tenantID, "INV-2025-0005", f.project.ID, f.company.ID, "27", decimal.Zero, billing.Header{})
		require.NoError(t, err)
		f.bills.On("FindByIDForUpdate", f.ctx, f.tenantID, b.ID).Return(b, nil)

		_, err = f.svc.RecordPayment(f.ctx, f.tenantID, b.ID, RecordPaymentRequest{Amount: decimal.NewFromInt(1), Mode: "upi"})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("missing bill", func(t *testing.T) {
		f := newBillFixture(t)
		id := uuid.New()
		f.bills.On("FindByIDForUpdate", f.ctx, f.tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.RecordPayment(f.ctx, f.tenantID, id, RecordPaymentRequest{Amount: decimal.NewFromInt(1), Mode: "upi"})
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestBillService_ListPayments(t *testing.T) {
	f := newBillFixture(t)
	b := f.issuedBill(t)
	p, err := b.RecordPayment(decimal.NewFromInt(1000), time.Now(), billing.PaymentUPI, "UPI-1", "")
	require.NoError(t, err)
	f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)
	f.payments.On("FindByBill", f.ctx, f.tenantID, b.ID).Return([]billing.Payment{*p}, nil)

	out, err := f.svc.ListPayments(f.ctx, f.tenantID, b.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "UPI-1", out[0].Reference)
}

func (f *billFixture) expectInvoiceLookups(b *billing.Bill) {
	f.bills.On("FindByIDForTenant", f.ctx, f.tenantID, b.ID).Return(b, nil)
	f.tenants.On("FindByID", f.ctx, f.tenantID).Return(f.tenant, nil)
	f.projects.On("FindByIDForTenant", f.ctx, f.tenantID, f.project.ID).Return(f.project, nil)
	f.companies.On("FindByIDForTenant", f.ctx, f.tenantID, f.company.ID).Return(f.company, nil)
}

func TestBillService_RenderHTML(t *testing.T) {
	f := newBillFixture(t)
	b := f.issuedBill(t)
	f.expectInvoiceLookups(b)

	html, got, err := f.svc.RenderHTML(f.ctx, f.tenantID, b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Contains(t, html, "INV-2025-0001")
	assert.Contains(t, html, "Sai Infra Projects")
	assert.Contains(t, html, "Metro Housing Ltd")
	assert.Contains(t, html, "Skyline Towers")
	assert.Contains(t, html, "Survey 42, Hinjewadi")
	assert.Contains(t, html, "₹11,210.00")
	assert.Contains(t, html, "Rupees Eleven Thousand Two Hundred Ten Only")
}

func TestBillService_RenderPDF(t *testing.T) {
	t.Run("prints invoice", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.expectInvoiceLookups(b)
		f.pdf.On("Render", f.ctx, mock.MatchedBy(func(r *infra.RenderRequest) bool {
			return r.Title == "INV-2025-0001" && r.PaperSize == infra.PaperSizeA4
		})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.4")}, nil)

		doc, err := f.svc.RenderPDF(f.ctx, f.tenantID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-0001.pdf", doc.FileName)
		assert.Equal(t, []byte("%PDF-1.4"), doc.Data)
	})

	t.Run("configured paper size", func(t *testing.T) {
		f := newBillFixture(t)
		f.svc.WithPaperSize(infra.PaperSizeLegal).WithPaperSize("B7")
		b := f.issuedBill(t)
		f.expectInvoiceLookups(b)
		f.pdf.On("Render", f.ctx, mock.MatchedBy(func(r *infra.RenderRequest) bool {
			return r.PaperSize == infra.PaperSizeLegal
		})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.4")}, nil)

		_, err := f.svc.RenderPDF(f.ctx, f.tenantID, b.ID)
		require.NoError(t, err)
	})

	t.Run("browser missing", func(t *testing.T) {
		f := newBillFixture(t)
		b := f.issuedBill(t)
		f.expectInvoiceLookups(b)
		f.pdf.On("Render", f.ctx, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeBrowserNotFound, "chrome is not installed", nil))

		_, err := f.svc.RenderPDF(f.ctx, f.tenantID, b.ID)
		assert.True(t, errors.Is(err, ErrPDFUnavailable))
	})

	t.Run("no renderer configured", func(t *testing.T) {
		f := newBillFixture(t)
		f.svc.pdfRenderer = nil

		_, err := f.svc.RenderPDF(f.ctx, f.tenantID, uuid.New())
		assert.True(t, errors.Is(err, ErrPDFUnavailable))
	})
}
