// Package billing implements project bills, their payments and invoice output.
package billing

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
	infra "github.com/erp/buildledger/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPDFUnavailable is returned when no browser can print the invoice
var ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not available")

// InvoiceRenderer turns a bill into invoice HTML
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, data *infra.InvoiceData) (string, error)
}

// BillService handles bills and the payments received against them
type BillService struct {
	billRepo       billing.BillRepository
	paymentRepo    billing.PaymentRepository
	projectRepo    project.Repository
	companyRepo    company.Repository
	tenantRepo     tenant.Repository
	scope          txn.Scope
	invoices       InvoiceRenderer
	pdfRenderer    infra.PDFRenderer
	paperSize      infra.PaperSize
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// BillRepositories groups the repositories used by BillService outside a transaction
type BillRepositories struct {
	Bills     billing.BillRepository
	Payments  billing.PaymentRepository
	Projects  project.Repository
	Companies company.Repository
	Tenants   tenant.Repository
}

// NewBillService creates a new BillService. pdfRenderer may be nil, in which
// case RenderPDF reports ErrPDFUnavailable.
func NewBillService(repos BillRepositories, scope txn.Scope, invoices InvoiceRenderer, pdfRenderer infra.PDFRenderer, logger *zap.Logger) *BillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillService{
		billRepo:    repos.Bills,
		paymentRepo: repos.Payments,
		projectRepo: repos.Projects,
		companyRepo: repos.Companies,
		tenantRepo:  repos.Tenants,
		scope:       scope,
		invoices:    invoices,
		pdfRenderer: pdfRenderer,
		paperSize:   infra.PaperSizeA4,
		logger:      logger,
		now:         time.Now,
	}
}

// WithPaperSize sets the sheet size of printed invoices
func (s *BillService) WithPaperSize(size infra.PaperSize) *BillService {
	if size.IsValid() {
		s.paperSize = size
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a draft bill on a project. The company, the supplier state
// and the retention percent are taken from the project and the tenant.
func (s *BillService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBillRequest) (*BillResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, req.ProjectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_PROJECT", "Project not found").WithDetail("project_id", req.ProjectID.String())
		}
		return nil, err
	}
	if p.Status == project.StatusCancelled {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Project %s is cancelled", p.Code)
	}
	t, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	header := req.header(s.now())

	var bill *billing.Bill
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), tenantID, shared.PrefixInvoice, shared.DateOnly(header.BillDate))
		if err != nil {
			return err
		}
		bill, err = billing.NewBill(tenantID, number, p.ID, p.CompanyID, t.StateCode, p.RetentionPercent, header)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			bill.SetCreatedBy(*req.CreatedBy)
		}
		if len(req.Lines) > 0 {
			if err := bill.SetLines(lineInputs(req.Lines)); err != nil {
				return err
			}
		}
		return repos.Bills().Create(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, bill)

	s.logger.Info("bill created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("project_id", p.ID.String()))

	resp := ToBillResponse(bill)
	return &resp, nil
}

// UpdateHeader changes dates, place of supply and remarks of a draft bill
func (s *BillService) UpdateHeader(ctx context.Context, tenantID, id uuid.UUID, req UpdateBillRequest) (*BillResponse, error) {
	return s.mutate(ctx, tenantID, id, func(b *billing.Bill) error {
		return b.UpdateHeader(req.header(b.BillDate))
	})
}

// UpdateLines replaces the lines of a draft bill
func (s *BillService) UpdateLines(ctx context.Context, tenantID, id uuid.UUID, req UpdateBillLinesRequest) (*BillResponse, error) {
	inputs := lineInputs(req.Lines)
	return s.mutate(ctx, tenantID, id, func(b *billing.Bill) error {
		return b.SetLines(inputs)
	})
}

// Issue finalises a draft bill
func (s *BillService) Issue(ctx context.Context, tenantID, id uuid.UUID) (*BillResponse, error) {
	resp, err := s.mutate(ctx, tenantID, id, (*billing.Bill).Issue)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bill issued",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_number", resp.BillNumber),
		zap.String("gross_total", resp.GrossTotal.String()))
	return resp, nil
}

// Cancel voids a draft or issued bill
func (s *BillService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*BillResponse, error) {
	return s.mutate(ctx, tenantID, id, (*billing.Bill).Cancel)
}

// GetByID retrieves a bill with its lines
func (s *BillService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BillResponse, error) {
	b, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(b)
	return &resp, nil
}

// List retrieves bills with filtering and pagination
func (s *BillService) List(ctx context.Context, tenantID uuid.UUID, filter BillListFilter) (*shared.Paginated[BillResponse], error) {
	status := billing.BillStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_STATUS", "Unknown bill status %q", filter.Status)
	}
	r := shared.DateRange{}
	if filter.From != nil {
		r.From = shared.DateOnly(*filter.From)
	}
	if filter.To != nil {
		r.To = shared.DateOnly(*filter.To)
	}
	if !r.Valid() {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	f := billing.BillFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		ProjectID: filter.ProjectID,
		CompanyID: filter.CompanyID,
		Status:    status,
		Range:     r,
	}
	bills, total, err := s.billRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]BillResponse, len(bills))
	for i := range bills {
		items[i] = ToBillResponse(&bills[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Delete removes a draft bill
func (s *BillService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	b, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !b.CanBeDeleted() {
		return shared.NewDomainErrorf("INVALID_STATE", "Only draft bills can be deleted, current status is %s", b.Status)
	}
	return s.billRepo.DeleteForTenant(ctx, tenantID, id)
}

// RecordPayment books money received against an issued bill. The bill row
// is locked so concurrent payments cannot overshoot the balance.
func (s *BillService) RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	paidOn := s.now()
	if req.PaidOn != nil {
		paidOn = *req.PaidOn
	}

	var (
		bill    *billing.Bill
		payment *billing.Payment
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		bill, err = repos.Bills().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		payment, err = bill.RecordPayment(req.Amount, paidOn, billing.PaymentMode(req.Mode), req.Reference, req.Remarks)
		if err != nil {
			return err
		}
		payment.CreatedBy = req.CreatedBy
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.Bills().Update(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, bill)

	s.logger.Info("bill payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_due", bill.BalanceDue.String()))

	return &RecordPaymentResponse{
		Payment: ToPaymentResponse(payment),
		Bill:    ToBillResponse(bill),
	}, nil
}

// ListPayments lists payments received against a bill, oldest first
func (s *BillService) ListPayments(ctx context.Context, tenantID, id uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByBill(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// RenderHTML renders the tax invoice of a bill
func (s *BillService) RenderHTML(ctx context.Context, tenantID, id uuid.UUID) (string, *billing.Bill, error) {
	data, err := s.invoiceData(ctx, tenantID, id)
	if err != nil {
		return "", nil, err
	}
	html, err := s.invoices.RenderInvoice(ctx, data)
	if err != nil {
		return "", nil, err
	}
	return html, data.Bill, nil
}

// RenderPDF prints the tax invoice through headless Chrome
func (s *BillService) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*PDFDocument, error) {
	if s.pdfRenderer == nil {
		return nil, ErrPDFUnavailable
	}
	html, bill, err := s.RenderHTML(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	result, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:      html,
		Title:     bill.BillNumber,
		PaperSize: s.paperSize,
		Margins:   infra.DefaultMargins(),
	})
	if err != nil {
		if infra.IsUnavailable(err) {
			s.logger.Warn("pdf renderer unavailable", zap.Error(err))
			return nil, ErrPDFUnavailable
		}
		return nil, err
	}
	return &PDFDocument{
		FileName: bill.BillNumber + ".pdf",
		Data:     result.PDFData,
	}, nil
}

func (s *BillService) invoiceData(ctx context.Context, tenantID, id uuid.UUID) (*infra.InvoiceData, error) {
	b, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	t, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, b.ProjectID)
	if err != nil {
		return nil, err
	}
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, b.CompanyID)
	if err != nil {
		return nil, err
	}
	return &infra.InvoiceData{
		Bill: b,
		Supplier: infra.Party{
			Name:      t.Name,
			GSTIN:     t.GSTIN,
			StateCode: t.StateCode,
		},
		Buyer: infra.Party{
			Name:      c.Name,
			GSTIN:     c.GSTIN,
			StateCode: c.StateCode,
			Address:   c.Address,
			Phone:     c.Phone,
			Email:     c.Email,
		},
		ProjectCode: p.Code,
		ProjectName: p.Name,
		SiteAddress: p.SiteAddress,
	}, nil
}

func (s *BillService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*billing.Bill) error) (*BillResponse, error) {
	b, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := s.billRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, b)
	resp := ToBillResponse(b)
	return &resp, nil
}
