package purchase

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles purchase orders and goods receipts
type OrderService struct {
	orderRepo      purchase.PurchaseOrderRepository
	receiptRepo    purchase.GoodsReceiptRepository
	vendorRepo     purchase.VendorRepository
	godownRepo     inventory.GodownRepository
	productRepo    catalog.ProductRepository
	projectRepo    project.Repository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// OrderRepositories groups the repositories used by OrderService outside a transaction
type OrderRepositories struct {
	Orders   purchase.PurchaseOrderRepository
	Receipts purchase.GoodsReceiptRepository
	Vendors  purchase.VendorRepository
	Godowns  inventory.GodownRepository
	Products catalog.ProductRepository
	Projects project.Repository
}

// NewOrderService creates a new OrderService
func NewOrderService(repos OrderRepositories, scope txn.Scope, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   repos.Orders,
		receiptRepo: repos.Receipts,
		vendorRepo:  repos.Vendors,
		godownRepo:  repos.Godowns,
		productRepo: repos.Products,
		projectRepo: repos.Projects,
		scope:       scope,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a draft order, optionally with lines
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, req.VendorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor not found").WithDetail("vendor_id", req.VendorID.String())
		}
		return nil, err
	}
	if !vendor.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Vendor %s is inactive", vendor.Code)
	}
	if err := checkGodown(ctx, s.godownRepo, tenantID, req.GodownID); err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, *req.ProjectID); err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewDomainError("INVALID_PROJECT", "Project not found").WithDetail("project_id", req.ProjectID.String())
			}
			return nil, err
		}
	}
	var lines []purchase.LineInput
	if len(req.Lines) > 0 {
		if lines, err = s.lineInputs(ctx, tenantID, req.Lines); err != nil {
			return nil, err
		}
	}
	orderDate := shared.DateOnly(s.now())
	if req.OrderDate != nil {
		orderDate = shared.DateOnly(*req.OrderDate)
	}

	var po *purchase.PurchaseOrder
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), tenantID, shared.PrefixPurchaseOrder, orderDate)
		if err != nil {
			return err
		}
		po, err = purchase.NewPurchaseOrder(tenantID, number, req.VendorID, req.GodownID, req.ProjectID, orderDate, req.ExpectedDate, req.Remarks)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			po.SetCreatedBy(*req.CreatedBy)
		}
		if lines != nil {
			if err := po.SetLines(lines); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders().Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, po)

	s.logger.Info("purchase order created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_number", po.OrderNumber),
		zap.String("grand_total", po.GrandTotal.String()))

	resp := ToOrderResponse(po)
	return &resp, nil
}

// UpdateLines replaces the lines of a draft order
func (s *OrderService) UpdateLines(ctx context.Context, tenantID, id uuid.UUID, req UpdateLinesRequest) (*OrderResponse, error) {
	lines, err := s.lineInputs(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, func(po *purchase.PurchaseOrder) error {
		return po.SetLines(lines)
	})
}

// Confirm sends a draft order to the vendor
func (s *OrderService) Confirm(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, id, (*purchase.PurchaseOrder).Confirm)
}

// Cancel abandons an order before anything is received
func (s *OrderService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, id, (*purchase.PurchaseOrder).Cancel)
}

// GetByID retrieves an order with its lines
func (s *OrderService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	po, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(po)
	return &resp, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	status := purchase.OrderStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_STATUS", "Unknown order status %q", filter.Status)
	}
	r, err := toDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f := purchase.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		VendorID:  filter.VendorID,
		GodownID:  filter.GodownID,
		ProjectID: filter.ProjectID,
		Status:    status,
		Range:     r,
	}
	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Delete removes a draft order
func (s *OrderService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	po, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !po.CanBeDeleted() {
		return shared.NewDomainErrorf("INVALID_STATE", "Only draft orders can be deleted, current status is %s", po.Status)
	}
	return s.orderRepo.DeleteForTenant(ctx, tenantID, id)
}

// Receive books delivered goods against a confirmed order. Each received
// line becomes a purchase batch at the line's unit price; the order, the
// batches, balances, movements and the goods receipt are written together.
func (s *OrderService) Receive(ctx context.Context, tenantID, id uuid.UUID, req ReceiveRequest) (*ReceiveResponse, error) {
	inputs := make([]purchase.ReceiptInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = purchase.ReceiptInput{LineID: l.LineID, Quantity: l.Quantity}
	}
	received := shared.DateOnly(s.now())
	if req.ReceivedDate != nil {
		received = shared.DateOnly(*req.ReceivedDate)
	}

	var (
		po      *purchase.PurchaseOrder
		receipt *purchase.GoodsReceipt
		ledger  *inventory.StockLedger
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := checkGodown(ctx, repos.Godowns(), tenantID, po.GodownID); err != nil {
			return err
		}
		lines, err := po.RegisterReceipt(inputs)
		if err != nil {
			return err
		}
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), tenantID, shared.PrefixGoodsReceipt, received)
		if err != nil {
			return err
		}
		receipt = purchase.NewGoodsReceipt(po, number, received, req.Remarks)
		if req.CreatedBy != nil {
			receipt.SetCreatedBy(*req.CreatedBy)
		}

		ledger = txn.Ledger(repos)
		for i, line := range lines {
			qty := inputs[i].Quantity
			batch, err := ledger.Receive(ctx, inventory.ReceiveInput{
				TenantID:     tenantID,
				GodownID:     po.GodownID,
				ProductID:    line.ProductID,
				Quantity:     qty,
				UnitCost:     line.UnitPrice,
				ReceivedDate: received,
				Source:       inventory.SourcePurchase,
				SourceID:     &po.ID,
				MovementType: inventory.MovementInward,
				Reference:    inventory.Reference{Type: inventory.RefGoodsReceipt, ID: receipt.ID},
				Remarks:      po.OrderNumber + " / " + receipt.ReceiptNumber,
				CreatedBy:    req.CreatedBy,
			})
			if err != nil {
				return err
			}
			receipt.AddLine(line, qty, batch.ID)
		}
		receipt.Complete(po.Status)
		if err := repos.Receipts().Create(ctx, receipt); err != nil {
			return err
		}
		return repos.PurchaseOrders().Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	for _, st := range ledger.TouchedStocks() {
		if err := shared.PublishAndClear(ctx, s.eventPublisher, st); err != nil {
			s.logger.Warn("failed to publish stock events", zap.String("product_id", st.ProductID.String()), zap.Error(err))
		}
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, po, receipt); err != nil {
		s.logger.Warn("failed to publish receipt events", zap.String("order_number", po.OrderNumber), zap.Error(err))
	}

	s.logger.Info("goods received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_number", po.OrderNumber),
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("status", string(po.Status)),
		zap.String("total_value", receipt.TotalValue.String()))

	return &ReceiveResponse{
		Receipt:         ToReceiptResponse(receipt),
		Order:           ToOrderResponse(po),
		IsFullyReceived: po.FullyReceived(),
	}, nil
}

// ListReceipts returns the goods receipts of an order, oldest first
func (s *OrderService) ListReceipts(ctx context.Context, tenantID, orderID uuid.UUID) ([]ReceiptResponse, error) {
	if _, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	receipts, err := s.receiptRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = ToReceiptResponse(&receipts[i])
	}
	return out, nil
}

// lineInputs resolves products and fills the GST rate from the product when omitted
func (s *OrderService) lineInputs(ctx context.Context, tenantID uuid.UUID, reqs []OrderLineRequest) ([]purchase.LineInput, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, l := range reqs {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]purchase.LineInput, len(reqs))
	for i, l := range reqs {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found").WithDetail("product_id", l.ProductID.String())
		}
		if !p.IsActive() {
			return nil, shared.NewDomainErrorf("INVALID_STATE", "Product %s is inactive", p.Code)
		}
		rate := p.GSTRate
		if l.GSTRate != nil {
			rate = *l.GSTRate
		}
		out[i] = purchase.LineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			GSTRate:   rate,
		}
	}
	return out, nil
}

// checkGodown reads through godowns, so a caller inside a transaction must pass its tx-bound repository
func checkGodown(ctx context.Context, godowns inventory.GodownRepository, tenantID, id uuid.UUID) error {
	g, err := godowns.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError("INVALID_GODOWN", "Godown not found").WithDetail("godown_id", id.String())
		}
		return err
	}
	if !g.IsActive() {
		return shared.NewDomainErrorf("INVALID_STATE", "Godown %s is inactive", g.Code)
	}
	return nil
}

func (s *OrderService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*purchase.PurchaseOrder) error) (*OrderResponse, error) {
	po, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(po); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, po); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, po)
	resp := ToOrderResponse(po)
	return &resp, nil
}

func toDateRange(from, to *time.Time) (shared.DateRange, error) {
	r := shared.DateRange{}
	if from != nil {
		r.From = shared.DateOnly(*from)
	}
	if to != nil {
		r.To = shared.DateOnly(*to)
	}
	if !r.Valid() {
		return r, shared.NewDomainError("INVALID_DATE_RANGE", "From date cannot be after to date")
	}
	return r, nil
}
