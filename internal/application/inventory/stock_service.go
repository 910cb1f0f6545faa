package inventory

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService books stock in, moves it between godowns, adjusts it and
// answers balance and ledger queries. All writes go through the StockLedger
// inside one transaction.
type StockService struct {
	godownRepo     inventory.GodownRepository
	productRepo    catalog.ProductRepository
	stockRepo      inventory.GodownStockRepository
	batchRepo      inventory.StockBatchRepository
	movementRepo   inventory.StockMovementRepository
	transferRepo   inventory.TransferRepository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// StockRepositories groups the read-side repositories used by StockService
type StockRepositories struct {
	Godowns   inventory.GodownRepository
	Products  catalog.ProductRepository
	Stocks    inventory.GodownStockRepository
	Batches   inventory.StockBatchRepository
	Movements inventory.StockMovementRepository
	Transfers inventory.TransferRepository
}

// NewStockService creates a new StockService
func NewStockService(repos StockRepositories, scope txn.Scope, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		godownRepo:   repos.Godowns,
		productRepo:  repos.Products,
		stockRepo:    repos.Stocks,
		batchRepo:    repos.Batches,
		movementRepo: repos.Movements,
		transferRepo: repos.Transfers,
		scope:        scope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Receive books opening or ad-hoc inward stock as a new batch
func (s *StockService) Receive(ctx context.Context, tenantID uuid.UUID, req ReceiveStockRequest) (*ReceiveStockResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if req.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if _, err := activeGodown(ctx, s.godownRepo, tenantID, req.GodownID); err != nil {
		return nil, err
	}
	if _, err := activeProduct(ctx, s.productRepo, tenantID, req.ProductID); err != nil {
		return nil, err
	}

	source, refType := inventory.SourceAdjustment, inventory.RefReceipt
	if req.Opening {
		source, refType = inventory.SourceOpening, inventory.RefOpening
	}
	receiptID := uuid.New()

	var (
		ledger *inventory.StockLedger
		batch  *inventory.StockBatch
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		ledger = txn.Ledger(repos)
		var err error
		batch, err = ledger.Receive(ctx, inventory.ReceiveInput{
			TenantID:     tenantID,
			GodownID:     req.GodownID,
			ProductID:    req.ProductID,
			Quantity:     req.Quantity,
			UnitCost:     req.UnitCost,
			ReceivedDate: orToday(req.ReceivedDate, s.now),
			Source:       source,
			SourceID:     &receiptID,
			BatchNumber:  req.BatchNumber,
			MovementType: inventory.MovementInward,
			Reference:    inventory.Reference{Type: refType, ID: receiptID},
			Remarks:      req.Remarks,
			CreatedBy:    req.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	stocks := ledger.TouchedStocks()
	s.publishStocks(ctx, stocks)

	s.logger.Info("stock received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("source", string(source)),
		zap.String("quantity", batch.OriginalQty.String()))

	return &ReceiveStockResponse{
		Batch: ToBatchResponse(batch),
		Stock: ToStockResponse(stockFor(stocks, req.GodownID, req.ProductID)),
	}, nil
}

// Transfer moves qty of a product between two active godowns. Each source
// batch consumed becomes a destination batch with the same number, cost and
// received date, so FIFO order survives the move.
func (s *StockService) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferStockRequest) (*TransferResponse, error) {
	if req.FromGodownID == req.ToGodownID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and destination godowns must differ")
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}
	if _, err := activeGodown(ctx, s.godownRepo, tenantID, req.FromGodownID); err != nil {
		return nil, err
	}
	if _, err := activeGodown(ctx, s.godownRepo, tenantID, req.ToGodownID); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}
	date := orToday(req.TransferDate, s.now)

	var (
		ledger   *inventory.StockLedger
		transfer *inventory.StockTransfer
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), tenantID, shared.PrefixTransfer, date)
		if err != nil {
			return err
		}
		transfer, err = inventory.NewStockTransfer(tenantID, number, req.FromGodownID, req.ToGodownID, req.ProductID, req.Quantity, date, req.Remarks)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			transfer.SetCreatedBy(*req.CreatedBy)
		}
		ref := inventory.Reference{Type: inventory.RefTransfer, ID: transfer.ID}

		ledger = txn.Ledger(repos)
		plan, err := ledger.Consume(ctx, inventory.ConsumeInput{
			TenantID:     tenantID,
			GodownID:     req.FromGodownID,
			ProductID:    req.ProductID,
			Quantity:     req.Quantity,
			MovementType: inventory.MovementTransferOut,
			Reference:    ref,
			Remarks:      req.Remarks,
			CreatedBy:    req.CreatedBy,
		})
		if err != nil {
			return err
		}
		for _, line := range plan.Lines {
			src, err := repos.Batches().FindByIDForTenant(ctx, tenantID, line.BatchID)
			if err != nil {
				return err
			}
			parentID := src.ID
			dest, err := ledger.Receive(ctx, inventory.ReceiveInput{
				TenantID:      tenantID,
				GodownID:      req.ToGodownID,
				ProductID:     req.ProductID,
				Quantity:      line.Quantity,
				UnitCost:      line.UnitCost,
				ReceivedDate:  src.ReceivedDate,
				Source:        inventory.SourceTransfer,
				SourceID:      &transfer.ID,
				ParentBatchID: &parentID,
				BatchNumber:   line.BatchNumber,
				MovementType:  inventory.MovementTransferIn,
				Reference:     ref,
				Remarks:       req.Remarks,
				CreatedBy:     req.CreatedBy,
			})
			if err != nil {
				return err
			}
			transfer.AddLine(line, dest.ID)
		}
		transfer.Complete()
		return repos.Transfers().Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}
	s.publishStocks(ctx, ledger.TouchedStocks())
	if err := shared.PublishAndClear(ctx, s.eventPublisher, transfer); err != nil {
		s.logger.Warn("failed to publish transfer events", zap.String("transfer_number", transfer.TransferNumber), zap.Error(err))
	}

	s.logger.Info("stock transferred",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transfer_number", transfer.TransferNumber),
		zap.Int("batches", len(transfer.Lines)),
		zap.String("total_cost", transfer.TotalCost.String()))

	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// Adjust corrects a balance. A positive delta opens an adjustment batch at
// the given cost or the current average cost; a negative delta is consumed FIFO.
func (s *StockService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	if req.Delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if _, err := activeGodown(ctx, s.godownRepo, tenantID, req.GodownID); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}

	adjustmentID := uuid.New()
	ref := inventory.Reference{Type: inventory.RefAdjustment, ID: adjustmentID}
	resp := &AdjustStockResponse{ReferenceID: adjustmentID}

	var ledger *inventory.StockLedger
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		ledger = txn.Ledger(repos)
		if req.Delta.IsPositive() {
			cost := decimal.Zero
			if req.UnitCost != nil {
				cost = *req.UnitCost
			} else {
				avg, err := ledger.CurrentAverageCost(ctx, tenantID, req.GodownID, req.ProductID)
				if err != nil {
					return err
				}
				cost = avg
			}
			batch, err := ledger.Receive(ctx, inventory.ReceiveInput{
				TenantID:     tenantID,
				GodownID:     req.GodownID,
				ProductID:    req.ProductID,
				Quantity:     req.Delta,
				UnitCost:     cost,
				ReceivedDate: shared.DateOnly(s.now()),
				Source:       inventory.SourceAdjustment,
				SourceID:     &adjustmentID,
				MovementType: inventory.MovementAdjustmentIn,
				Reference:    ref,
				Remarks:      req.Reason,
				CreatedBy:    req.CreatedBy,
			})
			if err != nil {
				return err
			}
			br := ToBatchResponse(batch)
			resp.Batch = &br
			return nil
		}
		plan, err := ledger.Consume(ctx, inventory.ConsumeInput{
			TenantID:     tenantID,
			GodownID:     req.GodownID,
			ProductID:    req.ProductID,
			Quantity:     req.Delta.Abs(),
			MovementType: inventory.MovementAdjustmentOut,
			Reference:    ref,
			Remarks:      req.Reason,
			CreatedBy:    req.CreatedBy,
		})
		if err != nil {
			return err
		}
		resp.Consumed = plan.Lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	stocks := ledger.TouchedStocks()
	s.publishStocks(ctx, stocks)
	resp.Stock = ToStockResponse(stockFor(stocks, req.GodownID, req.ProductID))

	s.logger.Info("stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("godown_id", req.GodownID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("delta", req.Delta.String()),
		zap.String("reason", req.Reason))

	return resp, nil
}

// ListStock lists godown balances
func (s *StockService) ListStock(ctx context.Context, tenantID uuid.UUID, filter StockListFilter) (*shared.Paginated[StockResponse], error) {
	f := inventory.StockFilter{
		Filter:      listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		GodownID:    filter.GodownID,
		ProductID:   filter.ProductID,
		NonZeroOnly: filter.NonZeroOnly,
	}
	stocks, total, err := s.stockRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]StockResponse, len(stocks))
	for i := range stocks {
		items[i] = ToStockResponse(&stocks[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetStock returns the balance of one product in one godown
func (s *StockService) GetStock(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*StockResponse, error) {
	stock, err := s.stockRepo.Find(ctx, tenantID, godownID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(stock)
	return &resp, nil
}

// ListBatches lists stock batches
func (s *StockService) ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	f := inventory.BatchFilter{
		Filter:        listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		GodownID:      filter.GodownID,
		ProductID:     filter.ProductID,
		AvailableOnly: filter.AvailableOnly,
	}
	batches, total, err := s.batchRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]BatchResponse, len(batches))
	for i := range batches {
		items[i] = ToBatchResponse(&batches[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// ListMovements lists ledger lines
func (s *StockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	t := inventory.MovementType(filter.Type)
	if t != "" && !t.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_MOVEMENT", "Unknown movement type %q", filter.Type)
	}
	r, err := toDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f := inventory.MovementFilter{
		Filter:      listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		GodownID:    filter.GodownID,
		ProductID:   filter.ProductID,
		BatchID:     filter.BatchID,
		Type:        t,
		ReferenceID: filter.ReferenceID,
		Range:       r,
	}
	movements, total, err := s.movementRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// LowStock lists products whose stock across all godowns is below the reorder level
func (s *StockService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]LowStockResponse, error) {
	rows, err := s.stockRepo.LowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]LowStockResponse, len(rows))
	for i, r := range rows {
		out[i] = LowStockResponse{LowStockItem: r, Shortfall: r.Shortfall()}
	}
	return out, nil
}

// Valuation returns the stock value of each godown and the tenant total
func (s *StockService) Valuation(ctx context.Context, tenantID uuid.UUID) (*ValuationResponse, error) {
	rows, err := s.stockRepo.Valuation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalValue)
	}
	if rows == nil {
		rows = []inventory.GodownValuation{}
	}
	return &ValuationResponse{Godowns: rows, TotalValue: total.Round(2)}, nil
}

// ListTransfers lists transfer documents
func (s *StockService) ListTransfers(ctx context.Context, tenantID uuid.UUID, filter TransferListFilter) (*shared.Paginated[TransferResponse], error) {
	r, err := toDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f := inventory.TransferFilter{
		Filter:    listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		GodownID:  filter.GodownID,
		ProductID: filter.ProductID,
		Range:     r,
	}
	transfers, total, err := s.transferRepo.FindAll(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]TransferResponse, len(transfers))
	for i := range transfers {
		items[i] = ToTransferResponse(&transfers[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetTransfer retrieves a transfer with its lines
func (s *StockService) GetTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	t, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(t)
	return &resp, nil
}

// publishStocks publishes the StockChanged events recorded by a committed ledger
func (s *StockService) publishStocks(ctx context.Context, stocks []*inventory.GodownStock) {
	publishStocks(ctx, s.eventPublisher, s.logger, stocks)
}

func publishStocks(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, stocks []*inventory.GodownStock) {
	for _, st := range stocks {
		if err := shared.PublishAndClear(ctx, publisher, st); err != nil {
			logger.Warn("failed to publish stock events",
				zap.String("godown_id", st.GodownID.String()),
				zap.String("product_id", st.ProductID.String()),
				zap.Error(err))
		}
	}
}

func stockFor(stocks []*inventory.GodownStock, godownID, productID uuid.UUID) *inventory.GodownStock {
	for _, st := range stocks {
		if st.GodownID == godownID && st.ProductID == productID {
			return st
		}
	}
	return &inventory.GodownStock{GodownID: godownID, ProductID: productID}
}

func listFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
	}.Normalize()
}

func activeGodown(ctx context.Context, repo inventory.GodownRepository, tenantID, id uuid.UUID) (*inventory.Godown, error) {
	g, err := repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_GODOWN", "Godown not found").WithDetail("godown_id", id.String())
		}
		return nil, err
	}
	if !g.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Godown %s is inactive", g.Code)
	}
	return g, nil
}

func activeProduct(ctx context.Context, repo catalog.ProductRepository, tenantID, id uuid.UUID) (*catalog.Product, error) {
	p, err := repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found").WithDetail("product_id", id.String())
		}
		return nil, err
	}
	if !p.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Product %s is inactive", p.Code)
	}
	return p, nil
}
