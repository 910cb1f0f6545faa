package handler

import (
	inventoryapp "github.com/erp/buildledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles balances, batches, the movement ledger and the
// receive, adjust and transfer operations
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// List godoc
// @Summary  List godown balances
// @Tags     stock
// @Param    godown_id  query string false "Godown ID"  format(uuid)
// @Param    product_id query string false "Product ID" format(uuid)
// @Param    non_zero   query bool   false "Hide empty balances"
// @Router   /stock [get]
func (h *StockHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.StockListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"godown_id":  &filter.GodownID,
		"product_id": &filter.ProductID,
	}) {
		return
	}
	page, err := h.stockService.ListStock(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Item godoc
// @Summary  Balance of one product in one godown
// @Tags     stock
// @Param    godown_id  query string true "Godown ID"  format(uuid)
// @Param    product_id query string true "Product ID" format(uuid)
// @Router   /stock/item [get]
func (h *StockHandler) Item(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var godownID, productID *uuid.UUID
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"godown_id":  &godownID,
		"product_id": &productID,
	}) {
		return
	}
	if godownID == nil || productID == nil {
		h.BadRequest(c, "godown_id and product_id are required")
		return
	}
	stock, err := h.stockService.GetStock(c.Request.Context(), tenantID, *godownID, *productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stock)
}

// Batches godoc
// @Summary  List batches, oldest first by default
// @Tags     stock
// @Router   /stock/batches [get]
func (h *StockHandler) Batches(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.BatchListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"godown_id":  &filter.GodownID,
		"product_id": &filter.ProductID,
	}) {
		return
	}
	page, err := h.stockService.ListBatches(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Movements godoc
// @Summary  List the stock movement ledger
// @Tags     stock
// @Router   /stock/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"godown_id":    &filter.GodownID,
		"product_id":   &filter.ProductID,
		"batch_id":     &filter.BatchID,
		"reference_id": &filter.ReferenceID,
	}) {
		return
	}
	page, err := h.stockService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// LowStock godoc
// @Summary  Products whose total stock is below their reorder level
// @Tags     stock
// @Router   /stock/low-stock [get]
func (h *StockHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	items, err := h.stockService.LowStock(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}

// Valuation godoc
// @Summary  Value of stock on hand at batch cost
// @Tags     stock
// @Router   /stock/valuation [get]
func (h *StockHandler) Valuation(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	valuation, err := h.stockService.Valuation(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, valuation)
}

// Receive godoc
// @Summary  Book inward stock as a new batch
// @Tags     stock
// @Router   /stock/receive [post]
func (h *StockHandler) Receive(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req inventoryapp.ReceiveStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	result, err := h.stockService.Receive(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// Adjust godoc
// @Summary  Correct a balance up or down
// @Tags     stock
// @Router   /stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	result, err := h.stockService.Adjust(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Transfer godoc
// @Summary  Move stock between godowns, consuming source batches FIFO
// @Tags     stock
// @Router   /stock/transfers [post]
func (h *StockHandler) Transfer(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req inventoryapp.TransferStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	transfer, err := h.stockService.Transfer(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, transfer)
}

// ListTransfers godoc
// @Summary  List transfers
// @Tags     stock
// @Router   /stock/transfers [get]
func (h *StockHandler) ListTransfers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.TransferListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"godown_id":  &filter.GodownID,
		"product_id": &filter.ProductID,
	}) {
		return
	}
	page, err := h.stockService.ListTransfers(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// GetTransfer godoc
// @Summary  Get a transfer with its batch lines
// @Tags     stock
// @Router   /stock/transfers/{id} [get]
func (h *StockHandler) GetTransfer(c *gin.Context) {
	byID(&h.BaseHandler, c, "transfer", h.stockService.GetTransfer)
}
