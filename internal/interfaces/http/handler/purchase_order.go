package handler

import (
	purchaseapp "github.com/erp/buildledger/internal/application/purchase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase orders and goods receipts
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchaseapp.OrderService
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(orderService *purchaseapp.OrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// Create godoc
// @Summary  Create a draft purchase order
// @Tags     purchase-orders
// @Router   /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req purchaseapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	order, err := h.orderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID godoc
// @Summary  Get a purchase order with its lines
// @Tags     purchase-orders
// @Router   /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "purchase order", h.orderService.GetByID)
}

// List godoc
// @Summary  List purchase orders
// @Tags     purchase-orders
// @Param    vendor_id  query string false "Vendor ID"  format(uuid)
// @Param    godown_id  query string false "Godown ID"  format(uuid)
// @Param    project_id query string false "Project ID" format(uuid)
// @Router   /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter purchaseapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"vendor_id":  &filter.VendorID,
		"godown_id":  &filter.GodownID,
		"project_id": &filter.ProjectID,
	}) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// UpdateLines godoc
// @Summary  Replace the lines of a draft order
// @Tags     purchase-orders
// @Router   /purchase-orders/{id}/lines [put]
func (h *PurchaseOrderHandler) UpdateLines(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req purchaseapp.UpdateLinesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateLines(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// Confirm godoc
// @Summary  Confirm a draft order
// @Tags     purchase-orders
// @Router   /purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	byID(&h.BaseHandler, c, "purchase order", h.orderService.Confirm)
}

// Cancel godoc
// @Summary  Cancel an order with nothing received
// @Tags     purchase-orders
// @Router   /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	byID(&h.BaseHandler, c, "purchase order", h.orderService.Cancel)
}

// Delete godoc
// @Summary  Delete a draft order
// @Tags     purchase-orders
// @Router   /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Receive godoc
// @Summary      Receive goods against a confirmed order
// @Description  Each receipt line becomes a stock batch in the order's godown.
// @Tags         purchase-orders
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req purchaseapp.ReceiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	result, err := h.orderService.Receive(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// Receipts godoc
// @Summary  List the goods receipts of an order
// @Tags     purchase-orders
// @Router   /purchase-orders/{id}/receipts [get]
func (h *PurchaseOrderHandler) Receipts(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}
	receipts, err := h.orderService.ListReceipts(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, receipts)
}
