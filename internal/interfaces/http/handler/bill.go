package handler

import (
	"net/http"

	billingapp "github.com/erp/buildledger/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillHandler handles client bills, their payments and printable output
type BillHandler struct {
	BaseHandler
	billService *billingapp.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *billingapp.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// Create godoc
// @Summary  Open a draft bill on a project
// @Tags     bills
// @Router   /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req billingapp.CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	bill, err := h.billService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, bill)
}

// GetByID godoc
// @Summary  Get a bill with its lines and totals
// @Tags     bills
// @Router   /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "bill", h.billService.GetByID)
}

// List godoc
// @Summary  List bills
// @Tags     bills
// @Param    project_id query string false "Project ID" format(uuid)
// @Param    company_id query string false "Company ID" format(uuid)
// @Router   /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter billingapp.BillListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"project_id": &filter.ProjectID,
		"company_id": &filter.CompanyID,
	}) {
		return
	}
	page, err := h.billService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @Summary  Change the header of a draft bill
// @Tags     bills
// @Router   /bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	var req billingapp.UpdateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.UpdateHeader(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bill)
}

// UpdateLines godoc
// @Summary  Replace the lines of a draft bill
// @Tags     bills
// @Router   /bills/{id}/lines [put]
func (h *BillHandler) UpdateLines(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	var req billingapp.UpdateBillLinesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.UpdateLines(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bill)
}

// Issue godoc
// @Summary      Issue a draft bill
// @Description  Assigns the invoice number. Issued bills are immutable.
// @Tags         bills
// @Router       /bills/{id}/issue [post]
func (h *BillHandler) Issue(c *gin.Context) {
	byID(&h.BaseHandler, c, "bill", h.billService.Issue)
}

// Cancel godoc
// @Summary  Cancel a bill with no payments
// @Tags     bills
// @Router   /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
	byID(&h.BaseHandler, c, "bill", h.billService.Cancel)
}

// Delete godoc
// @Summary  Delete a draft bill
// @Tags     bills
// @Router   /bills/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	if err := h.billService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordPayment godoc
// @Summary  Record money received against an issued bill
// @Tags     bills
// @Router   /bills/{id}/payments [post]
func (h *BillHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	var req billingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	result, err := h.billService.RecordPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// ListPayments godoc
// @Summary  List payments of a bill
// @Tags     bills
// @Router   /bills/{id}/payments [get]
func (h *BillHandler) ListPayments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	payments, err := h.billService.ListPayments(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payments)
}

// HTML godoc
// @Summary  Render the bill as a printable HTML invoice
// @Tags     bills
// @Produce  html
// @Router   /bills/{id}/html [get]
func (h *BillHandler) HTML(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	html, _, err := h.billService.RenderHTML(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// PDF godoc
// @Summary  Render the bill as a PDF through headless Chrome
// @Tags     bills
// @Produce  application/pdf
// @Failure  503 {object} dto.Response "PDF rendering is not configured"
// @Router   /bills/{id}/pdf [get]
func (h *BillHandler) PDF(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	doc, err := h.billService.RenderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
