package handler

import (
	purchaseapp "github.com/erp/buildledger/internal/application/purchase"
	"github.com/gin-gonic/gin"
)

// VendorHandler handles supplier master data
type VendorHandler struct {
	BaseHandler
	vendorService *purchaseapp.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService *purchaseapp.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// Create handles POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req purchaseapp.CreateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	vendor, err := h.vendorService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, vendor)
}

// GetByID handles GET /vendors/:id
func (h *VendorHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "vendor", h.vendorService.GetByID)
}

// List handles GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter purchaseapp.VendorListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.vendorService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update handles PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "vendor")
	if !ok {
		return
	}
	var req purchaseapp.UpdateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vendor, err := h.vendorService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, vendor)
}

// Activate handles POST /vendors/:id/activate
func (h *VendorHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, "vendor", h.vendorService.Activate)
}

// Deactivate handles POST /vendors/:id/deactivate
func (h *VendorHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, "vendor", h.vendorService.Deactivate)
}

// Delete handles DELETE /vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "vendor")
	if !ok {
		return
	}
	if err := h.vendorService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
