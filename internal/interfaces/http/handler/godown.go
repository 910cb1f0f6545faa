package handler

import (
	inventoryapp "github.com/erp/buildledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// GodownHandler handles godown master data
type GodownHandler struct {
	BaseHandler
	godownService *inventoryapp.GodownService
}

// NewGodownHandler creates a new godown handler
func NewGodownHandler(godownService *inventoryapp.GodownService) *GodownHandler {
	return &GodownHandler{godownService: godownService}
}

// Create handles POST /godowns
func (h *GodownHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateGodownRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	godown, err := h.godownService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, godown)
}

// GetByID handles GET /godowns/:id
func (h *GodownHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "godown", h.godownService.GetByID)
}

// List handles GET /godowns
func (h *GodownHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.GodownListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.godownService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update handles PUT /godowns/:id
func (h *GodownHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "godown")
	if !ok {
		return
	}
	var req inventoryapp.UpdateGodownRequest
	if !h.bindJSON(c, &req) {
		return
	}
	godown, err := h.godownService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, godown)
}

// SetDefault handles POST /godowns/:id/default
func (h *GodownHandler) SetDefault(c *gin.Context) {
	byID(&h.BaseHandler, c, "godown", h.godownService.SetDefault)
}

// Activate handles POST /godowns/:id/activate
func (h *GodownHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, "godown", h.godownService.Activate)
}

// Deactivate handles POST /godowns/:id/deactivate
func (h *GodownHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, "godown", h.godownService.Deactivate)
}

// Delete handles DELETE /godowns/:id
func (h *GodownHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "godown")
	if !ok {
		return
	}
	if err := h.godownService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
