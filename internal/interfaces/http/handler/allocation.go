package handler

import (
	inventoryapp "github.com/erp/buildledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AllocationHandler handles material issued from godowns to projects
type AllocationHandler struct {
	BaseHandler
	allocationService *inventoryapp.AllocationService
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(allocationService *inventoryapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// Allocate handles POST /allocations
func (h *AllocationHandler) Allocate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req inventoryapp.AllocateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	allocation, err := h.allocationService.Allocate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, allocation)
}

// GetByID handles GET /allocations/:id
func (h *AllocationHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "allocation", h.allocationService.GetByID)
}

// List handles GET /allocations
func (h *AllocationHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventoryapp.AllocationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"project_id": &filter.ProjectID,
		"godown_id":  &filter.GodownID,
	}) {
		return
	}
	page, err := h.allocationService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Reverse handles POST /allocations/:id/reverse. Returned quantities go back
// to the batches they were taken from.
func (h *AllocationHandler) Reverse(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "allocation")
	if !ok {
		return
	}
	var req inventoryapp.ReverseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	allocation, err := h.allocationService.Reverse(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, allocation)
}
