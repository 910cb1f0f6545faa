package handler

import (
	laborapp "github.com/erp/buildledger/internal/application/labor"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LaborHandler handles worker master data and project assignments
type LaborHandler struct {
	BaseHandler
	laborService *laborapp.LaborService
}

// NewLaborHandler creates a new labor handler
func NewLaborHandler(laborService *laborapp.LaborService) *LaborHandler {
	return &LaborHandler{laborService: laborService}
}

// Create handles POST /labor
func (h *LaborHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req laborapp.CreateLaborRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	worker, err := h.laborService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, worker)
}

// GetByID handles GET /labor/:id
func (h *LaborHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "labor", h.laborService.GetByID)
}

// List handles GET /labor
func (h *LaborHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter laborapp.LaborListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.laborService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update handles PUT /labor/:id
func (h *LaborHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "labor")
	if !ok {
		return
	}
	var req laborapp.UpdateLaborRequest
	if !h.bindJSON(c, &req) {
		return
	}
	worker, err := h.laborService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, worker)
}

// Activate handles POST /labor/:id/activate
func (h *LaborHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, "labor", h.laborService.Activate)
}

// Deactivate handles POST /labor/:id/deactivate. A worker with an open
// assignment must be released first.
func (h *LaborHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, "labor", h.laborService.Deactivate)
}

// Delete handles DELETE /labor/:id
func (h *LaborHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "labor")
	if !ok {
		return
	}
	if err := h.laborService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Assign handles POST /labor/:id/assign
func (h *LaborHandler) Assign(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "labor")
	if !ok {
		return
	}
	var req laborapp.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	assignment, err := h.laborService.Assign(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, assignment)
}

// Release handles POST /labor/:id/release
func (h *LaborHandler) Release(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "labor")
	if !ok {
		return
	}
	var req laborapp.ReleaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	assignment, err := h.laborService.Release(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, assignment)
}

// Assignments handles GET /labor/:id/assignments
func (h *LaborHandler) Assignments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "labor")
	if !ok {
		return
	}
	assignments, err := h.laborService.AssignmentsByLabor(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, assignments)
}

// ProjectAssignments handles GET /labor/assignments?project_id=&open_only=
func (h *LaborHandler) ProjectAssignments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var projectID *uuid.UUID
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"project_id": &projectID}) {
		return
	}
	if projectID == nil {
		h.BadRequest(c, "project_id is required")
		return
	}
	openOnly, ok := h.queryBool(c, "open_only")
	if !ok {
		return
	}
	assignments, err := h.laborService.AssignmentsByProject(c.Request.Context(), tenantID, *projectID, openOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, assignments)
}
