package handler

import (
	tenantapp "github.com/erp/buildledger/internal/application/tenant"
	"github.com/gin-gonic/gin"
)

// TenantHandler handles tenant management. Its routes sit outside the
// tenant-scoped groups.
type TenantHandler struct {
	BaseHandler
	tenantService *tenantapp.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *tenantapp.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Create godoc
// @Summary  Create a tenant
// @Tags     tenants
// @Router   /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req tenantapp.CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, tenant)
}

// GetByID godoc
// @Summary  Get a tenant by ID
// @Tags     tenants
// @Router   /tenants/{id} [get]
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "tenant")
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tenant)
}

// List godoc
// @Summary  List tenants
// @Tags     tenants
// @Router   /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	var filter tenantapp.TenantListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.tenantService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @Summary  Update a tenant
// @Tags     tenants
// @Router   /tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "tenant")
	if !ok {
		return
	}
	var req tenantapp.UpdateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Activate godoc
// @Summary  Activate a tenant
// @Tags     tenants
// @Router   /tenants/{id}/activate [post]
func (h *TenantHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id", "tenant")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Deactivate godoc
// @Summary  Deactivate a tenant
// @Description Requests carrying a deactivated tenant are rejected with 403.
// @Tags     tenants
// @Router   /tenants/{id}/deactivate [post]
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "id", "tenant")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tenant)
}
