package handler

import (
	companyapp "github.com/erp/buildledger/internal/application/company"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *companyapp.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *companyapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req companyapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	company, err := h.companyService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, company)
}

// GetByID handles GET /companies/:id
func (h *CompanyHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "company")
	if !ok {
		return
	}
	company, err := h.companyService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, company)
}

// List handles GET /companies
func (h *CompanyHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter companyapp.CompanyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.companyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update handles PUT /companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "company")
	if !ok {
		return
	}
	var req companyapp.UpdateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	company, err := h.companyService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, company)
}

// Activate handles POST /companies/:id/activate
func (h *CompanyHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, "company", h.companyService.Activate)
}

// Deactivate handles POST /companies/:id/deactivate
func (h *CompanyHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, "company", h.companyService.Deactivate)
}

// Delete handles DELETE /companies/:id. Companies with projects cannot be deleted.
func (h *CompanyHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "company")
	if !ok {
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
