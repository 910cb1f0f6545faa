package handler

import (
	inventoryapp "github.com/erp/buildledger/internal/application/inventory"
	laborapp "github.com/erp/buildledger/internal/application/labor"
	projectapp "github.com/erp/buildledger/internal/application/project"
	reportapp "github.com/erp/buildledger/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project endpoints, including the per-project cost
// views that read from the labor, allocation and report services.
type ProjectHandler struct {
	BaseHandler
	projectService    *projectapp.ProjectService
	attendanceService *laborapp.AttendanceService
	allocationService *inventoryapp.AllocationService
	reportService     *reportapp.ReportService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	projectService *projectapp.ProjectService,
	attendanceService *laborapp.AttendanceService,
	allocationService *inventoryapp.AllocationService,
	reportService *reportapp.ReportService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		attendanceService: attendanceService,
		allocationService: allocationService,
		reportService:     reportService,
	}
}

// Create godoc
// @Summary  Create a project under a company
// @Tags     projects
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req projectapp.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	project, err := h.projectService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, project)
}

// GetByID godoc
// @Summary  Get a project
// @Tags     projects
// @Router   /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.GetByID)
}

// List godoc
// @Summary  List projects
// @Tags     projects
// @Param    company_id query string false "Company ID" format(uuid)
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter projectapp.ProjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"company_id": &filter.CompanyID}) {
		return
	}
	page, err := h.projectService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @Summary  Update a project
// @Tags     projects
// @Router   /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}
	var req projectapp.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	project, err := h.projectService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// Start moves a planned project to active
func (h *ProjectHandler) Start(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.Start)
}

// Hold puts an active project on hold
func (h *ProjectHandler) Hold(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.Hold)
}

// Resume reactivates a project on hold
func (h *ProjectHandler) Resume(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.Resume)
}

// Complete closes an active project
func (h *ProjectHandler) Complete(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.Complete)
}

// Cancel abandons a project that has not completed
func (h *ProjectHandler) Cancel(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.projectService.Cancel)
}

// Delete godoc
// @Summary  Delete a planned project with no recorded activity
// @Tags     projects
// @Router   /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// CostSheet godoc
// @Summary  Labor, material and billing totals of one project
// @Tags     projects
// @Router   /projects/{id}/cost-sheet [get]
func (h *ProjectHandler) CostSheet(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.reportService.ProjectCostSheet)
}

// Materials godoc
// @Summary  Net material consumption of one project
// @Tags     projects
// @Router   /projects/{id}/materials [get]
func (h *ProjectHandler) Materials(c *gin.Context) {
	byID(&h.BaseHandler, c, "project", h.allocationService.ProjectMaterialConsumption)
}

// LaborCost godoc
// @Summary  Wage cost of one project, optionally within from/to dates
// @Tags     projects
// @Param    from query string false "From date" format(date)
// @Param    to   query string false "To date"   format(date)
// @Router   /projects/{id}/labor-cost [get]
func (h *ProjectHandler) LaborCost(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}
	var period laborapp.PeriodFilter
	if !h.bindQuery(c, &period) {
		return
	}
	cost, err := h.attendanceService.ProjectLaborCost(c.Request.Context(), tenantID, id, period.From, period.To)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cost)
}
