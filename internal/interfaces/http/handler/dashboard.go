package handler

import (
	reportapp "github.com/erp/buildledger/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the tenant dashboard
type DashboardHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *reportapp.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// Get godoc
// @Summary      Tenant dashboard
// @Description  Project, workforce, stock and receivable totals. Served from cache until a relevant change evicts it.
// @Tags         dashboard
// @Router       /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dashboard)
}
