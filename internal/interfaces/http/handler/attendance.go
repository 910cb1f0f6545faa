package handler

import (
	laborapp "github.com/erp/buildledger/internal/application/labor"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttendanceHandler handles daily attendance and wage summaries
type AttendanceHandler struct {
	BaseHandler
	attendanceService *laborapp.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *laborapp.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Mark godoc
// @Summary      Mark one worker for one day
// @Description  Marking the same worker, project and day again updates the row and returns 200 instead of 201.
// @Tags         attendance
// @Router       /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req laborapp.MarkAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	attendance, created, err := h.attendanceService.Mark(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if created {
		h.Created(c, attendance)
		return
	}
	h.Success(c, attendance)
}

// BulkMark godoc
// @Summary  Mark many workers of one project for one day
// @Tags     attendance
// @Router   /attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req laborapp.BulkMarkRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	result, err := h.attendanceService.BulkMark(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByID godoc
// @Summary  Get an attendance row
// @Tags     attendance
// @Router   /attendance/{id} [get]
func (h *AttendanceHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "attendance", h.attendanceService.GetByID)
}

// List godoc
// @Summary  List attendance
// @Tags     attendance
// @Param    project_id query string false "Project ID" format(uuid)
// @Param    labor_id   query string false "Labor ID"   format(uuid)
// @Router   /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter laborapp.AttendanceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"project_id": &filter.ProjectID,
		"labor_id":   &filter.LaborID,
	}) {
		return
	}
	page, err := h.attendanceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @Summary  Amend an attendance row
// @Tags     attendance
// @Router   /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "attendance")
	if !ok {
		return
	}
	var req laborapp.UpdateAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	attendance, err := h.attendanceService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, attendance)
}

// Delete godoc
// @Summary  Delete an attendance row
// @Tags     attendance
// @Router   /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "attendance")
	if !ok {
		return
	}
	if err := h.attendanceService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// WageSummary godoc
// @Summary  Per-worker wages over a period
// @Tags     attendance
// @Param    project_id query string false "Project ID" format(uuid)
// @Param    from       query string false "From date"  format(date)
// @Param    to         query string false "To date"    format(date)
// @Router   /attendance/wage-summary [get]
func (h *AttendanceHandler) WageSummary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter laborapp.PeriodFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"project_id": &filter.ProjectID}) {
		return
	}
	summary, err := h.attendanceService.WageSummary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}
