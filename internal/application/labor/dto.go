package labor

import (
	"time"

	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLaborRequest represents a request to register a worker
type CreateLaborRequest struct {
	Code         string          `json:"code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Phone        string          `json:"phone" binding:"omitempty,phone"`
	Skill        string          `json:"skill" binding:"required"`
	DailyWage    decimal.Decimal `json:"daily_wage" binding:"required,decimal_gt0"`
	OvertimeRate decimal.Decimal `json:"overtime_rate"`
	JoinedOn     *time.Time      `json:"joined_on"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// UpdateLaborRequest represents a request to update a worker
type UpdateLaborRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Phone        string          `json:"phone" binding:"omitempty,phone"`
	Skill        string          `json:"skill" binding:"required"`
	DailyWage    decimal.Decimal `json:"daily_wage" binding:"required,decimal_gt0"`
	OvertimeRate decimal.Decimal `json:"overtime_rate"`
	JoinedOn     *time.Time      `json:"joined_on"`
}

// LaborListFilter represents filter options for the worker list
type LaborListFilter struct {
	Search   string `form:"search"`
	Skill    string `form:"skill"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LaborResponse represents a worker in API responses
type LaborResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone,omitempty"`
	Skill        string          `json:"skill"`
	DailyWage    decimal.Decimal `json:"daily_wage"`
	OvertimeRate decimal.Decimal `json:"overtime_rate"`
	JoinedOn     *time.Time      `json:"joined_on,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToLaborResponse converts a domain Labor to LaborResponse
func ToLaborResponse(l *labor.Labor) LaborResponse {
	return LaborResponse{
		ID:           l.ID,
		Code:         l.Code,
		Name:         l.Name,
		Phone:        l.Phone,
		Skill:        string(l.Skill),
		DailyWage:    l.DailyWage,
		OvertimeRate: l.OvertimeRate,
		JoinedOn:     l.JoinedOn,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		Version:      l.Version,
	}
}

// AssignRequest places a worker on a project
type AssignRequest struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
	FromDate  time.Time `json:"from_date" binding:"required"`
	Remarks   string    `json:"remarks" binding:"max=500"`
}

// ReleaseRequest closes the worker's open assignment
type ReleaseRequest struct {
	ToDate time.Time `json:"to_date" binding:"required"`
}

// AssignmentResponse represents an assignment in API responses
type AssignmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	LaborID   uuid.UUID  `json:"labor_id"`
	ProjectID uuid.UUID  `json:"project_id"`
	FromDate  time.Time  `json:"from_date"`
	ToDate    *time.Time `json:"to_date,omitempty"`
	Open      bool       `json:"open"`
	Remarks   string     `json:"remarks,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToAssignmentResponse converts a domain Assignment to AssignmentResponse
func ToAssignmentResponse(a *labor.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		LaborID:   a.LaborID,
		ProjectID: a.ProjectID,
		FromDate:  a.FromDate,
		ToDate:    a.ToDate,
		Open:      a.IsOpen(),
		Remarks:   a.Remarks,
		CreatedAt: a.CreatedAt,
	}
}

func toAssignmentResponses(as []labor.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, len(as))
	for i := range as {
		out[i] = ToAssignmentResponse(&as[i])
	}
	return out
}

// MarkAttendanceRequest marks one worker for one day
type MarkAttendanceRequest struct {
	LaborID       uuid.UUID       `json:"labor_id" binding:"required"`
	ProjectID     uuid.UUID       `json:"project_id" binding:"required"`
	WorkDate      time.Time       `json:"work_date" binding:"required"`
	Status        string          `json:"status" binding:"required,oneof=present absent half_day leave"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Remarks       string          `json:"remarks" binding:"max=500"`
	CreatedBy     *uuid.UUID      `json:"-"`
}

// BulkAttendanceLine is one worker in a bulk mark
type BulkAttendanceLine struct {
	LaborID       uuid.UUID       `json:"labor_id" binding:"required"`
	Status        string          `json:"status" binding:"required,oneof=present absent half_day leave"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Remarks       string          `json:"remarks" binding:"max=500"`
}

// BulkMarkRequest marks many workers on one project for one day
type BulkMarkRequest struct {
	ProjectID uuid.UUID            `json:"project_id" binding:"required"`
	WorkDate  time.Time            `json:"work_date" binding:"required"`
	Lines     []BulkAttendanceLine `json:"lines" binding:"required,min=1,dive"`
	CreatedBy *uuid.UUID           `json:"-"`
}

// BulkMarkResponse reports how many rows were written
type BulkMarkResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// UpdateAttendanceRequest amends a marked day
type UpdateAttendanceRequest struct {
	Status        string          `json:"status" binding:"required,oneof=present absent half_day leave"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Remarks       string          `json:"remarks" binding:"max=500"`
}

// AttendanceListFilter represents filter options for attendance
type AttendanceListFilter struct {
	ProjectID *uuid.UUID `form:"-"`
	LaborID   *uuid.UUID `form:"-"`
	Status    string     `form:"status" binding:"omitempty,oneof=present absent half_day leave"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PeriodFilter narrows a summary to an optional project and date range
type PeriodFilter struct {
	ProjectID *uuid.UUID `form:"-"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

func (f PeriodFilter) dateRange() shared.DateRange {
	return toDateRange(f.From, f.To)
}

func toDateRange(from, to *time.Time) shared.DateRange {
	var r shared.DateRange
	if from != nil {
		r.From = shared.DateOnly(*from)
	}
	if to != nil {
		r.To = shared.DateOnly(*to)
	}
	return r
}

// AttendanceResponse represents a marked day in API responses
type AttendanceResponse struct {
	ID            uuid.UUID       `json:"id"`
	LaborID       uuid.UUID       `json:"labor_id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	WorkDate      time.Time       `json:"work_date"`
	Status        string          `json:"status"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	DailyWage     decimal.Decimal `json:"daily_wage"`
	OvertimeRate  decimal.Decimal `json:"overtime_rate"`
	WageAmount    decimal.Decimal `json:"wage_amount"`
	Remarks       string          `json:"remarks,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToAttendanceResponse converts a domain Attendance to AttendanceResponse
func ToAttendanceResponse(a *labor.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		LaborID:       a.LaborID,
		ProjectID:     a.ProjectID,
		WorkDate:      a.WorkDate,
		Status:        string(a.Status),
		OvertimeHours: a.OvertimeHours,
		DailyWage:     a.DailyWage,
		OvertimeRate:  a.OvertimeRate,
		WageAmount:    a.WageAmount,
		Remarks:       a.Remarks,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		Version:       a.Version,
	}
}

// WageSummaryResponse lists per-worker totals for a period
type WageSummaryResponse struct {
	ProjectID *uuid.UUID          `json:"project_id,omitempty"`
	From      *time.Time          `json:"from,omitempty"`
	To        *time.Time          `json:"to,omitempty"`
	Workers   []labor.WageSummary `json:"workers"`
	TotalWage decimal.Decimal     `json:"total_wage"`
}

// LaborCostResponse is the wage cost of one project
type LaborCostResponse struct {
	ProjectID uuid.UUID       `json:"project_id"`
	From      *time.Time      `json:"from,omitempty"`
	To        *time.Time      `json:"to,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}
