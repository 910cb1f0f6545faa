package labor

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeLabor      = "Labor"
	AggregateTypeAttendance = "Attendance"
)

// Event types
const (
	EventTypeLaborCreated       = "LaborCreated"
	EventTypeLaborUpdated       = "LaborUpdated"
	EventTypeLaborStatusChanged = "LaborStatusChanged"
	EventTypeLaborAssigned      = "LaborAssigned"
	EventTypeLaborReleased      = "LaborReleased"
	EventTypeAttendanceMarked   = "AttendanceMarked"
	EventTypeAttendanceUpdated  = "AttendanceUpdated"
	EventTypeAttendanceDeleted  = "AttendanceDeleted"
)

// LaborEvent is raised on worker master-data changes
type LaborEvent struct {
	shared.BaseDomainEvent
	Code   string        `json:"code"`
	Status shared.Status `json:"status"`
}

// NewLaborEvent builds a LaborEvent
func NewLaborEvent(eventType string, l *Labor) *LaborEvent {
	return &LaborEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeLabor, l.ID, l.TenantID),
		Code:            l.Code,
		Status:          l.Status,
	}
}

// AssignmentEvent is raised when a worker joins or leaves a project
type AssignmentEvent struct {
	shared.BaseDomainEvent
	AssignmentID uuid.UUID `json:"assignment_id"`
	ProjectID    uuid.UUID `json:"project_id"`
}

// NewAssignmentEvent builds an AssignmentEvent
func NewAssignmentEvent(eventType string, a *Assignment) *AssignmentEvent {
	return &AssignmentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeLabor, a.LaborID, a.TenantID),
		AssignmentID:    a.ID,
		ProjectID:       a.ProjectID,
	}
}

// AttendanceEvent is raised when wages accrue or change
type AttendanceEvent struct {
	shared.BaseDomainEvent
	LaborID    uuid.UUID        `json:"labor_id"`
	ProjectID  uuid.UUID        `json:"project_id"`
	WorkDate   time.Time        `json:"work_date"`
	Status     AttendanceStatus `json:"status"`
	WageAmount decimal.Decimal  `json:"wage_amount"`
}

// NewAttendanceEvent builds an AttendanceEvent
func NewAttendanceEvent(eventType string, a *Attendance) *AttendanceEvent {
	return &AttendanceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeAttendance, a.ID, a.TenantID),
		LaborID:         a.LaborID,
		ProjectID:       a.ProjectID,
		WorkDate:        a.WorkDate,
		Status:          a.Status,
		WageAmount:      a.WageAmount,
	}
}
