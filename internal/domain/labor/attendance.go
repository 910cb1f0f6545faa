package labor

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AttendanceStatus is the day status of a worker
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half_day"
	AttendanceLeave   AttendanceStatus = "leave"
)

// IsValid reports whether the status is known
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay, AttendanceLeave:
		return true
	}
	return false
}

// IsWorked reports whether the worker was on site
func (s AttendanceStatus) IsWorked() bool {
	return s == AttendancePresent || s == AttendanceHalfDay
}

// MaxOvertimeHours caps overtime for a single day
var MaxOvertimeHours = decimal.NewFromInt(12)

var half = decimal.NewFromFloat(0.5)

// Attendance is one worker-day on a project. Rates are snapshotted so later
// wage revisions do not rewrite history.
type Attendance struct {
	shared.TenantAggregateRoot
	LaborID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProjectID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	WorkDate      time.Time        `gorm:"type:date;not null;index"`
	Status        AttendanceStatus `gorm:"type:varchar(20);not null"`
	OvertimeHours decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	DailyWage     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	OvertimeRate  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	WageAmount    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Remarks       string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Attendance) TableName() string {
	return "attendance"
}

// ComputeWage returns the day's earning for status and overtime at the given rates
func ComputeWage(status AttendanceStatus, dailyWage, overtimeRate, overtimeHours decimal.Decimal) decimal.Decimal {
	var base decimal.Decimal
	switch status {
	case AttendancePresent:
		base = dailyWage
	case AttendanceHalfDay:
		base = dailyWage.Mul(half)
	default:
		return decimal.Zero
	}
	return base.Add(overtimeRate.Mul(overtimeHours)).Round(2)
}

// NewAttendance marks a worker for a day. today bounds the work date.
func NewAttendance(l *Labor, projectID uuid.UUID, workDate time.Time, status AttendanceStatus, otHours decimal.Decimal, remarks string, today time.Time) (*Attendance, error) {
	if !l.IsActive() {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Labor %s is inactive", l.Code)
	}
	workDate = shared.DateOnly(workDate)
	if workDate.After(shared.DateOnly(today)) {
		return nil, shared.NewDomainError("INVALID_DATE", "Attendance cannot be marked for a future date")
	}
	a := &Attendance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(l.TenantID),
		LaborID:             l.ID,
		ProjectID:           projectID,
		WorkDate:            workDate,
		DailyWage:           l.DailyWage,
		OvertimeRate:        l.OvertimeRate,
	}
	if err := a.set(status, otHours, remarks); err != nil {
		return nil, err
	}
	a.AddDomainEvent(NewAttendanceEvent(EventTypeAttendanceMarked, a))
	return a, nil
}

// Amend changes status, overtime and remarks and recomputes the wage
func (a *Attendance) Amend(status AttendanceStatus, otHours decimal.Decimal, remarks string) error {
	if err := a.set(status, otHours, remarks); err != nil {
		return err
	}
	a.Changed(NewAttendanceEvent(EventTypeAttendanceUpdated, a))
	return nil
}

func (a *Attendance) set(status AttendanceStatus, otHours decimal.Decimal, remarks string) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Unknown attendance status %q", status)
	}
	if otHours.IsNegative() || otHours.GreaterThan(MaxOvertimeHours) {
		return shared.NewDomainError("INVALID_OVERTIME", "Overtime hours must be between 0 and 12")
	}
	if !status.IsWorked() {
		otHours = decimal.Zero
	}
	a.Status = status
	a.OvertimeHours = otHours.Round(2)
	a.Remarks = strings.TrimSpace(remarks)
	a.WageAmount = ComputeWage(status, a.DailyWage, a.OvertimeRate, a.OvertimeHours)
	return nil
}

// WageSummary aggregates attendance for one worker over a period
type WageSummary struct {
	LaborID       uuid.UUID       `json:"labor_id"`
	LaborCode     string          `json:"labor_code"`
	LaborName     string          `json:"labor_name"`
	PresentDays   int64           `json:"present_days"`
	HalfDays      int64           `json:"half_days"`
	AbsentDays    int64           `json:"absent_days"`
	LeaveDays     int64           `json:"leave_days"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	TotalWage     decimal.Decimal `json:"total_wage"`
}

// EffectiveDays counts half days as 0.5
func (s WageSummary) EffectiveDays() decimal.Decimal {
	return decimal.NewFromInt(s.PresentDays).Add(decimal.NewFromInt(s.HalfDays).Mul(half))
}
