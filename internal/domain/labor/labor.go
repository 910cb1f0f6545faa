// Package labor models site workers, their project assignments and daily attendance.
package labor

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Skill is the trade of a worker
type Skill string

const (
	SkillMason       Skill = "mason"
	SkillCarpenter   Skill = "carpenter"
	SkillHelper      Skill = "helper"
	SkillElectrician Skill = "electrician"
	SkillPlumber     Skill = "plumber"
	SkillBarBender   Skill = "bar_bender"
	SkillPainter     Skill = "painter"
	SkillSupervisor  Skill = "supervisor"
	SkillOther       Skill = "other"
)

// IsValid reports whether the skill is known
func (s Skill) IsValid() bool {
	switch s {
	case SkillMason, SkillCarpenter, SkillHelper, SkillElectrician, SkillPlumber,
		SkillBarBender, SkillPainter, SkillSupervisor, SkillOther:
		return true
	}
	return false
}

// Labor is a daily-wage site worker
type Labor struct {
	shared.TenantAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Phone        string          `gorm:"type:varchar(20)"`
	Skill        Skill           `gorm:"type:varchar(20);not null"`
	DailyWage    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OvertimeRate decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	JoinedOn     *time.Time      `gorm:"type:date"`
	Status       shared.Status   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Labor) TableName() string {
	return "labors"
}

// Details are the mutable fields of a worker
type Details struct {
	Name         string
	Phone        string
	Skill        Skill
	DailyWage    decimal.Decimal
	OvertimeRate decimal.Decimal
	JoinedOn     *time.Time
}

// NewLabor creates an active worker
func NewLabor(tenantID uuid.UUID, code string, d Details) (*Labor, error) {
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	l := &Labor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Status:              shared.StatusActive,
	}
	if err := l.apply(d); err != nil {
		return nil, err
	}
	l.AddDomainEvent(NewLaborEvent(EventTypeLaborCreated, l))
	return l, nil
}

// Update replaces the mutable fields. Past attendance keeps the rates it was marked with.
func (l *Labor) Update(d Details) error {
	if err := l.apply(d); err != nil {
		return err
	}
	l.Changed(NewLaborEvent(EventTypeLaborUpdated, l))
	return nil
}

func (l *Labor) apply(d Details) error {
	name, err := shared.ValidateName(d.Name, 200)
	if err != nil {
		return err
	}
	if !d.Skill.IsValid() {
		return shared.NewDomainErrorf("INVALID_SKILL", "Unknown skill %q", d.Skill)
	}
	if !d.DailyWage.IsPositive() {
		return shared.NewDomainError("INVALID_WAGE", "Daily wage must be positive")
	}
	if d.OvertimeRate.IsNegative() {
		return shared.NewDomainError("INVALID_WAGE", "Overtime rate cannot be negative")
	}
	l.Name = name
	l.Phone = strings.TrimSpace(d.Phone)
	l.Skill = d.Skill
	l.DailyWage = d.DailyWage.Round(2)
	l.OvertimeRate = d.OvertimeRate.Round(2)
	if d.JoinedOn != nil {
		j := shared.DateOnly(*d.JoinedOn)
		l.JoinedOn = &j
	} else {
		l.JoinedOn = nil
	}
	return nil
}

// Activate marks the worker available
func (l *Labor) Activate() error {
	if l.Status == shared.StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Labor is already active")
	}
	l.Status = shared.StatusActive
	l.Changed(NewLaborEvent(EventTypeLaborStatusChanged, l))
	return nil
}

// Deactivate marks the worker unavailable. Callers close open assignments.
func (l *Labor) Deactivate() error {
	if l.Status == shared.StatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Labor is already inactive")
	}
	l.Status = shared.StatusInactive
	l.Changed(NewLaborEvent(EventTypeLaborStatusChanged, l))
	return nil
}

// IsActive reports whether the worker can be assigned and marked
func (l *Labor) IsActive() bool {
	return l.Status == shared.StatusActive
}
