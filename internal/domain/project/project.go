// Package project models construction projects and their lifecycle.
package project

import (
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a project
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusPlanned: {StatusActive, StatusCancelled},
	StatusActive:  {StatusOnHold, StatusCompleted, StatusCancelled},
	StatusOnHold:  {StatusActive, StatusCancelled},
}

// CanTransitionTo reports whether s may move to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DefaultRetentionPercent is withheld from every bill unless overridden
var DefaultRetentionPercent = decimal.NewFromInt(5)

var maxRetentionPercent = decimal.NewFromInt(20)

// Project is a construction site/contract executed for a company
type Project struct {
	shared.TenantAggregateRoot
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code             string          `gorm:"type:varchar(50);not null"`
	Name             string          `gorm:"type:varchar(200);not null"`
	SiteAddress      string          `gorm:"type:text"`
	StartDate        *time.Time      `gorm:"type:date"`
	EndDate          *time.Time      `gorm:"type:date"`
	Budget           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ContractValue    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RetentionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'planned'"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// Details are the mutable fields of a project
type Details struct {
	Name             string
	SiteAddress      string
	StartDate        *time.Time
	EndDate          *time.Time
	Budget           decimal.Decimal
	ContractValue    decimal.Decimal
	RetentionPercent *decimal.Decimal
}

// NewProject creates a planned project
func NewProject(tenantID, companyID uuid.UUID, code string, d Details) (*Project, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company is required")
	}
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	p := &Project{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CompanyID:           companyID,
		Code:                code,
		RetentionPercent:    DefaultRetentionPercent,
		Status:              StatusPlanned,
	}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProjectEvent(EventTypeProjectCreated, p, ""))
	return p, nil
}

// Update replaces the mutable fields. Closed projects cannot be edited.
func (p *Project) Update(d Details) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot update a %s project", p.Status)
	}
	if err := p.apply(d); err != nil {
		return err
	}
	p.Changed(NewProjectEvent(EventTypeProjectUpdated, p, ""))
	return nil
}

func (p *Project) apply(d Details) error {
	name, err := shared.ValidateName(d.Name, 200)
	if err != nil {
		return err
	}
	if d.Budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	if d.ContractValue.IsNegative() {
		return shared.NewDomainError("INVALID_CONTRACT_VALUE", "Contract value cannot be negative")
	}
	if d.StartDate != nil && d.EndDate != nil && shared.DateOnly(*d.EndDate).Before(shared.DateOnly(*d.StartDate)) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	if d.RetentionPercent != nil {
		r := *d.RetentionPercent
		if r.IsNegative() || r.GreaterThan(maxRetentionPercent) {
			return shared.NewDomainError("INVALID_RETENTION", "Retention percent must be between 0 and 20")
		}
		p.RetentionPercent = r
	}
	p.Name = name
	p.SiteAddress = strings.TrimSpace(d.SiteAddress)
	p.StartDate = dateOnlyPtr(d.StartDate)
	p.EndDate = dateOnlyPtr(d.EndDate)
	p.Budget = d.Budget.Round(2)
	p.ContractValue = d.ContractValue.Round(2)
	return nil
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.DateOnly(*t)
	return &d
}

func (p *Project) transition(next Status) error {
	if !p.Status.CanTransitionTo(next) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot move project from %s to %s", p.Status, next)
	}
	prev := p.Status
	p.Status = next
	p.Changed(NewProjectEvent(EventTypeProjectStatusChanged, p, prev))
	return nil
}

// Start moves a planned project to active. Start date defaults to today.
func (p *Project) Start() error {
	if err := p.transition(StatusActive); err != nil {
		return err
	}
	if p.StartDate == nil {
		today := shared.DateOnly(time.Now())
		p.StartDate = &today
	}
	return nil
}

// Hold pauses an active project
func (p *Project) Hold() error {
	return p.transition(StatusOnHold)
}

// Resume reactivates a project on hold
func (p *Project) Resume() error {
	if p.Status != StatusOnHold {
		return shared.NewDomainErrorf("INVALID_STATE", "Only projects on hold can be resumed, current status is %s", p.Status)
	}
	return p.transition(StatusActive)
}

// Complete closes an active project
func (p *Project) Complete() error {
	return p.transition(StatusCompleted)
}

// Cancel abandons a project that is not yet closed
func (p *Project) Cancel() error {
	return p.transition(StatusCancelled)
}

// AcceptsAllocations reports whether material may be issued to the project
func (p *Project) AcceptsAllocations() bool {
	return p.Status == StatusPlanned || p.Status == StatusActive
}

// AcceptsAttendance reports whether attendance may be recorded on the project
func (p *Project) AcceptsAttendance() bool {
	return p.Status == StatusActive
}

// AcceptsAssignments reports whether labor may be assigned to the project
func (p *Project) AcceptsAssignments() bool {
	return p.Status == StatusPlanned || p.Status == StatusActive
}

// AcceptsReversals reports whether allocations can still be reversed
func (p *Project) AcceptsReversals() bool {
	return !p.Status.IsTerminal()
}

// CanBeDeleted reports whether the project is still in planning
func (p *Project) CanBeDeleted() bool {
	return p.Status == StatusPlanned
}

// AggregateTypeProject is the aggregate type for project events
const AggregateTypeProject = "Project"

// Event types
const (
	EventTypeProjectCreated       = "ProjectCreated"
	EventTypeProjectUpdated       = "ProjectUpdated"
	EventTypeProjectStatusChanged = "ProjectStatusChanged"
)

// ProjectEvent is raised on project changes
type ProjectEvent struct {
	shared.BaseDomainEvent
	CompanyID      uuid.UUID `json:"company_id"`
	Code           string    `json:"code"`
	Status         Status    `json:"status"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
}

// NewProjectEvent builds a ProjectEvent
func NewProjectEvent(eventType string, p *Project, prev Status) *ProjectEvent {
	return &ProjectEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProject, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		Code:            p.Code,
		Status:          p.Status,
		PreviousStatus:  prev,
	}
}
