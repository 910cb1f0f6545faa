// Package company models the client companies that award construction contracts.
package company

import (
	"net/mail"
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Company is a contracting client. Projects and bills hang off it.
type Company struct {
	shared.TenantAggregateRoot
	Code          string        `gorm:"type:varchar(50);not null"`
	Name          string        `gorm:"type:varchar(200);not null"`
	GSTIN         string        `gorm:"column:gstin;type:varchar(15)"`
	StateCode     string        `gorm:"type:varchar(2)"`
	Address       string        `gorm:"type:text"`
	ContactPerson string        `gorm:"type:varchar(100)"`
	Phone         string        `gorm:"type:varchar(20)"`
	Email         string        `gorm:"type:varchar(200)"`
	Status        shared.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// Details are the mutable descriptive fields of a company
type Details struct {
	Name          string
	GSTIN         string
	StateCode     string
	Address       string
	ContactPerson string
	Phone         string
	Email         string
}

// NewCompany creates an active company
func NewCompany(tenantID uuid.UUID, code string, d Details) (*Company, error) {
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	c := &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Status:              shared.StatusActive,
	}
	if err := c.apply(d); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCompanyEvent(EventTypeCompanyCreated, c))
	return c, nil
}

// Update replaces the descriptive fields
func (c *Company) Update(d Details) error {
	if err := c.apply(d); err != nil {
		return err
	}
	c.Changed(NewCompanyEvent(EventTypeCompanyUpdated, c))
	return nil
}

func (c *Company) apply(d Details) error {
	name, err := shared.ValidateName(d.Name, 200)
	if err != nil {
		return err
	}
	gstin := shared.NormalizeGSTIN(d.GSTIN)
	stateCode := strings.TrimSpace(d.StateCode)
	if stateCode == "" && gstin != "" {
		stateCode = shared.StateCodeFromGSTIN(gstin)
	}
	if err := shared.ValidateGSTDetails(gstin, stateCode); err != nil {
		return err
	}
	email := strings.TrimSpace(d.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Email address is invalid")
		}
	}
	c.Name = name
	c.GSTIN = gstin
	c.StateCode = stateCode
	c.Address = strings.TrimSpace(d.Address)
	c.ContactPerson = strings.TrimSpace(d.ContactPerson)
	c.Phone = strings.TrimSpace(d.Phone)
	c.Email = email
	return nil
}

// Activate marks the company active
func (c *Company) Activate() error {
	if c.Status == shared.StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Company is already active")
	}
	c.Status = shared.StatusActive
	c.Changed(NewCompanyEvent(EventTypeCompanyStatusChanged, c))
	return nil
}

// Deactivate marks the company inactive. No new projects can be created for it.
func (c *Company) Deactivate() error {
	if c.Status == shared.StatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Company is already inactive")
	}
	c.Status = shared.StatusInactive
	c.Changed(NewCompanyEvent(EventTypeCompanyStatusChanged, c))
	return nil
}

// IsActive reports whether the company accepts new projects
func (c *Company) IsActive() bool {
	return c.Status == shared.StatusActive
}

// AggregateTypeCompany is the aggregate type for company events
const AggregateTypeCompany = "Company"

// Event types
const (
	EventTypeCompanyCreated       = "CompanyCreated"
	EventTypeCompanyUpdated       = "CompanyUpdated"
	EventTypeCompanyStatusChanged = "CompanyStatusChanged"
	EventTypeCompanyDeleted       = "CompanyDeleted"
)

// CompanyEvent is raised on company lifecycle changes
type CompanyEvent struct {
	shared.BaseDomainEvent
	Code   string        `json:"code"`
	Status shared.Status `json:"status"`
}

// NewCompanyEvent builds a CompanyEvent
func NewCompanyEvent(eventType string, c *Company) *CompanyEvent {
	return &CompanyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCompany, c.ID, c.TenantID),
		Code:            c.Code,
		Status:          c.Status,
	}
}
