// Package tenant holds the tenant aggregate. A tenant is one contracting
// firm; every other record in the system belongs to exactly one tenant.
package tenant

import (
	"regexp"
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
)

// Status represents the status of a tenant
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var tenantCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,31}$`)

// Tenant is the aggregate root for a contracting firm
type Tenant struct {
	shared.BaseAggregateRoot
	Code      string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(200);not null"`
	StateCode string `gorm:"type:varchar(2);not null"`
	GSTIN     string `gorm:"column:gstin;type:varchar(15)"`
	Status    Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant
func NewTenant(code, name, stateCode, gstin string) (*Tenant, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !tenantCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Tenant code must be 2-32 lowercase letters, digits or dashes")
	}
	name, err := shared.ValidateName(name, 200)
	if err != nil {
		return nil, err
	}
	if stateCode == "" {
		return nil, shared.NewDomainError("INVALID_STATE_CODE", "State code is required")
	}
	gstin = shared.NormalizeGSTIN(gstin)
	if err := shared.ValidateGSTDetails(gstin, stateCode); err != nil {
		return nil, err
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		StateCode:         stateCode,
		GSTIN:             gstin,
		Status:            StatusActive,
	}
	t.AddDomainEvent(NewTenantEvent(EventTypeTenantCreated, t))
	return t, nil
}

// Update changes the descriptive fields of the tenant
func (t *Tenant) Update(name, stateCode, gstin string) error {
	name, err := shared.ValidateName(name, 200)
	if err != nil {
		return err
	}
	if stateCode == "" {
		return shared.NewDomainError("INVALID_STATE_CODE", "State code is required")
	}
	gstin = shared.NormalizeGSTIN(gstin)
	if err := shared.ValidateGSTDetails(gstin, stateCode); err != nil {
		return err
	}
	t.Name = name
	t.StateCode = stateCode
	t.GSTIN = gstin
	t.Changed(NewTenantEvent(EventTypeTenantUpdated, t))
	return nil
}

// Activate re-enables a tenant
func (t *Tenant) Activate() error {
	if t.Status == StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already active")
	}
	t.Status = StatusActive
	t.Changed(NewTenantEvent(EventTypeTenantActivated, t))
	return nil
}

// Deactivate blocks all requests for the tenant
func (t *Tenant) Deactivate() error {
	if t.Status == StatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already inactive")
	}
	t.Status = StatusInactive
	t.Changed(NewTenantEvent(EventTypeTenantDeactivated, t))
	return nil
}

// IsActive returns true when the tenant may use the system
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// AggregateTypeTenant is the aggregate type for tenant events
const AggregateTypeTenant = "Tenant"

// Event types
const (
	EventTypeTenantCreated     = "TenantCreated"
	EventTypeTenantUpdated     = "TenantUpdated"
	EventTypeTenantActivated   = "TenantActivated"
	EventTypeTenantDeactivated = "TenantDeactivated"
)

// TenantEvent is raised on every tenant lifecycle change
type TenantEvent struct {
	shared.BaseDomainEvent
	Code   string `json:"code"`
	Status Status `json:"status"`
}

// NewTenantEvent builds a TenantEvent of the given type
func NewTenantEvent(eventType string, t *Tenant) *TenantEvent {
	return &TenantEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTenant, t.ID, t.ID),
		Code:            t.Code,
		Status:          t.Status,
	}
}
