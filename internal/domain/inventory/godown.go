// Package inventory is the stock core: godowns, batches, the per-godown stock
// aggregate, the movement ledger, FIFO consumption, transfers and project allocations.
package inventory

import (
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Godown is a storage location (central store or site store)
type Godown struct {
	shared.TenantAggregateRoot
	Code      string        `gorm:"type:varchar(50);not null"`
	Name      string        `gorm:"type:varchar(200);not null"`
	Location  string        `gorm:"type:text"`
	IsDefault bool          `gorm:"not null;default:false"`
	Status    shared.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Godown) TableName() string {
	return "godowns"
}

// NewGodown creates an active godown
func NewGodown(tenantID uuid.UUID, code, name, location string) (*Godown, error) {
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	name, err = shared.ValidateName(name, 200)
	if err != nil {
		return nil, err
	}
	g := &Godown{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Location:            strings.TrimSpace(location),
		Status:              shared.StatusActive,
	}
	g.AddDomainEvent(NewGodownEvent(EventTypeGodownCreated, g))
	return g, nil
}

// Update changes name and location
func (g *Godown) Update(name, location string) error {
	name, err := shared.ValidateName(name, 200)
	if err != nil {
		return err
	}
	g.Name = name
	g.Location = strings.TrimSpace(location)
	g.Changed(NewGodownEvent(EventTypeGodownUpdated, g))
	return nil
}

// MarkDefault makes this the tenant's default godown. The repository clears the old one.
func (g *Godown) MarkDefault() error {
	if !g.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "An inactive godown cannot be the default")
	}
	g.IsDefault = true
	g.Changed(NewGodownEvent(EventTypeGodownUpdated, g))
	return nil
}

// Activate re-opens the godown
func (g *Godown) Activate() error {
	if g.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Godown is already active")
	}
	g.Status = shared.StatusActive
	g.Changed(NewGodownEvent(EventTypeGodownStatusChanged, g))
	return nil
}

// Deactivate closes the godown. hasStock must be false.
func (g *Godown) Deactivate(hasStock bool) error {
	if !g.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Godown is already inactive")
	}
	if hasStock {
		return shared.NewDomainError("INVALID_STATE", "Godown still holds stock")
	}
	if g.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "The default godown cannot be deactivated")
	}
	g.Status = shared.StatusInactive
	g.Changed(NewGodownEvent(EventTypeGodownStatusChanged, g))
	return nil
}

// IsActive reports whether stock can move in or out
func (g *Godown) IsActive() bool {
	return g.Status == shared.StatusActive
}
