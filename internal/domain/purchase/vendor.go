// Package purchase covers vendors, purchase orders and goods receipts.
package purchase

import (
	"net/mail"
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Vendor supplies materials
type Vendor struct {
	shared.TenantAggregateRoot
	Code      string        `gorm:"type:varchar(50);not null"`
	Name      string        `gorm:"type:varchar(200);not null"`
	GSTIN     string        `gorm:"column:gstin;type:varchar(15)"`
	StateCode string        `gorm:"type:varchar(2)"`
	Phone     string        `gorm:"type:varchar(20)"`
	Email     string        `gorm:"type:varchar(200)"`
	Address   string        `gorm:"type:text"`
	Status    shared.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// VendorDetails are the mutable fields of a vendor
type VendorDetails struct {
	Name      string
	GSTIN     string
	StateCode string
	Phone     string
	Email     string
	Address   string
}

// NewVendor creates an active vendor
func NewVendor(tenantID uuid.UUID, code string, d VendorDetails) (*Vendor, error) {
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	v := &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Status:              shared.StatusActive,
	}
	if err := v.apply(d); err != nil {
		return nil, err
	}
	v.AddDomainEvent(NewVendorEvent(EventTypeVendorCreated, v))
	return v, nil
}

// Update replaces the mutable fields
func (v *Vendor) Update(d VendorDetails) error {
	if err := v.apply(d); err != nil {
		return err
	}
	v.Changed(NewVendorEvent(EventTypeVendorUpdated, v))
	return nil
}

func (v *Vendor) apply(d VendorDetails) error {
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
	v.Name = name
	v.GSTIN = gstin
	v.StateCode = stateCode
	v.Phone = strings.TrimSpace(d.Phone)
	v.Email = email
	v.Address = strings.TrimSpace(d.Address)
	return nil
}

// Activate re-enables ordering from the vendor
func (v *Vendor) Activate() error {
	if v.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Vendor is already active")
	}
	v.Status = shared.StatusActive
	v.Changed(NewVendorEvent(EventTypeVendorStatusChanged, v))
	return nil
}

// Deactivate blocks new purchase orders
func (v *Vendor) Deactivate() error {
	if !v.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Vendor is already inactive")
	}
	v.Status = shared.StatusInactive
	v.Changed(NewVendorEvent(EventTypeVendorStatusChanged, v))
	return nil
}

// IsActive reports whether orders may be placed
func (v *Vendor) IsActive() bool {
	return v.Status == shared.StatusActive
}
