// Package catalog holds the construction materials that are stocked, purchased and allocated.
package catalog

import (
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups materials
type Category string

const (
	CategoryCement     Category = "cement"
	CategorySteel      Category = "steel"
	CategoryAggregate  Category = "aggregate"
	CategoryBrick      Category = "brick"
	CategorySand       Category = "sand"
	CategoryElectrical Category = "electrical"
	CategoryPlumbing   Category = "plumbing"
	CategoryPaint      Category = "paint"
	CategoryHardware   Category = "hardware"
	CategoryOther      Category = "other"
)

// IsValid reports whether the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryCement, CategorySteel, CategoryAggregate, CategoryBrick, CategorySand,
		CategoryElectrical, CategoryPlumbing, CategoryPaint, CategoryHardware, CategoryOther:
		return true
	}
	return false
}

// Unit is the stocking unit of a material
type Unit string

const (
	UnitBag   Unit = "bag"
	UnitKg    Unit = "kg"
	UnitTon   Unit = "ton"
	UnitCum   Unit = "cum"
	UnitSqft  Unit = "sqft"
	UnitNos   Unit = "nos"
	UnitLitre Unit = "ltr"
	UnitMetre Unit = "m"
)

// IsValid reports whether the unit is known
func (u Unit) IsValid() bool {
	switch u {
	case UnitBag, UnitKg, UnitTon, UnitCum, UnitSqft, UnitNos, UnitLitre, UnitMetre:
		return true
	}
	return false
}

var gstRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// ValidGSTRate reports whether r is one of the GST slabs
func ValidGSTRate(r decimal.Decimal) bool {
	for _, slab := range gstRates {
		if slab.Equal(r) {
			return true
		}
	}
	return false
}

// Product is a stocked material
type Product struct {
	shared.TenantAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Category     Category        `gorm:"type:varchar(20);not null"`
	Unit         Unit            `gorm:"type:varchar(10);not null"`
	HSNCode      string          `gorm:"column:hsn_code;type:varchar(8)"`
	GSTRate      decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:18"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       shared.Status   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Details are the mutable fields of a product
type Details struct {
	Name         string
	Category     Category
	Unit         Unit
	HSNCode      string
	GSTRate      decimal.Decimal
	ReorderLevel decimal.Decimal
}

// NewProduct creates an active material
func NewProduct(tenantID uuid.UUID, code string, d Details) (*Product, error) {
	code, err := shared.ValidateCode(code, 50)
	if err != nil {
		return nil, err
	}
	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Status:              shared.StatusActive,
	}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductEvent(EventTypeProductCreated, p))
	return p, nil
}

// Update replaces the mutable fields. The unit cannot change once stock exists,
// which the application layer checks before calling.
func (p *Product) Update(d Details) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.Changed(NewProductEvent(EventTypeProductUpdated, p))
	return nil
}

func (p *Product) apply(d Details) error {
	name, err := shared.ValidateName(d.Name, 200)
	if err != nil {
		return err
	}
	if !d.Category.IsValid() {
		return shared.NewDomainErrorf("INVALID_CATEGORY", "Unknown category %q", d.Category)
	}
	if !d.Unit.IsValid() {
		return shared.NewDomainErrorf("INVALID_UNIT", "Unknown unit %q", d.Unit)
	}
	hsn := strings.TrimSpace(d.HSNCode)
	if hsn != "" && (len(hsn) < 4 || len(hsn) > 8 || strings.Trim(hsn, "0123456789") != "") {
		return shared.NewDomainError("INVALID_HSN", "HSN code must be 4 to 8 digits")
	}
	if !ValidGSTRate(d.GSTRate) {
		return shared.NewDomainError("INVALID_GST_RATE", "GST rate must be one of 0, 5, 12, 18, 28")
	}
	if d.ReorderLevel.IsNegative() {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	p.Name = name
	p.Category = d.Category
	p.Unit = d.Unit
	p.HSNCode = hsn
	p.GSTRate = d.GSTRate
	p.ReorderLevel = d.ReorderLevel
	return nil
}

// Activate makes the product usable again
func (p *Product) Activate() error {
	if p.Status == shared.StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already active")
	}
	p.Status = shared.StatusActive
	p.Changed(NewProductEvent(EventTypeProductStatusChanged, p))
	return nil
}

// Deactivate blocks new purchases and receipts of the product
func (p *Product) Deactivate() error {
	if p.Status == shared.StatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	p.Status = shared.StatusInactive
	p.Changed(NewProductEvent(EventTypeProductStatusChanged, p))
	return nil
}

// IsActive reports whether the product can be transacted
func (p *Product) IsActive() bool {
	return p.Status == shared.StatusActive
}

// AggregateTypeProduct is the aggregate type for product events
const AggregateTypeProduct = "Product"

// Event types
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductUpdated       = "ProductUpdated"
	EventTypeProductStatusChanged = "ProductStatusChanged"
)

// ProductEvent is raised on product changes
type ProductEvent struct {
	shared.BaseDomainEvent
	Code   string        `json:"code"`
	Status shared.Status `json:"status"`
}

// NewProductEvent builds a ProductEvent
func NewProductEvent(eventType string, p *Product) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProduct, p.ID, p.TenantID),
		Code:            p.Code,
		Status:          p.Status,
	}
}
