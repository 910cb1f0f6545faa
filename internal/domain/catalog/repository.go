package catalog

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository persists products
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// FindByCodes returns the products whose upper-cased code is in codes
	FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]Product, error)
	Save(ctx context.Context, p *Product) error
	SaveWithLock(ctx context.Context, p *Product) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// HasStockHistory reports whether any batch references the product
	HasStockHistory(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}
