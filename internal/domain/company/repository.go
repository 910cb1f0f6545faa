package company

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists companies
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Company, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, c *Company) error
	SaveWithLock(ctx context.Context, c *Company) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	CountProjects(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}
