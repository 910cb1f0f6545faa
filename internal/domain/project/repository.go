package project

import (
	"context"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists projects
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Project, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Project, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, p *Project) error
	SaveWithLock(ctx context.Context, p *Project) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// HasActivity reports whether any allocation, attendance or bill references the project
	HasActivity(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}
