package tenant

import (
	"time"

	"github.com/erp/buildledger/internal/domain/tenant"
	"github.com/google/uuid"
)

// CreateTenantRequest represents a request to register a tenant
type CreateTenantRequest struct {
	Code      string `json:"code" binding:"required,min=2,max=32"`
	Name      string `json:"name" binding:"required,min=1,max=200"`
	StateCode string `json:"state_code" binding:"required,len=2,numeric"`
	GSTIN     string `json:"gstin" binding:"omitempty,gstin"`
}

// UpdateTenantRequest represents a request to update a tenant
type UpdateTenantRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	StateCode string `json:"state_code" binding:"required,len=2,numeric"`
	GSTIN     string `json:"gstin" binding:"omitempty,gstin"`
}

// TenantListFilter represents filter options for tenant list
type TenantListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	StateCode string    `json:"state_code"`
	GSTIN     string    `json:"gstin,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToTenantResponse converts a domain Tenant to TenantResponse
func ToTenantResponse(t *tenant.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Code:      t.Code,
		Name:      t.Name,
		StateCode: t.StateCode,
		GSTIN:     t.GSTIN,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Version:   t.Version,
	}
}
