package project

import (
	"time"

	"github.com/erp/buildledger/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	CompanyID        uuid.UUID        `json:"company_id" binding:"required"`
	Code             string           `json:"code" binding:"required,min=1,max=50"`
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	SiteAddress      string           `json:"site_address" binding:"max=1000"`
	StartDate        *time.Time       `json:"start_date"`
	EndDate          *time.Time       `json:"end_date"`
	Budget           decimal.Decimal  `json:"budget"`
	ContractValue    decimal.Decimal  `json:"contract_value"`
	RetentionPercent *decimal.Decimal `json:"retention_percent"`
	CreatedBy        *uuid.UUID       `json:"-"`
}

// UpdateProjectRequest represents a request to update a project
type UpdateProjectRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	SiteAddress      string           `json:"site_address" binding:"max=1000"`
	StartDate        *time.Time       `json:"start_date"`
	EndDate          *time.Time       `json:"end_date"`
	Budget           decimal.Decimal  `json:"budget"`
	ContractValue    decimal.Decimal  `json:"contract_value"`
	RetentionPercent *decimal.Decimal `json:"retention_percent"`
}

// ProjectListFilter represents filter options for project list
type ProjectListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status" binding:"omitempty,oneof=planned active on_hold completed cancelled"`
	CompanyID *uuid.UUID `form:"-"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	SiteAddress      string          `json:"site_address,omitempty"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	Budget           decimal.Decimal `json:"budget"`
	ContractValue    decimal.Decimal `json:"contract_value"`
	RetentionPercent decimal.Decimal `json:"retention_percent"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToProjectResponse converts a domain Project to ProjectResponse
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:               p.ID,
		CompanyID:        p.CompanyID,
		Code:             p.Code,
		Name:             p.Name,
		SiteAddress:      p.SiteAddress,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		Budget:           p.Budget,
		ContractValue:    p.ContractValue,
		RetentionPercent: p.RetentionPercent,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}
