package company

import (
	"time"

	"github.com/erp/buildledger/internal/domain/company"
	"github.com/google/uuid"
)

// CreateCompanyRequest represents a request to create a client company
type CreateCompanyRequest struct {
	Code          string     `json:"code" binding:"required,min=1,max=50"`
	Name          string     `json:"name" binding:"required,min=1,max=200"`
	GSTIN         string     `json:"gstin" binding:"omitempty,gstin"`
	StateCode     string     `json:"state_code" binding:"omitempty,len=2,numeric"`
	Address       string     `json:"address" binding:"max=1000"`
	ContactPerson string     `json:"contact_person" binding:"max=100"`
	Phone         string     `json:"phone" binding:"omitempty,phone"`
	Email         string     `json:"email" binding:"omitempty,email"`
	CreatedBy     *uuid.UUID `json:"-"`
}

// UpdateCompanyRequest represents a request to update a company
type UpdateCompanyRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	GSTIN         string `json:"gstin" binding:"omitempty,gstin"`
	StateCode     string `json:"state_code" binding:"omitempty,len=2,numeric"`
	Address       string `json:"address" binding:"max=1000"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"omitempty,phone"`
	Email         string `json:"email" binding:"omitempty,email"`
}

func (r UpdateCompanyRequest) details() company.Details {
	return company.Details{
		Name:          r.Name,
		GSTIN:         r.GSTIN,
		StateCode:     r.StateCode,
		Address:       r.Address,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
	}
}

// CompanyListFilter represents filter options for company list
type CompanyListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	GSTIN         string    `json:"gstin,omitempty"`
	StateCode     string    `json:"state_code,omitempty"`
	Address       string    `json:"address,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		GSTIN:         c.GSTIN,
		StateCode:     c.StateCode,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}
