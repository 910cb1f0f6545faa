package catalog

import (
	"time"

	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a material
type CreateProductRequest struct {
	Code         string          `json:"code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Category     string          `json:"category" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	HSNCode      string          `json:"hsn_code" binding:"omitempty,min=4,max=8,numeric"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

func (r CreateProductRequest) details() catalog.Details {
	return catalog.Details{
		Name:         r.Name,
		Category:     catalog.Category(r.Category),
		Unit:         catalog.Unit(r.Unit),
		HSNCode:      r.HSNCode,
		GSTRate:      r.GSTRate,
		ReorderLevel: r.ReorderLevel,
	}
}

// UpdateProductRequest represents a request to update a material
type UpdateProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Category     string          `json:"category" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	HSNCode      string          `json:"hsn_code" binding:"omitempty,min=4,max=8,numeric"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

func (r UpdateProductRequest) details() catalog.Details {
	return catalog.Details{
		Name:         r.Name,
		Category:     catalog.Category(r.Category),
		Unit:         catalog.Unit(r.Unit),
		HSNCode:      r.HSNCode,
		GSTRate:      r.GSTRate,
		ReorderLevel: r.ReorderLevel,
	}
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a material in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	HSNCode      string          `json:"hsn_code,omitempty"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Category:     string(p.Category),
		Unit:         string(p.Unit),
		HSNCode:      p.HSNCode,
		GSTRate:      p.GSTRate,
		ReorderLevel: p.ReorderLevel,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}
