package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	catalogapp "github.com/erp/buildledger/internal/application/catalog"
	"github.com/erp/buildledger/internal/interfaces/http/dto"
	"github.com/erp/buildledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles the material catalog
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	importService  *catalogapp.ProductImportService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// WithImport enables the CSV catalogue import endpoints
func (h *ProductHandler) WithImport(importService *catalogapp.ProductImportService) *ProductHandler {
	h.importService = importService
	return h
}

// Import handles POST /products/import. The CSV is either the "file" field of
// a multipart form or the raw request body. A file with row errors is answered
// with 422 and the error list; nothing is written in that case.
func (h *ProductHandler) Import(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	if h.importService == nil {
		h.Error(c, http.StatusNotImplemented, dto.ErrCodeNotImplemented, "Catalogue import is not enabled")
		return
	}
	dryRun, ok := h.queryBool(c, "dry_run")
	if !ok {
		return
	}

	body, closeBody, err := importBody(c)
	if err != nil {
		h.bindError(c, err, dto.ErrCodeBadRequest, "Invalid upload")
		return
	}
	defer closeBody()

	result, err := h.importService.Import(c.Request.Context(), tenantID, body, catalogapp.ImportProductsRequest{
		Mode:      catalogapp.ConflictMode(c.DefaultQuery("mode", string(catalogapp.ConflictSkip))),
		DryRun:    dryRun,
		CreatedBy: h.userID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !result.Accepted() {
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeImportRejected,
			"The file has row errors and was not imported", middleware.GetRequestID(c))
		resp.Data = result
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	h.Success(c, result)
}

// ImportTemplate handles GET /products/import/template
func (h *ProductHandler) ImportTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(catalogapp.ImportTemplate()))
}

func importBody(c *gin.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil, errors.New("request has no body")
	}
	return c.Request.Body, func() {}, nil
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = h.userID(c)

	product, err := h.productService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	byID(&h.BaseHandler, c, "product", h.productService.GetByID)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate handles POST /products/:id/activate
func (h *ProductHandler) Activate(c *gin.Context) {
	byID(&h.BaseHandler, c, "product", h.productService.Activate)
}

// Deactivate handles POST /products/:id/deactivate
func (h *ProductHandler) Deactivate(c *gin.Context) {
	byID(&h.BaseHandler, c, "product", h.productService.Deactivate)
}

// Delete handles DELETE /products/:id. Products with stock history cannot
// be deleted; deactivate them instead.
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
