package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/buildledger/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	calls := 0
	r := NewRouter(engine).Use(func(c *gin.Context) {
		calls++
		c.Next()
	})

	items := NewDomainGroup("items", "/items").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("", func(c *gin.Context) { c.String(http.StatusCreated, "create") }).
		PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "put "+c.Param("id")) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	items.Group("lines", "/:id/lines").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "lines of "+c.Param("id")) })
	r.Register(items).Setup()
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/items", http.StatusOK, "list"},
		{http.MethodPost, "/api/v1/items", http.StatusCreated, "create"},
		{http.MethodPut, "/api/v1/items/7", http.StatusOK, "put 7"},
		{http.MethodDelete, "/api/v1/items/7", http.StatusNoContent, ""},
		{http.MethodGet, "/api/v1/items/7/lines", http.StatusOK, "lines of 7"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String(), "%s %s", tt.method, tt.path)
	}
	assert.Equal(t, len(tests), calls)

	serve(engine, http.MethodGet, "/outside")
	assert.Equal(t, len(tests), calls, "router middleware stays on the API group")
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	guarded := NewDomainGroup("guarded", "/guarded").
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	guarded.Group("child", "/child").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	open := NewDomainGroup("open", "/open").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(guarded, open).Setup()

	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/guarded").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/guarded/child").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/open").Code)
}

func newTestHandlers() Handlers {
	return Handlers{
		System:        handler.NewSystemHandler("buildledger", "test"),
		Tenant:        handler.NewTenantHandler(nil),
		Company:       handler.NewCompanyHandler(nil),
		Project:       handler.NewProjectHandler(nil, nil, nil, nil),
		Labor:         handler.NewLaborHandler(nil),
		Attendance:    handler.NewAttendanceHandler(nil),
		Product:       handler.NewProductHandler(nil),
		Godown:        handler.NewGodownHandler(nil),
		Stock:         handler.NewStockHandler(nil),
		Allocation:    handler.NewAllocationHandler(nil),
		Vendor:        handler.NewVendorHandler(nil),
		PurchaseOrder: handler.NewPurchaseOrderHandler(nil),
		Bill:          handler.NewBillHandler(nil),
		Dashboard:     handler.NewDashboardHandler(nil),
	}
}

func TestRegisterRoutes_Table(t *testing.T) {
	engine := gin.New()
	RegisterRoutes(engine, newTestHandlers())

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/tenants",
		"POST /api/v1/tenants/:id/deactivate",
		"DELETE /api/v1/companies/:id",
		"POST /api/v1/projects/:id/hold",
		"GET /api/v1/projects/:id/cost-sheet",
		"GET /api/v1/projects/:id/materials",
		"GET /api/v1/projects/:id/labor-cost",
		"GET /api/v1/labor/assignments",
		"POST /api/v1/labor/:id/assign",
		"POST /api/v1/labor/:id/release",
		"GET /api/v1/labor/:id/assignments",
		"POST /api/v1/attendance/bulk",
		"GET /api/v1/attendance/wage-summary",
		"PUT /api/v1/attendance/:id",
		"POST /api/v1/products/:id/activate",
		"POST /api/v1/products/import",
		"GET /api/v1/products/import/template",
		"POST /api/v1/godowns/:id/default",
		"GET /api/v1/stock/item",
		"GET /api/v1/stock/batches",
		"GET /api/v1/stock/movements",
		"GET /api/v1/stock/low-stock",
		"GET /api/v1/stock/valuation",
		"POST /api/v1/stock/receive",
		"POST /api/v1/stock/adjust",
		"POST /api/v1/stock/transfers",
		"GET /api/v1/stock/transfers/:id",
		"POST /api/v1/allocations/:id/reverse",
		"POST /api/v1/vendors/:id/deactivate",
		"PUT /api/v1/purchase-orders/:id/lines",
		"POST /api/v1/purchase-orders/:id/confirm",
		"POST /api/v1/purchase-orders/:id/receive",
		"GET /api/v1/purchase-orders/:id/receipts",
		"PUT /api/v1/bills/:id/lines",
		"POST /api/v1/bills/:id/issue",
		"POST /api/v1/bills/:id/payments",
		"GET /api/v1/bills/:id/payments",
		"GET /api/v1/bills/:id/html",
		"GET /api/v1/bills/:id/pdf",
		"GET /api/v1/dashboard",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestRegisterRoutes_TenantScoping(t *testing.T) {
	engine := gin.New()
	denyAll := func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }
	RegisterRoutes(engine, newTestHandlers(), denyAll)

	for _, path := range []string{
		"/api/v1/companies",
		"/api/v1/stock/low-stock",
		"/api/v1/bills/x/pdf",
		"/api/v1/dashboard",
	} {
		assert.Equal(t, http.StatusTeapot, serve(engine, http.MethodGet, path).Code, path)
	}

	// tenant management is not tenant scoped; the bad ID fails in the handler
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/tenants/not-a-uuid").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

func TestRegisterRoutes_Ready(t *testing.T) {
	h := newTestHandlers()
	h.System.AddCheck("database", func(context.Context) error { return nil })

	engine := gin.New()
	RegisterRoutes(engine, h)
	w := serve(engine, http.MethodGet, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	h.System.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	w = serve(engine, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"error"`)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
