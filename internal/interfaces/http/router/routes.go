package router

import (
	"github.com/erp/buildledger/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers served by the API
type Handlers struct {
	System        *handler.SystemHandler
	Tenant        *handler.TenantHandler
	Company       *handler.CompanyHandler
	Project       *handler.ProjectHandler
	Labor         *handler.LaborHandler
	Attendance    *handler.AttendanceHandler
	Product       *handler.ProductHandler
	Godown        *handler.GodownHandler
	Stock         *handler.StockHandler
	Allocation    *handler.AllocationHandler
	Vendor        *handler.VendorHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Bill          *handler.BillHandler
	Dashboard     *handler.DashboardHandler
}

// RegisterRoutes mounts the probes at the root and the API under /api/v1.
// tenantScoped runs on every group except /tenants.
func RegisterRoutes(engine *gin.Engine, h Handlers, tenantScoped ...gin.HandlerFunc) {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	tenants := NewDomainGroup("tenants", "/tenants").
		POST("", h.Tenant.Create).
		GET("", h.Tenant.List).
		GET("/:id", h.Tenant.GetByID).
		PUT("/:id", h.Tenant.Update).
		POST("/:id/activate", h.Tenant.Activate).
		POST("/:id/deactivate", h.Tenant.Deactivate)

	companies := NewDomainGroup("companies", "/companies").
		POST("", h.Company.Create).
		GET("", h.Company.List).
		GET("/:id", h.Company.GetByID).
		PUT("/:id", h.Company.Update).
		DELETE("/:id", h.Company.Delete).
		POST("/:id/activate", h.Company.Activate).
		POST("/:id/deactivate", h.Company.Deactivate)

	projects := NewDomainGroup("projects", "/projects").
		POST("", h.Project.Create).
		GET("", h.Project.List).
		GET("/:id", h.Project.GetByID).
		PUT("/:id", h.Project.Update).
		DELETE("/:id", h.Project.Delete).
		POST("/:id/start", h.Project.Start).
		POST("/:id/hold", h.Project.Hold).
		POST("/:id/resume", h.Project.Resume).
		POST("/:id/complete", h.Project.Complete).
		POST("/:id/cancel", h.Project.Cancel).
		GET("/:id/cost-sheet", h.Project.CostSheet).
		GET("/:id/materials", h.Project.Materials).
		GET("/:id/labor-cost", h.Project.LaborCost)

	labor := NewDomainGroup("labor", "/labor").
		POST("", h.Labor.Create).
		GET("", h.Labor.List).
		GET("/assignments", h.Labor.ProjectAssignments).
		GET("/:id", h.Labor.GetByID).
		PUT("/:id", h.Labor.Update).
		DELETE("/:id", h.Labor.Delete).
		POST("/:id/activate", h.Labor.Activate).
		POST("/:id/deactivate", h.Labor.Deactivate).
		POST("/:id/assign", h.Labor.Assign).
		POST("/:id/release", h.Labor.Release).
		GET("/:id/assignments", h.Labor.Assignments)

	attendance := NewDomainGroup("attendance", "/attendance").
		POST("", h.Attendance.Mark).
		POST("/bulk", h.Attendance.BulkMark).
		GET("", h.Attendance.List).
		GET("/wage-summary", h.Attendance.WageSummary).
		GET("/:id", h.Attendance.GetByID).
		PUT("/:id", h.Attendance.Update).
		DELETE("/:id", h.Attendance.Delete)

	products := NewDomainGroup("products", "/products").
		POST("", h.Product.Create).
		GET("", h.Product.List).
		POST("/import", h.Product.Import).
		GET("/import/template", h.Product.ImportTemplate).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/activate", h.Product.Activate).
		POST("/:id/deactivate", h.Product.Deactivate)

	godowns := NewDomainGroup("godowns", "/godowns").
		POST("", h.Godown.Create).
		GET("", h.Godown.List).
		GET("/:id", h.Godown.GetByID).
		PUT("/:id", h.Godown.Update).
		DELETE("/:id", h.Godown.Delete).
		POST("/:id/default", h.Godown.SetDefault).
		POST("/:id/activate", h.Godown.Activate).
		POST("/:id/deactivate", h.Godown.Deactivate)

	stock := NewDomainGroup("stock", "/stock").
		GET("", h.Stock.List).
		GET("/item", h.Stock.Item).
		GET("/batches", h.Stock.Batches).
		GET("/movements", h.Stock.Movements).
		GET("/low-stock", h.Stock.LowStock).
		GET("/valuation", h.Stock.Valuation).
		POST("/receive", h.Stock.Receive).
		POST("/adjust", h.Stock.Adjust).
		POST("/transfers", h.Stock.Transfer).
		GET("/transfers", h.Stock.ListTransfers).
		GET("/transfers/:id", h.Stock.GetTransfer)

	allocations := NewDomainGroup("allocations", "/allocations").
		POST("", h.Allocation.Allocate).
		GET("", h.Allocation.List).
		GET("/:id", h.Allocation.GetByID).
		POST("/:id/reverse", h.Allocation.Reverse)

	vendors := NewDomainGroup("vendors", "/vendors").
		POST("", h.Vendor.Create).
		GET("", h.Vendor.List).
		GET("/:id", h.Vendor.GetByID).
		PUT("/:id", h.Vendor.Update).
		DELETE("/:id", h.Vendor.Delete).
		POST("/:id/activate", h.Vendor.Activate).
		POST("/:id/deactivate", h.Vendor.Deactivate)

	orders := NewDomainGroup("purchase-orders", "/purchase-orders").
		POST("", h.PurchaseOrder.Create).
		GET("", h.PurchaseOrder.List).
		GET("/:id", h.PurchaseOrder.GetByID).
		DELETE("/:id", h.PurchaseOrder.Delete).
		PUT("/:id/lines", h.PurchaseOrder.UpdateLines).
		POST("/:id/confirm", h.PurchaseOrder.Confirm).
		POST("/:id/cancel", h.PurchaseOrder.Cancel).
		POST("/:id/receive", h.PurchaseOrder.Receive).
		GET("/:id/receipts", h.PurchaseOrder.Receipts)

	bills := NewDomainGroup("bills", "/bills").
		POST("", h.Bill.Create).
		GET("", h.Bill.List).
		GET("/:id", h.Bill.GetByID).
		PUT("/:id", h.Bill.Update).
		DELETE("/:id", h.Bill.Delete).
		PUT("/:id/lines", h.Bill.UpdateLines).
		POST("/:id/issue", h.Bill.Issue).
		POST("/:id/cancel", h.Bill.Cancel).
		POST("/:id/payments", h.Bill.RecordPayment).
		GET("/:id/payments", h.Bill.ListPayments).
		GET("/:id/html", h.Bill.HTML).
		GET("/:id/pdf", h.Bill.PDF)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("", h.Dashboard.Get)

	scoped := []*DomainGroup{
		companies, projects, labor, attendance, products, godowns,
		stock, allocations, vendors, orders, bills, dashboard,
	}

	r := NewRouter(engine, WithAPIVersion("v1")).Register(tenants)
	for _, g := range scoped {
		r.Register(g.Use(tenantScoped...))
	}
	r.Setup()
}
