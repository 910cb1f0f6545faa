package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/erp/buildledger/internal/application/billing"
	catalogapp "github.com/erp/buildledger/internal/application/catalog"
	companyapp "github.com/erp/buildledger/internal/application/company"
	inventoryapp "github.com/erp/buildledger/internal/application/inventory"
	laborapp "github.com/erp/buildledger/internal/application/labor"
	projectapp "github.com/erp/buildledger/internal/application/project"
	purchaseapp "github.com/erp/buildledger/internal/application/purchase"
	reportapp "github.com/erp/buildledger/internal/application/report"
	tenantapp "github.com/erp/buildledger/internal/application/tenant"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/infrastructure/cache"
	"github.com/erp/buildledger/internal/infrastructure/config"
	"github.com/erp/buildledger/internal/infrastructure/event"
	"github.com/erp/buildledger/internal/infrastructure/logger"
	"github.com/erp/buildledger/internal/infrastructure/persistence"
	"github.com/erp/buildledger/internal/infrastructure/printing"
	"github.com/erp/buildledger/internal/infrastructure/telemetry"
	"github.com/erp/buildledger/internal/interfaces/http/handler"
	"github.com/erp/buildledger/internal/interfaces/http/middleware"
	"github.com/erp/buildledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The OTLP log bridge needs a logger of its own before the main one exists
	bootLog, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OpenTelemetry logs", zap.Error(err))
	}
	var extraCores []zapcore.Core
	if logProvider.IsEnabled() {
		extraCores = append(extraCores, logProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	}
	log, err := logger.New(cfg.Log, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BuildLedger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize OpenTelemetry tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize OpenTelemetry metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry, cfg.Database.DBName, log).Register(db.DB); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	laborRepo := persistence.NewGormLaborRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	godownRepo := persistence.NewGormGodownRepository(db.DB)
	stockRepo := persistence.NewGormGodownStockRepository(db.DB)
	batchRepo := persistence.NewGormStockBatchRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	receiptRepo := persistence.NewGormGoodsReceiptRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Report cache: Redis when enabled and reachable, process memory otherwise
	reportCache, err := cache.NewReportCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize report cache", zap.Error(err))
	}
	defer func() {
		if err := reportCache.Close(); err != nil {
			log.Error("Error closing report cache", zap.Error(err))
		}
	}()

	// Invoice printing
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load invoice templates", zap.Error(err))
	}
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chrome, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.ChromeRemoteURL,
			ExecPath:       cfg.Printing.ChromeExecPath,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdfRenderer = chrome
	} else {
		log.Info("PDF printing disabled, bills are available as HTML only")
	}

	// Application services
	tenantService := tenantapp.NewTenantService(tenantRepo, log).WithStatusTTL(cfg.Cache.TenantTTL)
	companyService := companyapp.NewCompanyService(companyRepo)
	projectService := projectapp.NewProjectService(projectRepo, companyRepo, log)
	productService := catalogapp.NewProductService(productRepo, log)
	productImportService := catalogapp.NewProductImportService(productRepo, scope, log)
	laborService := laborapp.NewLaborService(laborRepo, assignmentRepo, projectRepo, log)
	attendanceService := laborapp.NewAttendanceService(attendanceRepo, laborRepo, assignmentRepo, projectRepo, scope, log)
	godownService := inventoryapp.NewGodownService(godownRepo, scope, log)
	stockService := inventoryapp.NewStockService(inventoryapp.StockRepositories{
		Godowns:   godownRepo,
		Products:  productRepo,
		Stocks:    stockRepo,
		Batches:   batchRepo,
		Movements: movementRepo,
		Transfers: transferRepo,
	}, scope, log)
	allocationService := inventoryapp.NewAllocationService(allocationRepo, godownRepo, productRepo, projectRepo, scope, log)
	vendorService := purchaseapp.NewVendorService(vendorRepo)
	orderService := purchaseapp.NewOrderService(purchaseapp.OrderRepositories{
		Orders:   orderRepo,
		Receipts: receiptRepo,
		Vendors:  vendorRepo,
		Godowns:  godownRepo,
		Products: productRepo,
		Projects: projectRepo,
	}, scope, log)
	billService := billingapp.NewBillService(billingapp.BillRepositories{
		Bills:     billRepo,
		Payments:  paymentRepo,
		Projects:  projectRepo,
		Companies: companyRepo,
		Tenants:   tenantRepo,
	}, scope, templates, pdfRenderer, log).WithPaperSize(printing.ParsePaperSize(cfg.Printing.PaperSize))
	reportService := reportapp.NewReportService(reportapp.Repositories{
		Projects:    projectRepo,
		Labor:       laborRepo,
		Attendance:  attendanceRepo,
		Godowns:     godownRepo,
		Stocks:      stockRepo,
		Allocations: allocationRepo,
		Bills:       billRepo,
		Payments:    paymentRepo,
	}, reportCache, cfg.Cache.ReportTTL, log)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(inventoryapp.NewLowStockHandler(productRepo, stockRepo, log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)))
	eventBus.Subscribe(reportapp.NewCacheInvalidationHandler(reportCache, log))
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("buildledger/business"))
		if err != nil {
			log.Fatal("Failed to register business metrics", zap.Error(err))
		}
		eventBus.Subscribe(businessMetrics)
	}
	for _, svc := range []interface {
		SetEventPublisher(publisher shared.EventPublisher)
	}{
		tenantService, companyService, projectService, productService, productImportService,
		laborService, attendanceService, godownService, stockService,
		allocationService, vendorService, orderService, billService,
	} {
		svc.SetEventPublisher(eventBus)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("buildledger/http"))
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(logger.GinMiddleware(log))

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.Secure(securityConfig))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", db.Ping)
	if redisCache, ok := reportCache.(*cache.RedisReportCache); ok {
		systemHandler.AddCheck("redis", redisCache.Ping)
	}

	tenantScoped := []gin.HandlerFunc{middleware.Tenant(tenantService)}
	if tracerProvider.IsEnabled() {
		tenantScoped = append(tenantScoped, middleware.SpanAttributes())
	}
	router.RegisterRoutes(engine, router.Handlers{
		System:        systemHandler,
		Tenant:        handler.NewTenantHandler(tenantService),
		Company:       handler.NewCompanyHandler(companyService),
		Project:       handler.NewProjectHandler(projectService, attendanceService, allocationService, reportService),
		Labor:         handler.NewLaborHandler(laborService),
		Attendance:    handler.NewAttendanceHandler(attendanceService),
		Product:       handler.NewProductHandler(productService).WithImport(productImportService),
		Godown:        handler.NewGodownHandler(godownService),
		Stock:         handler.NewStockHandler(stockService),
		Allocation:    handler.NewAllocationHandler(allocationService),
		Vendor:        handler.NewVendorHandler(vendorService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Bill:          handler.NewBillHandler(billService),
		Dashboard:     handler.NewDashboardHandler(reportService),
	}, tenantScoped...)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
