// Package report computes the dashboard and project cost sheets.
package report

import (
	"context"
	"time"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/report"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repositories are the read sources of the reports
type Repositories struct {
	Projects    project.Repository
	Labor       labor.Repository
	Attendance  labor.AttendanceRepository
	Godowns     inventory.GodownRepository
	Stocks      inventory.GodownStockRepository
	Allocations inventory.AllocationRepository
	Bills       billing.BillRepository
	Payments    billing.PaymentRepository
}

// ReportService computes tenant reports and caches them
type ReportService struct {
	repos  Repositories
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a new ReportService. A nil cache disables caching.
func NewReportService(repos Repositories, cache Cache, ttl time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ReportService{
		repos:  repos,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Dashboard returns the tenant summary. The aggregates are independent
// queries and run concurrently.
func (s *ReportService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	var cached report.Dashboard
	if s.fromCache(ctx, dashboardKey(tenantID), &cached) {
		return &cached, nil
	}

	now := s.now()
	today := shared.DateOnly(now)
	fyStart := report.FinancialYearStart(now)
	month := shared.DateRange{From: report.MonthStart(now), To: today}
	fy := shared.DateRange{From: fyStart, To: today}

	d := &report.Dashboard{
		TenantID:           tenantID,
		AsOf:               now,
		FinancialYearStart: fyStart,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.ActiveProjects, err = s.countActiveProjects(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		d.ActiveLabor, err = s.countActiveLabor(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Godowns, err = s.repos.Godowns.Count(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		valuation, err := s.repos.Stocks.Valuation(gctx, tenantID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, v := range valuation {
			total = total.Add(v.TotalValue)
		}
		d.StockValue = total
		return nil
	})
	g.Go(func() error {
		var err error
		d.LaborCostMonth, err = s.repos.Attendance.SumWages(gctx, tenantID, nil, month)
		return err
	})
	g.Go(func() error {
		var err error
		d.MaterialCostMonth, err = s.repos.Allocations.SumNetCost(gctx, tenantID, nil, month)
		return err
	})
	g.Go(func() error {
		totals, err := s.repos.Bills.Totals(gctx, tenantID, nil, fy)
		if err != nil {
			return err
		}
		d.BilledFY = totals.Billed
		return nil
	})
	g.Go(func() error {
		var err error
		d.ReceivedFY, err = s.repos.Payments.SumReceived(gctx, tenantID, fy)
		return err
	})
	g.Go(func() error {
		// open bills of any year
		totals, err := s.repos.Bills.Totals(gctx, tenantID, nil, shared.DateRange{})
		if err != nil {
			return err
		}
		d.Outstanding = totals.Outstanding
		return nil
	})
	g.Go(func() error {
		items, err := s.repos.Stocks.LowStock(gctx, tenantID)
		if err != nil {
			return err
		}
		d.LowStockItems = int64(len(items))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, dashboardKey(tenantID), d)
	return d, nil
}

// ProjectCostSheet compares a project's labor and material cost with what
// it has billed and received over its whole life
func (s *ReportService) ProjectCostSheet(ctx context.Context, tenantID, projectID uuid.UUID) (*report.ProjectCostSheet, error) {
	var cached report.ProjectCostSheet
	if s.fromCache(ctx, costSheetKey(tenantID, projectID), &cached) {
		return &cached, nil
	}

	p, err := s.repos.Projects.FindByIDForTenant(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	sheet := &report.ProjectCostSheet{
		ProjectID:     p.ID,
		ProjectCode:   p.Code,
		ProjectName:   p.Name,
		Status:        string(p.Status),
		Budget:        p.Budget,
		ContractValue: p.ContractValue,
	}
	all := shared.DateRange{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sheet.LaborCost, err = s.repos.Attendance.SumWages(gctx, tenantID, &p.ID, all)
		return err
	})
	g.Go(func() error {
		var err error
		sheet.MaterialCost, err = s.repos.Allocations.SumNetCost(gctx, tenantID, &p.ID, all)
		return err
	})
	g.Go(func() error {
		totals, err := s.repos.Bills.Totals(gctx, tenantID, &p.ID, all)
		if err != nil {
			return err
		}
		sheet.Billed = totals.Billed
		sheet.RetentionHeld = totals.Retention
		sheet.Received = totals.Received
		sheet.Outstanding = totals.Outstanding
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sheet.Finalize()

	s.toCache(ctx, costSheetKey(tenantID, projectID), sheet)
	return sheet, nil
}

func (s *ReportService) countActiveProjects(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	f := shared.Filter{Page: 1, PageSize: 1}.Normalize()
	f.Filters["status"] = string(project.StatusActive)
	_, total, err := s.repos.Projects.FindAllForTenant(ctx, tenantID, f)
	return total, err
}

func (s *ReportService) countActiveLabor(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	f := shared.Filter{Page: 1, PageSize: 1}.Normalize()
	f.Filters["status"] = string(shared.StatusActive)
	_, total, err := s.repos.Labor.FindAllForTenant(ctx, tenantID, f)
	return total, err
}

// fromCache treats cache failures as misses
func (s *ReportService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *ReportService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
