// Package report holds read models computed across bounded contexts.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard is the tenant-wide summary
type Dashboard struct {
	TenantID           uuid.UUID       `json:"tenant_id"`
	AsOf               time.Time       `json:"as_of"`
	FinancialYearStart time.Time       `json:"financial_year_start"`
	ActiveProjects     int64           `json:"active_projects"`
	ActiveLabor        int64           `json:"active_labor"`
	Godowns            int64           `json:"godowns"`
	StockValue         decimal.Decimal `json:"stock_value"`
	LaborCostMonth     decimal.Decimal `json:"labor_cost_month"`
	MaterialCostMonth  decimal.Decimal `json:"material_cost_month"` // net of reversals
	BilledFY           decimal.Decimal `json:"billed_fy"`           // gross of issued bills
	ReceivedFY         decimal.Decimal `json:"received_fy"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	LowStockItems      int64           `json:"low_stock_items"`
}

// ProjectCostSheet compares what a project cost against what it billed
type ProjectCostSheet struct {
	ProjectID         uuid.UUID       `json:"project_id"`
	ProjectCode       string          `json:"project_code"`
	ProjectName       string          `json:"project_name"`
	Status            string          `json:"status"`
	Budget            decimal.Decimal `json:"budget"`
	ContractValue     decimal.Decimal `json:"contract_value"`
	LaborCost         decimal.Decimal `json:"labor_cost"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Billed            decimal.Decimal `json:"billed"`
	RetentionHeld     decimal.Decimal `json:"retention_held"`
	Received          decimal.Decimal `json:"received"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`       // billed - total cost
	BudgetUtilisation decimal.Decimal `json:"budget_utilisation"` // percent of budget spent
}

var hundred = decimal.NewFromInt(100)

// Finalize derives the computed columns from the raw figures
func (s *ProjectCostSheet) Finalize() {
	s.TotalCost = s.LaborCost.Add(s.MaterialCost)
	s.GrossMargin = s.Billed.Sub(s.TotalCost)
	s.BudgetUtilisation = decimal.Zero
	if s.Budget.IsPositive() {
		s.BudgetUtilisation = s.TotalCost.Mul(hundred).Div(s.Budget).Round(2)
	}
}

// FinancialYearStart returns April 1 of the Indian financial year containing t
func FinancialYearStart(t time.Time) time.Time {
	y := t.Year()
	if t.Month() < time.April {
		y--
	}
	return time.Date(y, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
