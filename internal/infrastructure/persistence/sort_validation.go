package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func sortFields(extra ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range extra {
		m[f] = true
	}
	return m
}

var (
	TenantSortFields        = sortFields("code", "name", "status")
	CompanySortFields       = sortFields("code", "name", "status")
	ProjectSortFields       = sortFields("code", "name", "status", "start_date", "end_date", "budget", "contract_value")
	ProductSortFields       = sortFields("code", "name", "category", "status", "reorder_level")
	LaborSortFields         = sortFields("code", "name", "skill", "daily_wage", "status")
	VendorSortFields        = sortFields("code", "name", "status")
	GodownSortFields        = sortFields("code", "name", "status")
	StockSortFields         = sortFields("quantity", "total_value", "last_moved_at")
	BatchSortFields         = sortFields("received_date", "batch_number", "remaining_qty", "unit_cost")
	MovementSortFields      = sortFields("occurred_at", "movement_type", "quantity")
	TransferSortFields      = sortFields("transfer_date", "transfer_number")
	AllocationSortFields    = sortFields("allocated_on", "allocation_number", "total_cost", "status")
	PurchaseOrderSortFields = sortFields("order_date", "order_number", "grand_total", "status")
	AttendanceSortFields    = sortFields("work_date", "status", "wage_amount")
	BillSortFields          = sortFields("bill_date", "bill_number", "gross_total", "balance_due", "status")
)
