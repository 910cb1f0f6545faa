package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Import limits
const (
	MaxImportRows   = 5000
	maxImportErrors = 100
)

// Product import columns
const (
	colCode         = "code"
	colName         = "name"
	colCategory     = "category"
	colUnit         = "unit"
	colHSNCode      = "hsn_code"
	colGSTRate      = "gst_rate"
	colReorderLevel = "reorder_level"
)

// ConflictMode decides what happens to a row whose code already exists
type ConflictMode string

const (
	ConflictSkip   ConflictMode = "skip"
	ConflictUpdate ConflictMode = "update"
	ConflictFail   ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (m ConflictMode) IsValid() bool {
	switch m {
	case ConflictSkip, ConflictUpdate, ConflictFail:
		return true
	}
	return false
}

// ImportProductsRequest controls a catalogue import
type ImportProductsRequest struct {
	Mode      ConflictMode
	DryRun    bool
	CreatedBy *uuid.UUID
}

// ImportResult summarizes an import. When Errors is non-empty nothing was written.
type ImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	Created     int                  `json:"created"`
	Updated     int                  `json:"updated"`
	Skipped     int                  `json:"skipped"`
	ErrorRows   int                  `json:"error_rows"`
	DryRun      bool                 `json:"dry_run"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
	Truncated   bool                 `json:"truncated,omitempty"`
}

// Accepted reports whether the file passed validation
func (r *ImportResult) Accepted() bool {
	return r.TotalErrors == 0
}

// ProductImportService loads the material catalogue from CSV
type ProductImportService struct {
	productRepo    catalog.ProductRepository
	scope          txn.Scope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(productRepo catalog.ProductRepository, scope txn.Scope, logger *zap.Logger) *ProductImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductImportService{
		productRepo: productRepo,
		scope:       scope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductImportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func productImportRules() []csvimport.Rule {
	zero := decimal.Zero
	return []csvimport.Rule{
		csvimport.Column(colCode).Required().Unique().MaxLength(50).Build(),
		csvimport.Column(colName).Required().MaxLength(200).Build(),
		csvimport.Column(colCategory).Required().Check(func(v string) error {
			if !catalog.Category(strings.ToLower(v)).IsValid() {
				return fmt.Errorf("unknown category %q", v)
			}
			return nil
		}).Build(),
		csvimport.Column(colUnit).Required().Check(func(v string) error {
			if !catalog.Unit(strings.ToLower(v)).IsValid() {
				return fmt.Errorf("unknown unit %q", v)
			}
			return nil
		}).Build(),
		csvimport.Column(colHSNCode).MaxLength(8).Build(),
		csvimport.Column(colGSTRate).Decimal().Check(func(v string) error {
			if !catalog.ValidGSTRate(decimal.RequireFromString(v)) {
				return errors.New("GST rate must be one of 0, 5, 12, 18, 28")
			}
			return nil
		}).Build(),
		csvimport.Column(colReorderLevel).Decimal().Min(zero).Build(),
	}
}

// ImportTemplate is the header line of an importable file
func ImportTemplate() string {
	return strings.Join([]string{colCode, colName, colCategory, colUnit, colHSNCode, colGSTRate, colReorderLevel}, ",") + "\n"
}

type importRow struct {
	line    int
	code    string
	details catalog.Details
}

// Import validates the whole file first. Any row error rejects the file and
// nothing is written; otherwise every row is applied in one transaction.
func (s *ProductImportService) Import(ctx context.Context, tenantID uuid.UUID, r io.Reader, req ImportProductsRequest) (*ImportResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = ConflictSkip
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_IMPORT_MODE", "Unknown conflict mode %q", req.Mode)
	}

	parser, err := csvimport.NewParser(r, csvimport.WithMaxRows(MaxImportRows))
	if err != nil {
		return nil, fileError(err)
	}
	validator := csvimport.NewValidator(productImportRules()...)
	if missing := parser.Missing(validator.RequiredColumns()...); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "Missing required columns").
			WithDetail("missing_columns", missing)
	}

	errs := csvimport.NewErrors(maxImportErrors)
	rows, err := parser.ReadAll(errs)
	if err != nil {
		return nil, fileError(err)
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "CSV file contains no data rows")
	}

	result := &ImportResult{TotalRows: len(rows), DryRun: req.DryRun}
	planned := make([]importRow, 0, len(rows))
	for _, row := range rows {
		if !validator.Validate(row, errs) {
			continue
		}
		ir, ok := parseImportRow(tenantID, row, errs)
		if ok {
			planned = append(planned, ir)
		}
	}

	existing, err := s.existingByCode(ctx, tenantID, planned)
	if err != nil {
		return nil, err
	}
	for _, ir := range planned {
		if _, found := existing[ir.code]; found && mode == ConflictFail {
			errs.Addf(ir.line, colCode, csvimport.CodeConflict, ir.code, "product %s already exists", ir.code)
		}
	}
	if errs.HasErrors() {
		result.Errors = errs.Items()
		result.TotalErrors = errs.Total()
		result.Truncated = errs.Truncated()
		result.ErrorRows = errs.FailedRows()
		return result, nil
	}

	var touched []shared.AggregateRoot
	apply := func(products catalog.ProductRepository) error {
		for _, ir := range planned {
			current, found := existing[ir.code]
			switch {
			case !found:
				p, err := catalog.NewProduct(tenantID, ir.code, ir.details)
				if err != nil {
					return err
				}
				if req.CreatedBy != nil {
					p.SetCreatedBy(*req.CreatedBy)
				}
				if !req.DryRun {
					if err := products.Save(ctx, p); err != nil {
						return err
					}
				}
				touched = append(touched, p)
				result.Created++
			case mode == ConflictUpdate:
				p := current
				if ir.details.Unit != p.Unit {
					stocked, err := products.HasStockHistory(ctx, tenantID, p.ID)
					if err != nil {
						return err
					}
					if stocked {
						return shared.NewDomainErrorf("INVALID_STATE", "Unit of %s cannot change after it has been stocked", p.Code).
							WithDetail("row", ir.line)
					}
				}
				if err := p.Update(ir.details); err != nil {
					return err
				}
				if !req.DryRun {
					if err := products.SaveWithLock(ctx, p); err != nil {
						return err
					}
				}
				touched = append(touched, p)
				result.Updated++
			default:
				result.Skipped++
			}
		}
		return nil
	}

	if req.DryRun {
		if err := apply(s.productRepo); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		return apply(repos.Products())
	}); err != nil {
		return nil, err
	}
	_ = shared.PublishAndClear(ctx, s.eventPublisher, touched...)

	s.logger.Info("product catalogue imported",
		zap.String("tenant_id", tenantID.String()),
		zap.String("mode", string(mode)),
		zap.Int("rows", result.TotalRows),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *ProductImportService) existingByCode(ctx context.Context, tenantID uuid.UUID, rows []importRow) (map[string]*catalog.Product, error) {
	codes := make([]string, len(rows))
	for i, ir := range rows {
		codes[i] = ir.code
	}
	products, err := s.productRepo.FindByCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byCode[products[i].Code] = &products[i]
	}
	return byCode, nil
}

// parseImportRow runs the domain checks the column rules cannot express
func parseImportRow(tenantID uuid.UUID, row csvimport.Row, errs *csvimport.Errors) (importRow, bool) {
	d := catalog.Details{
		Name:         row.Get(colName),
		Category:     catalog.Category(strings.ToLower(row.Get(colCategory))),
		Unit:         catalog.Unit(strings.ToLower(row.Get(colUnit))),
		HSNCode:      row.Get(colHSNCode),
		GSTRate:      decimalOr(row.Get(colGSTRate), decimal.NewFromInt(18)),
		ReorderLevel: decimalOr(row.Get(colReorderLevel), decimal.Zero),
	}
	p, err := catalog.NewProduct(tenantID, row.Get(colCode), d)
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) {
			errs.Addf(row.Line, columnFor(de.Code), csvimport.CodeInvalid, "", "%s", de.Message)
			return importRow{}, false
		}
		errs.Addf(row.Line, "", csvimport.CodeInvalid, "", "%s", err.Error())
		return importRow{}, false
	}
	return importRow{line: row.Line, code: p.Code, details: d}, true
}

func columnFor(code string) string {
	switch code {
	case "INVALID_CODE":
		return colCode
	case "INVALID_NAME":
		return colName
	case "INVALID_HSN":
		return colHSNCode
	}
	return ""
}

func decimalOr(v string, fallback decimal.Decimal) decimal.Decimal {
	if v == "" {
		return fallback
	}
	return decimal.RequireFromString(v)
}

func fileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrInvalidHeader):
		return shared.NewDomainError("INVALID_FILE", err.Error())
	case errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewDomainErrorf("INVALID_FILE", "File exceeds %d rows", MaxImportRows)
	}
	return err
}
