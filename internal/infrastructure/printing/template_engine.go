package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const invoiceTemplate = "templates/bill_invoice.html"

// TemplateEngine handles rendering HTML templates with business data.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
	invoice *template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a template engine and parses the embedded invoice
// layout. It fails only if the embedded template is broken.
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{}
	e.funcMap = template.FuncMap{
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,

		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		"formatDecimal": formatDecimal,
		"formatPercent": formatPercent,

		"upper":   strings.ToUpper,
		"title":   titleCase,
		"trim":    strings.TrimSpace,
		"default": defaultString,

		"add": add,
		"inc": func(i int) int { return i + 1 },

		"statusText": statusText,
	}
	for _, opt := range opts {
		opt(e)
	}

	content, err := templateFS.ReadFile(invoiceTemplate)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "invoice template missing", err)
	}
	e.invoice, err = template.New("bill_invoice").Funcs(e.funcMap).Parse(string(content))
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse invoice template", err)
	}
	return e, nil
}

// Party is a name and tax identity printed on a document
type Party struct {
	Name      string
	GSTIN     string
	StateCode string
	Address   string
	Phone     string
	Email     string
}

// InvoiceData is everything the invoice layout binds to
type InvoiceData struct {
	Bill        *billing.Bill
	Supplier    Party
	Buyer       Party
	ProjectCode string
	ProjectName string
	SiteAddress string
	Payments    []billing.Payment
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderInvoice renders the tax invoice for a bill
func (e *TemplateEngine) RenderInvoice(ctx context.Context, data *InvoiceData) (string, error) {
	if data == nil || data.Bill == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice has no bill", nil)
	}
	var buf bytes.Buffer
	if err := e.invoice.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// formatMoney formats a value as rupees with Indian digit grouping
// Example: 1234567.8 -> "₹12,34,567.80"
func formatMoney(v interface{}) string {
	return "₹" + formatMoneyRaw(v)
}

// formatMoneyRaw groups the last three digits, then pairs
// Example: 1234567.8 -> "12,34,567.80"
func formatMoneyRaw(v interface{}) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}
	if len(intPart) <= 3 {
		return sign + intPart + "." + decPart
	}

	head := intPart[:len(intPart)-3]
	tail := intPart[len(intPart)-3:]
	var result strings.Builder
	for i, c := range head {
		if i > 0 && (len(head)-i)%2 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "," + tail + "." + decPart
}

// formatDate formats a time value as dd-mm-yyyy
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006")
}

func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006 15:04")
}

func formatDecimal(v interface{}, precision int) string {
	return toDecimal(v).StringFixed(int32(precision))
}

// formatPercent drops trailing zeros
// Example: 18 -> "18%", 2.5 -> "2.5%"
func formatPercent(v interface{}) string {
	return toDecimal(v).String() + "%"
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

func defaultString(def, val string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}

func add(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Add(toDecimal(b))
}

func statusText(status interface{}) string {
	switch s := fmt.Sprint(status); s {
	case string(billing.BillDraft):
		return "DRAFT"
	case string(billing.BillCancelled):
		return "CANCELLED"
	case string(billing.BillPaid):
		return "PAID"
	default:
		return ""
	}
}

// toDecimal converts various numeric types to decimal.Decimal
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts various types to time.Time
func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			t, _ = time.Parse("2006-01-02", val)
		}
		return t
	default:
		return time.Time{}
	}
}
