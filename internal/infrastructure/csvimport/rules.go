package csvimport

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the expected shape of a cell
type Kind int

const (
	KindText Kind = iota
	KindDecimal
)

// Rule constrains one column
type Rule struct {
	Column   string
	Kind     Kind
	Required bool
	Unique   bool
	MaxLen   int
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	OneOf    []string
	Check    func(value string) error
}

// RuleBuilder builds a Rule fluently
type RuleBuilder struct {
	rule Rule
}

// Column starts a rule for a text column
func Column(name string) *RuleBuilder {
	return &RuleBuilder{rule: Rule{Column: normalizeHeader(name)}}
}

func (b *RuleBuilder) Required() *RuleBuilder {
	b.rule.Required = true
	return b
}

// Unique rejects a value seen on an earlier row (case-insensitive)
func (b *RuleBuilder) Unique() *RuleBuilder {
	b.rule.Unique = true
	return b
}

func (b *RuleBuilder) Decimal() *RuleBuilder {
	b.rule.Kind = KindDecimal
	return b
}

func (b *RuleBuilder) MaxLength(n int) *RuleBuilder {
	b.rule.MaxLen = n
	return b
}

func (b *RuleBuilder) Min(v decimal.Decimal) *RuleBuilder {
	b.rule.Min = &v
	return b
}

func (b *RuleBuilder) Max(v decimal.Decimal) *RuleBuilder {
	b.rule.Max = &v
	return b
}

// OneOf restricts the value to a closed set, compared case-insensitively
func (b *RuleBuilder) OneOf(values ...string) *RuleBuilder {
	b.rule.OneOf = values
	return b
}

// Check adds a custom check run after the built-in ones pass
func (b *RuleBuilder) Check(fn func(value string) error) *RuleBuilder {
	b.rule.Check = fn
	return b
}

func (b *RuleBuilder) Build() Rule {
	return b.rule
}

// Validator applies rules to rows and tracks in-file uniqueness
type Validator struct {
	rules []Rule
	seen  map[string]map[string]int
}

// NewValidator creates a Validator. Rules run in the order given.
func NewValidator(rules ...Rule) *Validator {
	return &Validator{rules: rules, seen: make(map[string]map[string]int)}
}

// RequiredColumns lists the columns a header must carry
func (v *Validator) RequiredColumns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// Validate checks a row, adding every failure to errs. It reports whether the row passed.
func (v *Validator) Validate(row Row, errs *Errors) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.check(rule, row, errs) {
			ok = false
		}
	}
	return ok
}

func (v *Validator) check(rule Rule, row Row, errs *Errors) bool {
	value := row.Get(rule.Column)
	if value == "" {
		if rule.Required {
			errs.Addf(row.Line, rule.Column, CodeRequired, "", "%s is required", rule.Column)
			return false
		}
		return true
	}

	if rule.MaxLen > 0 && utf8.RuneCountInString(value) > rule.MaxLen {
		errs.Addf(row.Line, rule.Column, CodeTooLong, value, "must be at most %d characters", rule.MaxLen)
		return false
	}
	if rule.Kind == KindDecimal {
		d, err := decimal.NewFromString(value)
		if err != nil {
			errs.Addf(row.Line, rule.Column, CodeInvalid, value, "must be a number")
			return false
		}
		if rule.Min != nil && d.LessThan(*rule.Min) {
			errs.Addf(row.Line, rule.Column, CodeOutOfRange, value, "must be at least %s", rule.Min)
			return false
		}
		if rule.Max != nil && d.GreaterThan(*rule.Max) {
			errs.Addf(row.Line, rule.Column, CodeOutOfRange, value, "must be at most %s", rule.Max)
			return false
		}
	}
	if len(rule.OneOf) > 0 && !slices.Contains(rule.OneOf, strings.ToLower(value)) {
		errs.Addf(row.Line, rule.Column, CodeInvalid, value, "must be one of %s", strings.Join(rule.OneOf, ", "))
		return false
	}
	if rule.Check != nil {
		if err := rule.Check(value); err != nil {
			errs.Addf(row.Line, rule.Column, CodeInvalid, value, "%s", err.Error())
			return false
		}
	}
	if rule.Unique {
		seen := v.seen[rule.Column]
		if seen == nil {
			seen = make(map[string]int)
			v.seen[rule.Column] = seen
		}
		key := strings.ToUpper(value)
		if first, dup := seen[key]; dup {
			errs.Addf(row.Line, rule.Column, CodeDuplicate, value, "duplicate of row %d", first)
			return false
		}
		seen[key] = row.Line
	}
	return true
}
