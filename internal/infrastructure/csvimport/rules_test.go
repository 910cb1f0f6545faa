package csvimport

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOf(t *testing.T, csv string) Row {
	t.Helper()
	p, err := NewParser(strings.NewReader(csv))
	require.NoError(t, err)
	row, err := p.Next()
	require.NoError(t, err)
	return row
}

func TestValidator(t *testing.T) {
	v := NewValidator(
		Column("code").Required().Unique().MaxLength(5).Build(),
		Column("unit").Required().OneOf("bag", "kg").Build(),
		Column("rate").Decimal().Min(decimal.Zero).Max(decimal.NewFromInt(28)).Build(),
		Column("hsn").Check(func(s string) error {
			if len(s) < 4 {
				return errors.New("too short")
			}
			return nil
		}).Build(),
	)
	assert.Equal(t, []string{"code", "unit"}, v.RequiredColumns())

	tests := []struct {
		name   string
		row    string
		column string
		code   string
	}{
		{"valid", "A1,bag,18,2523", "", ""},
		{"required", ",bag,,", "code", CodeRequired},
		{"too long", "ABCDEF,bag,,", "code", CodeTooLong},
		{"not in set", "A2,litre,,", "unit", CodeInvalid},
		{"unit case-insensitive", "A3,BAG,,", "", ""},
		{"not a number", "A4,kg,abc,", "rate", CodeInvalid},
		{"below min", "A5,kg,-1,", "rate", CodeOutOfRange},
		{"above max", "A6,kg,40,", "rate", CodeOutOfRange},
		{"custom check", "A7,kg,,12", "hsn", CodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewErrors(10)
			ok := v.Validate(rowOf(t, "code,unit,rate,hsn\n"+tt.row+"\n"), errs)
			if tt.code == "" {
				assert.True(t, ok)
				assert.False(t, errs.HasErrors())
				return
			}
			assert.False(t, ok)
			require.Len(t, errs.Items(), 1)
			assert.Equal(t, tt.column, errs.Items()[0].Column)
			assert.Equal(t, tt.code, errs.Items()[0].Code)
			assert.Equal(t, 2, errs.Items()[0].Row)
		})
	}
}

func TestValidator_UniqueAcrossRows(t *testing.T) {
	v := NewValidator(Column("code").Unique().Build())
	p, err := NewParser(strings.NewReader("code\nopc\nOPC\ntmt\n"))
	require.NoError(t, err)
	errs := NewErrors(10)
	rows, err := p.ReadAll(errs)
	require.NoError(t, err)

	var passed int
	for _, r := range rows {
		if v.Validate(r, errs) {
			passed++
		}
	}
	assert.Equal(t, 2, passed)
	require.Equal(t, 1, errs.Total())
	assert.Equal(t, CodeDuplicate, errs.Items()[0].Code)
	assert.Equal(t, 3, errs.Items()[0].Row)
	assert.Contains(t, errs.Items()[0].Message, "row 2")
}

func TestErrors_Limit(t *testing.T) {
	errs := NewErrors(2)
	for i := range 5 {
		errs.Addf(i+2, "code", CodeRequired, "", "code is required")
	}
	errs.Addf(3, "name", CodeRequired, "", "name is required")

	assert.Len(t, errs.Items(), 2)
	assert.Equal(t, 6, errs.Total())
	assert.True(t, errs.Truncated())
	assert.Equal(t, 5, errs.FailedRows())
	assert.True(t, errs.RowFailed(3))
	assert.False(t, errs.RowFailed(9))

	assert.Equal(t, DefaultErrorLimit, NewErrors(0).limit)
	assert.Equal(t, `row 2, column "code": code is required`, (&errs.Items()[0]).Error())
}
