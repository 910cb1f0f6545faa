package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineInput struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
}

type partyInput struct {
	Name  string      `json:"name" binding:"required,min=2,max=10"`
	GSTIN string      `json:"gstin" binding:"omitempty,gstin"`
	Phone string      `json:"phone" binding:"omitempty,phone"`
	Kind  string      `json:"kind" binding:"omitempty,oneof=supplier contractor"`
	Lines []lineInput `json:"lines" binding:"dive"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidators(v))
	return v
}

func TestRegisterValidators(t *testing.T) {
	v := newValidator(t)
	one := decimal.NewFromInt(1)

	valid := partyInput{
		Name:  "Acme",
		GSTIN: "27aapfu0939f1zv",
		Phone: "+91 9876543210",
		Kind:  "supplier",
		Lines: []lineInput{{Quantity: one}},
	}
	assert.NoError(t, v.Struct(valid))

	tests := []struct {
		name  string
		tweak func(*partyInput)
		field string
		tag   string
	}{
		{"bad gstin", func(p *partyInput) { p.GSTIN = "27AAPFU0939F1X" }, "gstin", "gstin"},
		{"bad phone", func(p *partyInput) { p.Phone = "12345" }, "phone", "phone"},
		{"zero quantity", func(p *partyInput) { p.Lines[0].Quantity = decimal.Zero }, "lines[0].quantity", "decimal_gt0"},
		{"negative quantity", func(p *partyInput) { p.Lines[0].Quantity = decimal.NewFromInt(-3) }, "lines[0].quantity", "decimal_gt0"},
		{"short name", func(p *partyInput) { p.Name = "A" }, "name", "min"},
		{"bad kind", func(p *partyInput) { p.Kind = "owner" }, "kind", "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Lines = []lineInput{{Quantity: one}}
			tt.tweak(&in)

			details := ValidationDetails(v.Struct(in))
			require.Len(t, details, 1)
			assert.Equal(t, tt.field, details[0].Field)
			assert.Equal(t, tt.tag, details[0].Tag)
			assert.NotEqual(t, "Invalid value", details[0].Message)
		})
	}
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
	assert.Nil(t, ValidationDetails(nil))
}

func TestValidationMessages(t *testing.T) {
	v := newValidator(t)

	details := ValidationDetails(v.Struct(partyInput{Name: strings.Repeat("x", 11)}))
	require.Len(t, details, 1)
	assert.Equal(t, "Must be at most 10 characters", details[0].Message)

	details = ValidationDetails(v.Struct(partyInput{}))
	require.Len(t, details, 1)
	assert.Equal(t, "This field is required", details[0].Message)
}

func TestSetupValidator_GinBinding(t *testing.T) {
	require.NoError(t, SetupValidator())
	_, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	r := gin.New()
	r.POST("/test", func(c *gin.Context) {
		var in partyInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, ValidationDetails(err))
			return
		}
		c.String(http.StatusOK, in.Lines[0].Quantity.String())
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/test",
		strings.NewReader(`{"name":"Acme","lines":[{"quantity":"2.5"}]}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2.5", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/test",
		strings.NewReader(`{"name":"Acme","lines":[{"quantity":"0"}]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"lines[0].quantity"`)
}
