package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cementDetails() Details {
	return Details{
		Name:         "OPC 53 Cement",
		Category:     CategoryCement,
		Unit:         UnitBag,
		HSNCode:      "2523",
		GSTRate:      decimal.NewFromInt(28),
		ReorderLevel: decimal.NewFromInt(50),
	}
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(uuid.New(), "cem-53", cementDetails())
	require.NoError(t, err)
	assert.Equal(t, "CEM-53", p.Code)
	assert.True(t, p.IsActive())

	t.Run("invalid fields", func(t *testing.T) {
		cases := map[string]func(d *Details){
			"category":      func(d *Details) { d.Category = "food" },
			"unit":          func(d *Details) { d.Unit = "gallon" },
			"hsn letters":   func(d *Details) { d.HSNCode = "25A3" },
			"hsn short":     func(d *Details) { d.HSNCode = "25" },
			"gst slab":      func(d *Details) { d.GSTRate = decimal.NewFromInt(15) },
			"reorder level": func(d *Details) { d.ReorderLevel = decimal.NewFromInt(-1) },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				d := cementDetails()
				mutate(&d)
				_, err := NewProduct(uuid.New(), "X", d)
				assert.Error(t, err)
			})
		}
	})
}

func TestProductStatus(t *testing.T) {
	p, err := NewProduct(uuid.New(), "TMT-12", Details{Name: "TMT 12mm", Category: CategorySteel, Unit: UnitKg, GSTRate: decimal.NewFromInt(18)})
	require.NoError(t, err)
	require.NoError(t, p.Deactivate())
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
	assert.Equal(t, 3, p.GetVersion())
}
