package billing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// TaxSplit is the GST on one taxable amount
type TaxSplit struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Total returns the combined tax
func (t TaxSplit) Total() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

// IsIntraState reports whether supplier and place of supply share a state
func IsIntraState(supplierState, placeOfSupply string) bool {
	return supplierState != "" && supplierState == placeOfSupply
}

// ComputeTax splits GST on a taxable amount. Intra-state supplies carry
// half the rate as CGST and half as SGST, each rounded to paise, so both
// halves are always equal. Inter-state supplies carry IGST.
func ComputeTax(taxable, rate decimal.Decimal, intraState bool) TaxSplit {
	if intraState {
		half := taxable.Mul(rate).Div(hundred).Div(two).Round(2)
		return TaxSplit{CGST: half, SGST: half, IGST: decimal.Zero}
	}
	return TaxSplit{
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: taxable.Mul(rate).Div(hundred).Round(2),
	}
}
