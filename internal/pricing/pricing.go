// Package pricing computes sale totals. Every function is pure so the same
// inputs always produce the same breakdown, whether they come from a live
// cart mutation or a replayed commit.
package pricing

import "github.com/shopspring/decimal"

// Line is the pricing view of one cart line.
type Line struct {
	UnitPrice    decimal.Decimal
	Quantity     int
	LineDiscount decimal.Decimal
}

// Inputs gathers everything the calculator needs for one breakdown.
type Inputs struct {
	Lines          []Line
	TaxEnabled     bool
	TaxRate        decimal.Decimal
	GlobalDiscount decimal.Decimal
}

// Breakdown is the derived money view of a cart. It is recomputed on every
// mutation and never stored on its own.
type Breakdown struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	GlobalDiscount decimal.Decimal
	GrandTotal     decimal.Decimal
}

// LineSubtotal returns unitPrice * quantity - lineDiscount, unrounded.
func LineSubtotal(line Line) decimal.Decimal {
	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	return gross.Sub(line.LineDiscount)
}

// Compute derives the full breakdown. Intermediate sums stay unrounded;
// rounding happens once, at the grand total, half away from zero to two
// decimal places.
func Compute(in Inputs) Breakdown {
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		subtotal = subtotal.Add(LineSubtotal(line))
	}

	tax := decimal.Zero
	if in.TaxEnabled {
		tax = subtotal.Mul(in.TaxRate)
	}

	grand := subtotal.Add(tax).Sub(in.GlobalDiscount).Round(2)

	return Breakdown{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		GlobalDiscount: in.GlobalDiscount,
		GrandTotal:     grand,
	}
}

// ChangeDue returns max(0, tendered - grandTotal).
func ChangeDue(cashTendered, onlineTendered, grandTotal decimal.Decimal) decimal.Decimal {
	change := cashTendered.Add(onlineTendered).Sub(grandTotal)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// CoversTotal reports whether the tendered amounts pay for the grand total.
func CoversTotal(cashTendered, onlineTendered, grandTotal decimal.Decimal) bool {
	return cashTendered.Add(onlineTendered).GreaterThanOrEqual(grandTotal)
}

// DisplayTotal floors the grand total at zero for screens and receipts. The
// unfloored value still drives payment checks.
func DisplayTotal(grandTotal decimal.Decimal) decimal.Decimal {
	if grandTotal.IsNegative() {
		return decimal.Zero
	}
	return grandTotal
}
