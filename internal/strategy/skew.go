package strategy

import (
	"github.com/shopspring/decimal"
)

// SkewQuotes shifts both sides of a quote down by phi*inventory. A long book
// lowers the quotes to encourage sells at the ask; a short book raises them.
func SkewQuotes(bid, ask decimal.Decimal, inventory int64, phi decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	skew := phi.Mul(decimal.NewFromInt(inventory))
	return bid.Sub(skew), ask.Sub(skew)
}

// EnforceNoCross lifts the ask so the quote keeps at least minSpread width
// after skewing.
func EnforceNoCross(bid, ask, minSpread decimal.Decimal) decimal.Decimal {
	if floor := bid.Add(minSpread); ask.Cmp(floor) < 0 {
		return floor
	}
	return ask
}
