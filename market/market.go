/*
Package market projects share price and market capitalization.

PURPOSE:
  PriceAt compounds a base price at an annual growth rate; MarketCap and
  PriceFromMarketCap convert between price and capitalization for a given
  share count. ImpliedGrowthRate recovers the annual rate that takes one
  market cap to another over a number of years, which lets callers state
  their assumptions as "today's cap" and "cap in N years".

PRECISION:
  Whole-year offsets are computed exactly with decimal powers. Fractional
  offsets (monthly schedules) go through float64; the error is far below a
  currency cent for any realistic price.

EXAMPLE:
  price, _ := market.PriceAt(decimal.NewFromInt(5000), decimal.NewFromFloat(0.2), decimal.NewFromInt(4))
  // 10368

SEE ALSO:
  - generic/period.go: YearFraction for monthly offsets
  - schedule/builder.go: Prices each schedule period
*/
package market

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

var (
	one      = decimal.NewFromInt(1)
	minusOne = decimal.NewFromInt(-1)

	// Prices above this cannot be reported as float64 once multiplied by
	// a share count.
	maxPrice = decimal.New(1, 250)
)

// PriceAt returns base × (1 + annualRate)^yearsOffset.
func PriceAt(base, annualRate, yearsOffset decimal.Decimal) (decimal.Decimal, error) {
	if !base.IsPositive() {
		return decimal.Zero, invalid("base_price", base.String(), "must be positive")
	}
	if annualRate.LessThanOrEqual(minusOne) {
		return decimal.Zero, invalid("annual_growth_rate", annualRate.String(), "must be greater than -1")
	}
	if yearsOffset.IsNegative() {
		return decimal.Zero, invalid("years_offset", yearsOffset.String(), "must not be negative")
	}
	if yearsOffset.IsZero() {
		return base, nil
	}
	growth, err := generic.PowFrac(one.Add(annualRate), yearsOffset)
	if err == nil && base.Mul(growth).GreaterThan(maxPrice) {
		err = generic.ErrInvalidInput
	}
	if err != nil {
		return decimal.Zero, invalid("annual_growth_rate", annualRate.String(), "projected price exceeds the representable range")
	}
	return base.Mul(growth), nil
}

// MarketCap returns price × outstanding shares.
func MarketCap(price decimal.Decimal, outstandingShares int64) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, invalid("price", price.String(), "must be positive")
	}
	if outstandingShares <= 0 {
		return decimal.Zero, invalid("outstanding_shares", fmt.Sprint(outstandingShares), "must be positive")
	}
	return price.Mul(decimal.NewFromInt(outstandingShares)), nil
}

// PriceFromMarketCap returns marketCap / outstanding shares.
func PriceFromMarketCap(marketCap decimal.Decimal, outstandingShares int64) (decimal.Decimal, error) {
	if !marketCap.IsPositive() {
		return decimal.Zero, invalid("market_cap", marketCap.String(), "must be positive")
	}
	if outstandingShares <= 0 {
		return decimal.Zero, invalid("outstanding_shares", fmt.Sprint(outstandingShares), "must be positive")
	}
	return marketCap.Div(decimal.NewFromInt(outstandingShares)), nil
}

// ImpliedGrowthRate returns the annual rate r with current × (1+r)^years = future.
func ImpliedGrowthRate(currentCap, futureCap, years decimal.Decimal) (decimal.Decimal, error) {
	if !currentCap.IsPositive() {
		return decimal.Zero, invalid("current_market_cap", currentCap.String(), "must be positive")
	}
	if !futureCap.IsPositive() {
		return decimal.Zero, invalid("future_market_cap", futureCap.String(), "must be positive")
	}
	if !years.IsPositive() {
		return decimal.Zero, invalid("years", years.String(), "must be positive")
	}
	ratio := futureCap.Div(currentCap)
	if years.Equal(one) {
		return ratio.Sub(one), nil
	}
	growth, err := generic.PowFrac(ratio, one.Div(years))
	if err != nil {
		return decimal.Zero, invalid("future_market_cap", futureCap.String(), "implied growth exceeds the representable range")
	}
	return growth.Sub(one), nil
}

func invalid(field, value, reason string) error {
	return &generic.InvalidInputError{Field: field, Value: value, Reason: reason}
}
