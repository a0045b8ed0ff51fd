// Package returns computes the monetary value of vested units.
//
// Every function is pure and takes already-vested units. Gains are floored
// at zero: an out-of-the-money holder simply does not exercise, so a grant
// never contributes negative value.
package returns

import (
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

// GrossReturn is the intrinsic value of vested units: max(0, price − exercise) × units.
func GrossReturn(currentPrice, exercisePrice, units decimal.Decimal) decimal.Decimal {
	return generic.NonNegative(currentPrice.Sub(exercisePrice)).Mul(units)
}

// ExerciseCost is the cash needed to exercise vested units.
func ExerciseCost(exercisePrice, units decimal.Decimal) decimal.Decimal {
	return exercisePrice.Mul(units)
}

// SaleGain is the gain realized between exercise and a later sale.
func SaleGain(futurePrice, currentPrice, units decimal.Decimal) decimal.Decimal {
	return generic.NonNegative(futurePrice.Sub(currentPrice)).Mul(units)
}

// MarketValue is the market value of units at price, ignoring the exercise price.
func MarketValue(price, units decimal.Decimal) decimal.Decimal {
	return price.Mul(units)
}

// Breakdown groups the returns of one position at a current and a future price.
type Breakdown struct {
	CurrentReturn decimal.Decimal
	FutureReturn  decimal.Decimal
	CurrentValue  decimal.Decimal
	FutureValue   decimal.Decimal
	ExerciseCost  decimal.Decimal

	// Tax engine inputs: ExerciseGain is taxed at exercise, SaleGain at sale.
	ExerciseGain decimal.Decimal
	SaleGain     decimal.Decimal
}

// Compute fills a Breakdown for units held from currentPrice to futurePrice.
func Compute(currentPrice, futurePrice, exercisePrice, units decimal.Decimal) Breakdown {
	current := GrossReturn(currentPrice, exercisePrice, units)
	return Breakdown{
		CurrentReturn: current,
		FutureReturn:  GrossReturn(futurePrice, exercisePrice, units),
		CurrentValue:  MarketValue(currentPrice, units),
		FutureValue:   MarketValue(futurePrice, units),
		ExerciseCost:  ExerciseCost(exercisePrice, units),
		ExerciseGain:  current,
		SaleGain:      SaleGain(futurePrice, currentPrice, units),
	}
}
