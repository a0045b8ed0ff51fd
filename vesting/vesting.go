/*
Package vesting derives vested unit counts from a grant's schedule.

PURPOSE:
  VestedUnits is the vesting model: given granted units and elapsed
  periods it returns how many units are owned under the selected curve.
  It is a pure function; the curve formulas live in curves.go and are
  dispatched through the generic curve registry.

CLIFF CONVENTION:
  The cliff boundary is inclusive of the first vesting event:
    elapsed <  cliff  -> 0 (no partial vesting before the cliff)
    elapsed == cliff  -> curve evaluated at progress 0
                         (0 for linear/power curves, 25% for cliff_heavy)
  A schedule row is a cliff period when p <= cliff.

GUARDS (evaluated in order, before any division):
  1. Preconditions -> *generic.InvalidInputError
  2. elapsed < cliff -> 0
  3. span = vesting - cliff <= 0 -> total (cliff consumes the schedule)
  4. done = elapsed - cliff >= span -> total
  5. curve formula, clamped to [0, total]

SEE ALSO:
  - curves.go: Curve formulas
  - schedule/builder.go: Calls VestedUnits once per period
*/
package vesting

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

// VestedUnits returns units vested after elapsed periods.
func VestedUnits(total, elapsed decimal.Decimal, vestingPeriods, cliffPeriods int, curveType generic.CurveType) (decimal.Decimal, error) {
	if total.IsNegative() {
		return decimal.Zero, invalid("total_units", total.String(), "must not be negative")
	}
	if elapsed.IsNegative() {
		return decimal.Zero, invalid("elapsed", elapsed.String(), "must not be negative")
	}
	if vestingPeriods <= 0 {
		return decimal.Zero, invalid("vesting_periods", fmt.Sprint(vestingPeriods), "must be positive")
	}
	if cliffPeriods < 0 || cliffPeriods > vestingPeriods {
		return decimal.Zero, invalid("cliff_periods", fmt.Sprint(cliffPeriods), "must be within [0, vesting_periods]")
	}
	curve := generic.LookupCurve(curveType)
	if curve == nil {
		return decimal.Zero, invalid("curve", string(curveType), "unknown vesting curve")
	}

	cliff := decimal.NewFromInt(int64(cliffPeriods))
	if elapsed.LessThan(cliff) {
		return decimal.Zero, nil
	}

	span, err := Span(vestingPeriods, cliffPeriods, curveType)
	if errors.Is(err, generic.ErrDegenerateConfiguration) {
		return total, nil
	}

	done := elapsed.Sub(cliff)
	if done.GreaterThanOrEqual(span) {
		return total, nil
	}

	return generic.Clamp(curve.Vest(total, done, span), decimal.Zero, total), nil
}

// Span returns the post-cliff vesting span. A cliff that consumes the whole
// schedule leaves no divisor for the curve formulas and is reported as a
// *generic.DegenerateConfigurationError.
func Span(vestingPeriods, cliffPeriods int, curveType generic.CurveType) (decimal.Decimal, error) {
	if vestingPeriods-cliffPeriods <= 0 {
		return decimal.Zero, &generic.DegenerateConfigurationError{
			VestingPeriods: vestingPeriods,
			CliffPeriods:   cliffPeriods,
			Curve:          curveType,
		}
	}
	return decimal.NewFromInt(int64(vestingPeriods - cliffPeriods)), nil
}

// VestedAt is VestedUnits with an integer period offset.
func VestedAt(g generic.Grant, period int) (decimal.Decimal, error) {
	return VestedUnits(g.TotalUnits, decimal.NewFromInt(int64(period)), g.VestingPeriods, g.CliffPeriods, g.Curve)
}

// Progress returns vested units as a percentage of the grant.
func Progress(vested, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return vested.Mul(decimal.NewFromInt(100)).Div(total)
}

func invalid(field, value, reason string) error {
	return &generic.InvalidInputError{Field: field, Value: value, Reason: reason}
}

// Curves lists every registered curve, sorted by tag.
func Curves() []generic.VestingCurve {
	return generic.ListCurves()
}

// Lookup returns the curve registered for t, or nil.
func Lookup(t generic.CurveType) generic.VestingCurve {
	return generic.LookupCurve(t)
}
