/*
curves.go - Vesting curve implementations

PURPOSE:
  Implements generic.VestingCurve for the four supported shapes. Each
  curve answers one question: after `done` of `span` post-cliff periods,
  how many of `total` units are owned?

CURVES:
  Linear:
    - total × done/span
    - 48,000 units over 3 post-cliff years: 16,000 per year

  Backloaded:
    - total × (done/span)^1.5
    - Slow early vesting, accelerates toward the end

  Frontloaded:
    - total × (done/span)^0.7
    - Fast early vesting, decelerates toward the end

  CliffHeavy:
    - 25% tranche released at the cliff
    - Remaining 75% vests linearly over the span

EXAMPLE:
  curve := generic.LookupCurve(generic.CurveBackloaded)
  units := curve.Vest(total, decimal.NewFromInt(1), decimal.NewFromInt(3))

SEE ALSO:
  - generic/curve.go: VestingCurve interface and registry
  - vesting.go: Cliff gate, span guard and clamp around these formulas
*/
package vesting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

var (
	backloadedExponent  = decimal.NewFromFloat(1.5)
	frontloadedExponent = decimal.NewFromFloat(0.7)
	cliffTranche        = decimal.NewFromFloat(0.25)
	postCliffShare      = decimal.NewFromFloat(0.75)
)

func init() {
	generic.RegisterCurve(Linear{})
	generic.RegisterCurve(Backloaded{})
	generic.RegisterCurve(Frontloaded{})
	generic.RegisterCurve(CliffHeavy{})
}

// =============================================================================
// LINEAR
// =============================================================================

type Linear struct{}

func (Linear) Type() generic.CurveType { return generic.CurveLinear }
func (Linear) Description() string     { return "Equal tranches each period after the cliff" }

// Vest multiplies before dividing so whole-number schedules stay exact.
func (Linear) Vest(total, done, span decimal.Decimal) decimal.Decimal {
	return total.Mul(done).Div(span)
}

// =============================================================================
// POWER CURVES
// =============================================================================

type Backloaded struct{}

func (Backloaded) Type() generic.CurveType { return generic.CurveBackloaded }
func (Backloaded) Description() string     { return "Slow start, accelerating toward the end (progress^1.5)" }

func (Backloaded) Vest(total, done, span decimal.Decimal) decimal.Decimal {
	return total.Mul(progressPow(done.Div(span), backloadedExponent))
}

// progressPow raises a progress ratio in [0, 1) to a positive exponent. The
// result stays in [0, 1), so PowFrac cannot overflow here.
func progressPow(progress, exp decimal.Decimal) decimal.Decimal {
	v, _ := generic.PowFrac(progress, exp)
	return v
}

type Frontloaded struct{}

func (Frontloaded) Type() generic.CurveType { return generic.CurveFrontloaded }
func (Frontloaded) Description() string     { return "Fast start, decelerating toward the end (progress^0.7)" }

func (Frontloaded) Vest(total, done, span decimal.Decimal) decimal.Decimal {
	return total.Mul(progressPow(done.Div(span), frontloadedExponent))
}

// =============================================================================
// CLIFF HEAVY
// =============================================================================

type CliffHeavy struct{}

func (CliffHeavy) Type() generic.CurveType { return generic.CurveCliffHeavy }
func (CliffHeavy) Description() string {
	return "25% released at the cliff, remaining 75% linear over the rest"
}

func (CliffHeavy) Vest(total, done, span decimal.Decimal) decimal.Decimal {
	tranche := total.Mul(cliffTranche)
	rest := total.Mul(postCliffShare)
	return tranche.Add(decimal.Min(rest, rest.Mul(done).Div(span)))
}
