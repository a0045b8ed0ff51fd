/*
Package generic provides the shared data model of the equity valuation engine.

PURPOSE:
  This package contains the input value types every engine component
  consumes: the grant being valued, the market assumptions used to project
  its price, and the tax policy applied to realized gains. Components in
  vesting/, market/, returns/, tax/ and schedule/ depend on these types;
  this package depends on none of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Grant: Units granted, exercise price, vesting length, cliff, curve
  - MarketState: Base share price, annual growth, outstanding shares
  - TaxPolicy: Qualified flag and holding period in years
  - CurveType / PeriodUnit / TaxRegime: Tagged enumerations parsed from text

DESIGN PRINCIPLES:
  1. Immutability: All types are plain values, created per calculation
  2. Precision: Uses decimal.Decimal for units and money
  3. Eager validation: Validate() reports the first offending field
  4. No derived state: GrantedPercentage is computed on demand, never stored

USAGE:
  grant := generic.Grant{
      TotalUnits:     decimal.NewFromInt(48000),
      ExercisePrice:  decimal.NewFromInt(1000),
      VestingPeriods: 4,
      CliffPeriods:   1,
      Curve:          generic.CurveLinear,
  }
  if err := grant.Validate(); err != nil {
      // err is a *InvalidInputError naming the field
  }

SEE ALSO:
  - errors.go: InvalidInput and DegenerateConfiguration taxonomy
  - period.go: Period units and year fractions
  - vesting/vesting.go: Consumes Grant fields
*/
package generic

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// CurveType selects the shape of a vesting schedule.
type CurveType string

const (
	CurveLinear      CurveType = "linear"      // Equal tranches after the cliff
	CurveBackloaded  CurveType = "backloaded"  // Slow start, accelerates near the end
	CurveFrontloaded CurveType = "frontloaded" // Fast start, decelerates near the end
	CurveCliffHeavy  CurveType = "cliff_heavy" // 25% released at the cliff, rest linear
)

// ParseCurveType converts a curve tag into a CurveType.
// Accepts "cliff-heavy" as an alias; matching is case-insensitive.
func ParseCurveType(s string) (CurveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return CurveLinear, nil
	case "backloaded", "back_loaded", "back-loaded":
		return CurveBackloaded, nil
	case "frontloaded", "front_loaded", "front-loaded":
		return CurveFrontloaded, nil
	case "cliff_heavy", "cliff-heavy", "cliffheavy":
		return CurveCliffHeavy, nil
	}
	return "", &InvalidInputError{Field: "curve", Value: s, Reason: "unknown vesting curve"}
}

// Valid reports whether c is one of the known curve constants.
func (c CurveType) Valid() bool {
	switch c {
	case CurveLinear, CurveBackloaded, CurveFrontloaded, CurveCliffHeavy:
		return true
	}
	return false
}

// TaxRegime is the text form of the TaxPolicy.Qualified flag.
type TaxRegime string

const (
	RegimeQualified    TaxRegime = "qualified"
	RegimeNonQualified TaxRegime = "non_qualified"
)

// ParseTaxRegime converts a regime tag into the qualified flag.
func ParseTaxRegime(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qualified", "":
		return true, nil
	case "non_qualified", "non-qualified", "nonqualified", "unqualified":
		return false, nil
	}
	return false, &InvalidInputError{Field: "tax.regime", Value: s, Reason: "unknown tax regime"}
}

// =============================================================================
// GRANT - What was granted and how it vests
// =============================================================================

type Grant struct {
	TotalUnits     decimal.Decimal
	ExercisePrice  decimal.Decimal // Zero for RSUs
	VestingPeriods int
	CliffPeriods   int
	Curve          CurveType
	Unit           PeriodUnit // Defaults to years

	// Optional. When set, schedule rows carry a vest date.
	StartDate TimePoint
}

// Validate checks grant preconditions in field order.
func (g Grant) Validate() error {
	if g.TotalUnits.IsNegative() {
		return invalid("grant.total_units", g.TotalUnits, "must not be negative")
	}
	if g.ExercisePrice.IsNegative() {
		return invalid("grant.exercise_price", g.ExercisePrice, "must not be negative")
	}
	if g.VestingPeriods <= 0 {
		return invalid("grant.vesting_periods", g.VestingPeriods, "must be positive")
	}
	if g.CliffPeriods < 0 {
		return invalid("grant.cliff_periods", g.CliffPeriods, "must not be negative")
	}
	if g.CliffPeriods > g.VestingPeriods {
		return invalid("grant.cliff_periods", g.CliffPeriods, "must not exceed vesting_periods")
	}
	if !g.Curve.Valid() {
		return invalid("grant.curve", g.Curve, "unknown vesting curve")
	}
	if !g.PeriodUnit().Valid() {
		return invalid("grant.period_unit", g.Unit, "must be year or month")
	}
	return nil
}

// PeriodUnit returns the grant's period unit, defaulting to years.
func (g Grant) PeriodUnit() PeriodUnit {
	if g.Unit == "" {
		return UnitYear
	}
	return g.Unit
}

// =============================================================================
// MARKET STATE - Price projection inputs
// =============================================================================

type MarketState struct {
	BasePrice         decimal.Decimal
	AnnualGrowthRate  decimal.Decimal // 0.2 = 20% per year; must stay above -1
	OutstandingShares int64
}

var minusOne = decimal.NewFromInt(-1)

// Validate checks market preconditions in field order.
func (m MarketState) Validate() error {
	if !m.BasePrice.IsPositive() {
		return invalid("market.base_price", m.BasePrice, "must be positive")
	}
	if m.AnnualGrowthRate.LessThanOrEqual(minusOne) {
		return invalid("market.annual_growth_rate", m.AnnualGrowthRate, "must be greater than -1")
	}
	if m.OutstandingShares <= 0 {
		return invalid("market.outstanding_shares", m.OutstandingShares, "must be positive")
	}
	return nil
}

// GrantedPercentage returns units as a percentage of outstanding shares.
func (m MarketState) GrantedPercentage(units decimal.Decimal) decimal.Decimal {
	if m.OutstandingShares <= 0 {
		return decimal.Zero
	}
	return units.Mul(hundred).Div(decimal.NewFromInt(m.OutstandingShares))
}

// =============================================================================
// TAX POLICY
// =============================================================================

type TaxPolicy struct {
	Qualified          bool
	HoldingPeriodYears int
}

func (t TaxPolicy) Validate() error {
	if t.HoldingPeriodYears < 0 {
		return invalid("tax.holding_period_years", t.HoldingPeriodYears, "must not be negative")
	}
	return nil
}

// Regime returns the tag form of the policy.
func (t TaxPolicy) Regime() TaxRegime {
	if t.Qualified {
		return RegimeQualified
	}
	return RegimeNonQualified
}

// =============================================================================
// COMPANY - Reusable market assumptions
// =============================================================================

type CompanyID string

// Company stores the market side of a simulation so callers can reference
// it by ID. It never carries grant data.
type Company struct {
	ID                CompanyID
	Name              string
	OutstandingShares int64
	SharePrice        decimal.Decimal
	AnnualGrowthRate  decimal.Decimal
	CreatedAt         TimePoint
}

// MarketState converts the profile into engine input.
func (c Company) MarketState() MarketState {
	return MarketState{
		BasePrice:         c.SharePrice,
		AnnualGrowthRate:  c.AnnualGrowthRate,
		OutstandingShares: c.OutstandingShares,
	}
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(v, hi))
}

// NonNegative floors v at zero.
func NonNegative(v decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, v)
}

// PowFrac raises a non-negative base to any non-negative exponent.
// Integral exponents are computed by repeated squaring rounded to
// powPlaces decimal places; fractional ones go through float64. Results
// above 10^maxPowDigits are rejected rather than computed.
func PowFrac(base, exp decimal.Decimal) (decimal.Decimal, error) {
	if exp.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	b, e := base.InexactFloat64(), exp.InexactFloat64()
	if base.IsPositive() && e*math.Log10(b) > maxPowDigits {
		return decimal.Zero, powOverflow(base, exp)
	}
	if exp.IsInteger() {
		return powInt(base, exp.IntPart()), nil
	}
	r := math.Pow(b, e)
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return decimal.Zero, powOverflow(base, exp)
	}
	return decimal.NewFromFloat(r), nil
}

const (
	powPlaces    = 32
	maxPowDigits = 300
)

// powInt keeps intermediate products at powPlaces so long schedules do not
// accumulate thousands of fractional digits.
func powInt(base decimal.Decimal, n int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powPlaces)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Round(powPlaces)
		}
	}
	return result
}

func powOverflow(base, exp decimal.Decimal) error {
	return &InvalidInputError{
		Field:  "exponent",
		Value:  fmt.Sprintf("%s^%s", base, exp),
		Reason: "result exceeds the representable range",
	}
}

// DecimalFromFloat converts a decoded number, rejecting the infinities and
// NaN that YAML can express. field names the value in the error.
func DecimalFromFloat(field string, v float64) (decimal.Decimal, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return decimal.Zero, invalid(field, v, "must be a finite number")
	}
	return decimal.NewFromFloat(v), nil
}

func invalid(field string, value any, reason string) error {
	return &InvalidInputError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}
