/*
Package tax applies a simplified two-regime tax model to realized gains.

PURPOSE:
  Compute turns an exercise gain and a sale gain into tax owed and the
  net-of-tax return. The model is a flat-rate approximation, not a
  progressive-bracket engine.

DECISION TABLE (first match wins):
  | rule                 | qualified | holding      | exercise tax   | sale tax                     | nominal |
  |----------------------|-----------|--------------|----------------|------------------------------|---------|
  | qualified_long_hold  | true      | >= 2 years   | 0              | (exercise + sale) × 20.315%  | 20.315  |
  | qualified_short_hold | true      | <  2 years   | exercise × 30% | sale × 20.315%               | 30      |
  | non_qualified        | false     | any          | exercise × 30% | sale × 20.315%               | 30      |

  The 30% income rate stands in for a marginal bracket; it is a label for
  a simplification, not a measured rate. Both rates and the qualifying
  holding period come from Rates and can be overridden in config.

PRECONDITIONS:
  Gains must already be floored at zero (see returns.GrossReturn). Negative
  gains are rejected with InvalidInput rather than turned into a refund.

SEE ALSO:
  - returns/returns.go: Produces the gains
  - config/config.go: TaxConfig overrides
*/
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

// =============================================================================
// RATES
// =============================================================================

type Rates struct {
	IncomeRate             decimal.Decimal // Applied to exercise gains outside the qualified long-hold rule
	CapitalGainsRate       decimal.Decimal // Applied to sale gains, and to everything under qualified long-hold
	QualifyingHoldingYears int
}

func DefaultRates() Rates {
	return Rates{
		IncomeRate:             decimal.RequireFromString("0.30"),
		CapitalGainsRate:       decimal.RequireFromString("0.20315"),
		QualifyingHoldingYears: 2,
	}
}

var one = decimal.NewFromInt(1)

func (r Rates) Validate() error {
	if r.IncomeRate.IsNegative() || r.IncomeRate.GreaterThan(one) {
		return &generic.InvalidInputError{Field: "tax.income_rate", Value: r.IncomeRate.String(), Reason: "must be within [0, 1]"}
	}
	if r.CapitalGainsRate.IsNegative() || r.CapitalGainsRate.GreaterThan(one) {
		return &generic.InvalidInputError{Field: "tax.capital_gains_rate", Value: r.CapitalGainsRate.String(), Reason: "must be within [0, 1]"}
	}
	if r.QualifyingHoldingYears < 0 {
		return &generic.InvalidInputError{Field: "tax.qualifying_holding_years", Value: fmt.Sprint(r.QualifyingHoldingYears), Reason: "must not be negative"}
	}
	return nil
}

// =============================================================================
// RESULT
// =============================================================================

type Result struct {
	ExerciseTax decimal.Decimal
	SaleTax     decimal.Decimal
	TotalTax    decimal.Decimal
	GrossGain   decimal.Decimal
	NetAfterTax decimal.Decimal

	// NominalRatePercent is the headline rate of the matched rule.
	NominalRatePercent decimal.Decimal
	// EffectiveRatePercent is TotalTax / GrossGain × 100, or 0 with no gain.
	EffectiveRatePercent decimal.Decimal

	Rule string
}

// =============================================================================
// DECISION TABLE
// =============================================================================

type rule struct {
	name    string
	matches func(p generic.TaxPolicy, r Rates) bool
	apply   func(exerciseGain, saleGain decimal.Decimal, r Rates) (exerciseTax, saleTax, nominal decimal.Decimal)
}

var hundred = decimal.NewFromInt(100)

// splitTaxation taxes exercise gains as income and sale gains as capital gains.
func splitTaxation(exerciseGain, saleGain decimal.Decimal, r Rates) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return exerciseGain.Mul(r.IncomeRate), saleGain.Mul(r.CapitalGainsRate), r.IncomeRate.Mul(hundred)
}

var rules = []rule{
	{
		name: "qualified_long_hold",
		matches: func(p generic.TaxPolicy, r Rates) bool {
			return p.Qualified && p.HoldingPeriodYears >= r.QualifyingHoldingYears
		},
		apply: func(exerciseGain, saleGain decimal.Decimal, r Rates) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
			return decimal.Zero, exerciseGain.Add(saleGain).Mul(r.CapitalGainsRate), r.CapitalGainsRate.Mul(hundred)
		},
	},
	{
		name:    "qualified_short_hold",
		matches: func(p generic.TaxPolicy, r Rates) bool { return p.Qualified },
		apply:   splitTaxation,
	},
	{
		name:    "non_qualified",
		matches: func(p generic.TaxPolicy, r Rates) bool { return !p.Qualified },
		apply:   splitTaxation,
	},
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	Rates Rates
}

// NewEngine validates rates and returns an engine using them.
func NewEngine(r Rates) (*Engine, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &Engine{Rates: r}, nil
}

var defaultEngine = &Engine{Rates: DefaultRates()}

// Compute evaluates the decision table with default rates.
func Compute(exerciseGain, saleGain decimal.Decimal, policy generic.TaxPolicy) (Result, error) {
	return defaultEngine.Compute(exerciseGain, saleGain, policy)
}

// Compute evaluates the decision table once for the given gains.
func (e *Engine) Compute(exerciseGain, saleGain decimal.Decimal, policy generic.TaxPolicy) (Result, error) {
	if exerciseGain.IsNegative() {
		return Result{}, &generic.InvalidInputError{Field: "exercise_gain", Value: exerciseGain.String(), Reason: "must not be negative"}
	}
	if saleGain.IsNegative() {
		return Result{}, &generic.InvalidInputError{Field: "sale_gain", Value: saleGain.String(), Reason: "must not be negative"}
	}
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	for _, r := range rules {
		if !r.matches(policy, e.Rates) {
			continue
		}
		exerciseTax, saleTax, nominal := r.apply(exerciseGain, saleGain, e.Rates)
		gross := exerciseGain.Add(saleGain)
		total := exerciseTax.Add(saleTax)

		effective := decimal.Zero
		if gross.IsPositive() {
			effective = total.Mul(hundred).Div(gross)
		}

		return Result{
			ExerciseTax:          exerciseTax,
			SaleTax:              saleTax,
			TotalTax:             total,
			GrossGain:            gross,
			NetAfterTax:          gross.Sub(total),
			NominalRatePercent:   nominal,
			EffectiveRatePercent: effective,
			Rule:                 r.name,
		}, nil
	}

	// Unreachable: the last two rules cover both values of Qualified.
	return Result{}, fmt.Errorf("tax: no rule matched policy %+v", policy)
}
