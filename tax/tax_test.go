package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/tax"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestCompute_QualifiedLongHold(t *testing.T) {
	// GIVEN: 1,000,000 exercise gain, 500,000 sale gain, qualified, held 2 years
	// WHEN: Computing tax
	// THEN: Everything is taxed once at 20.315%, nothing at exercise

	res, err := tax.Compute(dec(1_000_000), dec(500_000), generic.TaxPolicy{Qualified: true, HoldingPeriodYears: 2})
	require.NoError(t, err)

	assert.True(t, res.ExerciseTax.IsZero())
	assert.True(t, res.SaleTax.Equal(dec(304_725)), "got %s", res.SaleTax)
	assert.True(t, res.TotalTax.Equal(dec(304_725)))
	assert.True(t, res.NetAfterTax.Equal(dec(1_195_275)), "got %s", res.NetAfterTax)
	assert.True(t, res.NominalRatePercent.Equal(dec(20.315)))
	assert.True(t, res.EffectiveRatePercent.Equal(dec(20.315)), "got %s", res.EffectiveRatePercent)
	assert.Equal(t, "qualified_long_hold", res.Rule)
}

func TestCompute_QualifiedShortHold(t *testing.T) {
	res, err := tax.Compute(dec(1_000_000), dec(500_000), generic.TaxPolicy{Qualified: true, HoldingPeriodYears: 1})
	require.NoError(t, err)

	assert.True(t, res.ExerciseTax.Equal(dec(300_000)))
	assert.True(t, res.SaleTax.Equal(dec(101_575)))
	assert.True(t, res.TotalTax.Equal(dec(401_575)))
	assert.True(t, res.NetAfterTax.Equal(dec(1_098_425)))
	assert.True(t, res.NominalRatePercent.Equal(dec(30)))
	assert.Equal(t, "qualified_short_hold", res.Rule)
}

func TestCompute_NonQualifiedIgnoresHolding(t *testing.T) {
	// GIVEN: A non-qualified grant held for any period
	// THEN: Exercise gain is always taxed as income
	for _, years := range []int{0, 2, 10} {
		res, err := tax.Compute(dec(1_000_000), dec(500_000), generic.TaxPolicy{Qualified: false, HoldingPeriodYears: years})
		require.NoError(t, err)
		assert.True(t, res.ExerciseTax.Equal(dec(300_000)), "years=%d", years)
		assert.True(t, res.SaleTax.Equal(dec(101_575)), "years=%d", years)
		assert.Equal(t, "non_qualified", res.Rule)
	}
}

func TestCompute_TotalIsSumAndNetIsGrossMinusTotal(t *testing.T) {
	policies := []generic.TaxPolicy{
		{Qualified: true, HoldingPeriodYears: 3},
		{Qualified: true, HoldingPeriodYears: 0},
		{Qualified: false, HoldingPeriodYears: 1},
	}
	for _, p := range policies {
		res, err := tax.Compute(dec(12345.67), dec(890.12), p)
		require.NoError(t, err)
		assert.True(t, res.TotalTax.Equal(res.ExerciseTax.Add(res.SaleTax)))
		assert.True(t, res.NetAfterTax.Equal(res.GrossGain.Sub(res.TotalTax)))
		assert.False(t, res.ExerciseTax.IsNegative())
		assert.False(t, res.SaleTax.IsNegative())
	}
}

func TestCompute_NoGainNoTax(t *testing.T) {
	res, err := tax.Compute(decimal.Zero, decimal.Zero, generic.TaxPolicy{Qualified: false})
	require.NoError(t, err)
	assert.True(t, res.TotalTax.IsZero())
	assert.True(t, res.EffectiveRatePercent.IsZero())
	assert.True(t, res.NominalRatePercent.Equal(dec(30)))
}

func TestCompute_RejectsNegativeGains(t *testing.T) {
	// A negative gain would otherwise produce a refund
	_, err := tax.Compute(dec(-1), dec(0), generic.TaxPolicy{Qualified: true})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.Equal(t, "exercise_gain", generic.FieldOf(err))

	_, err = tax.Compute(dec(0), dec(-1), generic.TaxPolicy{Qualified: true})
	assert.Equal(t, "sale_gain", generic.FieldOf(err))

	_, err = tax.Compute(dec(0), dec(0), generic.TaxPolicy{HoldingPeriodYears: -1})
	assert.Equal(t, "tax.holding_period_years", generic.FieldOf(err))
}

func TestEngine_CustomRates(t *testing.T) {
	// GIVEN: A jurisdiction with 40% income, 15% capital gains, 1-year qualifying hold
	e, err := tax.NewEngine(tax.Rates{
		IncomeRate:             dec(0.40),
		CapitalGainsRate:       dec(0.15),
		QualifyingHoldingYears: 1,
	})
	require.NoError(t, err)

	res, err := e.Compute(dec(1000), dec(1000), generic.TaxPolicy{Qualified: true, HoldingPeriodYears: 1})
	require.NoError(t, err)
	assert.True(t, res.TotalTax.Equal(dec(300)))
	assert.Equal(t, "qualified_long_hold", res.Rule)

	res, err = e.Compute(dec(1000), dec(1000), generic.TaxPolicy{Qualified: false})
	require.NoError(t, err)
	assert.True(t, res.TotalTax.Equal(dec(550)))
	assert.True(t, res.NominalRatePercent.Equal(dec(40)))
}

func TestNewEngine_RejectsOutOfRangeRates(t *testing.T) {
	_, err := tax.NewEngine(tax.Rates{IncomeRate: dec(1.5), CapitalGainsRate: dec(0.2)})
	assert.Equal(t, "tax.income_rate", generic.FieldOf(err))

	_, err = tax.NewEngine(tax.Rates{IncomeRate: dec(0.3), CapitalGainsRate: dec(-0.1)})
	assert.Equal(t, "tax.capital_gains_rate", generic.FieldOf(err))
}
