package generic_test

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/equity-engine/generic"
)

func validGrant() generic.Grant {
	return generic.Grant{
		TotalUnits:     decimal.NewFromInt(48000),
		ExercisePrice:  decimal.NewFromInt(1000),
		VestingPeriods: 4,
		CliffPeriods:   1,
		Curve:          generic.CurveLinear,
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseCurveType(t *testing.T) {
	tests := map[string]generic.CurveType{
		"":             generic.CurveLinear,
		"Linear":       generic.CurveLinear,
		"back-loaded":  generic.CurveBackloaded,
		"frontloaded":  generic.CurveFrontloaded,
		"cliff-heavy":  generic.CurveCliffHeavy,
		" cliff_heavy": generic.CurveCliffHeavy,
	}
	for in, want := range tests {
		got, err := generic.ParseCurveType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.True(t, got.Valid())
	}

	_, err := generic.ParseCurveType("exponential")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.Equal(t, "curve", generic.FieldOf(err))
}

func TestParseTaxRegime(t *testing.T) {
	q, err := generic.ParseTaxRegime("qualified")
	require.NoError(t, err)
	assert.True(t, q)

	q, err = generic.ParseTaxRegime("Non-Qualified")
	require.NoError(t, err)
	assert.False(t, q)

	_, err = generic.ParseTaxRegime("exempt")
	assert.Equal(t, "tax.regime", generic.FieldOf(err))

	assert.Equal(t, generic.RegimeNonQualified, generic.TaxPolicy{}.Regime())
}

func TestParsePeriodUnit(t *testing.T) {
	u, err := generic.ParsePeriodUnit("months")
	require.NoError(t, err)
	assert.Equal(t, generic.UnitMonth, u)
	assert.Equal(t, "months", u.String())

	u, err = generic.ParsePeriodUnit("")
	require.NoError(t, err)
	assert.Equal(t, generic.UnitYear, u)

	_, err = generic.ParsePeriodUnit("quarter")
	assert.Equal(t, "grant.period_unit", generic.FieldOf(err))
}

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", generic.UnitYear.DateOf(d, 1).String(), "leap day rolls forward")
	assert.Equal(t, "2024-03-29", generic.UnitMonth.DateOf(d, 1).String())

	d, err = generic.ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.Empty(t, d.String())

	_, err = generic.ParseDate("29/02/2024")
	assert.Equal(t, "grant.start_date", generic.FieldOf(err))
}

func TestYearFraction(t *testing.T) {
	assert.True(t, generic.UnitYear.YearFraction(3).Equal(decimal.NewFromInt(3)))
	assert.True(t, generic.UnitMonth.YearFraction(18).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, generic.UnitMonth.YearFraction(24).IsInteger())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestGrant_Validate(t *testing.T) {
	require.NoError(t, validGrant().Validate())
	assert.Equal(t, generic.UnitYear, validGrant().PeriodUnit())

	tests := []struct {
		field  string
		mutate func(*generic.Grant)
	}{
		{"grant.total_units", func(g *generic.Grant) { g.TotalUnits = decimal.NewFromInt(-1) }},
		{"grant.exercise_price", func(g *generic.Grant) { g.ExercisePrice = decimal.NewFromInt(-1) }},
		{"grant.vesting_periods", func(g *generic.Grant) { g.VestingPeriods = 0 }},
		{"grant.cliff_periods", func(g *generic.Grant) { g.CliffPeriods = -1 }},
		{"grant.cliff_periods", func(g *generic.Grant) { g.CliffPeriods = 5 }},
		{"grant.curve", func(g *generic.Grant) { g.Curve = "" }},
		{"grant.period_unit", func(g *generic.Grant) { g.Unit = "day" }},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", i, tt.field), func(t *testing.T) {
			g := validGrant()
			tt.mutate(&g)
			err := g.Validate()
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
			assert.Equal(t, tt.field, generic.FieldOf(err))
		})
	}
}

func TestMarketState_Validate(t *testing.T) {
	m := generic.MarketState{BasePrice: decimal.NewFromInt(10), AnnualGrowthRate: decimal.RequireFromString("-0.5"), OutstandingShares: 100}
	require.NoError(t, m.Validate(), "shrinking market is allowed")

	m.AnnualGrowthRate = decimal.NewFromInt(-1)
	assert.Equal(t, "market.annual_growth_rate", generic.FieldOf(m.Validate()))
}

func TestMarketState_GrantedPercentage(t *testing.T) {
	m := generic.MarketState{OutstandingShares: 10_000_000}
	assert.True(t, m.GrantedPercentage(decimal.NewFromInt(50000)).Equal(decimal.RequireFromString("0.5")))
	assert.True(t, generic.MarketState{}.GrantedPercentage(decimal.NewFromInt(1)).IsZero())
}

func TestCompany_MarketState(t *testing.T) {
	c := generic.Company{
		ID:                "acme",
		OutstandingShares: 42,
		SharePrice:        decimal.NewFromInt(7),
		AnnualGrowthRate:  decimal.RequireFromString("0.1"),
		CreatedAt:         generic.NewTimePoint(2025, time.January, 2),
	}
	m := c.MarketState()
	assert.True(t, m.BasePrice.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, int64(42), m.OutstandingShares)
	require.NoError(t, m.Validate())
}

// =============================================================================
// HELPERS
// =============================================================================

func powFrac(t *testing.T, base, exp string) decimal.Decimal {
	t.Helper()
	v, err := generic.PowFrac(decimal.RequireFromString(base), decimal.RequireFromString(exp))
	require.NoError(t, err)
	return v
}

func TestPowFrac(t *testing.T) {
	assert.True(t, powFrac(t, "1.2", "4").Equal(decimal.RequireFromString("2.0736")))
	assert.InDelta(t, 1.0954451, powFrac(t, "1.2", "0.5").InexactFloat64(), 1e-6)
	assert.True(t, powFrac(t, "5", "0").Equal(decimal.NewFromInt(1)))
	assert.True(t, powFrac(t, "0", "1.5").IsZero())
}

func TestPowFrac_BoundsPrecision(t *testing.T) {
	// GIVEN: A base with many fractional digits raised to a large whole power
	// WHEN: Computing the power
	// THEN: The result keeps at most 32 fractional digits

	v := powFrac(t, "1.000000000000001", "1200")
	assert.GreaterOrEqual(t, v.Exponent(), int32(-32))
	assert.InDelta(t, 1.0000000000012, v.InexactFloat64(), 1e-12)
}

func TestPowFrac_RejectsOverflow(t *testing.T) {
	tests := []struct{ base, exp string }{
		{"1e100", "4"},
		{"1e100", "3.5"},
		{"10", "301"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"^"+tt.exp, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = generic.PowFrac(decimal.RequireFromString(tt.base), decimal.RequireFromString(tt.exp))
			})
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
		})
	}
}

func TestDecimalFromFloat(t *testing.T) {
	d, err := generic.DecimalFromFloat("market.share_price", 12.5)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := generic.DecimalFromFloat("market.share_price", v)
		assert.ErrorIs(t, err, generic.ErrInvalidInput)
		assert.Equal(t, "market.share_price", generic.FieldOf(err))
	}
}

func TestClampAndNonNegative(t *testing.T) {
	lo, hi := decimal.Zero, decimal.NewFromInt(10)
	assert.True(t, generic.Clamp(decimal.NewFromInt(11), lo, hi).Equal(hi))
	assert.True(t, generic.Clamp(decimal.NewFromInt(-3), lo, hi).Equal(lo))
	assert.True(t, generic.Clamp(decimal.NewFromInt(4), lo, hi).Equal(decimal.NewFromInt(4)))
	assert.True(t, generic.NonNegative(decimal.NewFromInt(-2)).IsZero())
}

func TestErrorHelpers(t *testing.T) {
	inv := fmt.Errorf("wrap: %w", &generic.InvalidInputError{Field: "x", Value: "1", Reason: "bad"})
	assert.True(t, generic.IsClientError(inv))
	assert.False(t, generic.IsNotFound(inv))
	assert.Equal(t, "x", generic.FieldOf(inv))
	assert.Contains(t, inv.Error(), "x bad (got 1)")

	deg := &generic.DegenerateConfigurationError{VestingPeriods: 4, CliffPeriods: 4, Curve: generic.CurveLinear}
	assert.True(t, errors.Is(deg, generic.ErrDegenerateConfiguration))
	assert.True(t, generic.IsClientError(deg))
	assert.Empty(t, generic.FieldOf(deg))

	nf := fmt.Errorf("load: %w", generic.ErrCompanyNotFound)
	assert.True(t, generic.IsNotFound(nf))
	assert.False(t, generic.IsClientError(nf))
}
