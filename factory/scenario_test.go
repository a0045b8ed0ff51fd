package factory_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/equity-engine/factory"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/generic/store"
	"github.com/warp/equity-engine/schedule"
)

func ptr(v float64) *float64 { return &v }

func baseScenario() factory.ScenarioJSON {
	return factory.ScenarioJSON{
		Grant: factory.GrantJSON{
			TotalUnits:     ptr(48000),
			ExercisePrice:  1000,
			VestingPeriods: 4,
			CliffPeriods:   1,
			Curve:          "linear",
		},
		Market: factory.MarketJSON{
			OutstandingShares: 10_000_000,
			SharePrice:        ptr(5000),
			AnnualGrowthRate:  ptr(0.2),
		},
		Tax:            factory.TaxJSON{Regime: "qualified", HoldingPeriodYears: 2},
		ElapsedPeriods: 2,
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseScenario_FullDocument(t *testing.T) {
	sj, err := factory.ParseScenario([]byte(`{
		"grant":  {"total_units": 50000, "exercise_price": 1000, "vesting_periods": 4,
		           "cliff_periods": 1, "curve": "cliff-heavy", "start_date": "2024-01-01"},
		"market": {"outstanding_shares": 10000000, "share_price": 5000, "annual_growth_rate": 0.2},
		"tax":    {"regime": "non_qualified", "holding_period_years": 1},
		"elapsed_periods": 3
	}`))
	require.NoError(t, err)

	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	require.NoError(t, err)

	assert.True(t, in.Grant.TotalUnits.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, generic.CurveCliffHeavy, in.Grant.Curve)
	assert.Equal(t, generic.UnitYear, in.Grant.Unit)
	assert.Equal(t, "2024-01-01", in.Grant.StartDate.String())
	assert.False(t, in.Tax.Qualified)
	assert.Equal(t, 1, in.Tax.HoldingPeriodYears)
	assert.Equal(t, 3, in.ElapsedPeriods)
}

func TestParseScenario_MalformedJSON(t *testing.T) {
	_, err := factory.ParseScenario([]byte(`{"grant": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scenario JSON")
}

func TestLoadScenarioFile_YAML(t *testing.T) {
	// GIVEN: A YAML scenario on disk
	// WHEN: Loading it by path
	// THEN: The YAML decoder is chosen by extension

	path := filepath.Join(t.TempDir(), "offer.yaml")
	doc := `
name: Offer
grant:
  granted_percentage: 0.25
  exercise_price: 3
  vesting_periods: 48
  cliff_periods: 12
  curve: backloaded
  period_unit: month
market:
  outstanding_shares: 4000000
  share_price: 10
tax:
  regime: qualified
  holding_period_years: 2
elapsed_periods: 18
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	sj, err := factory.LoadScenarioFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Offer", sj.Name)

	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	require.NoError(t, err)
	assert.True(t, in.Grant.TotalUnits.Equal(decimal.NewFromInt(10000)), "0.25%% of 4M")
	assert.Equal(t, generic.UnitMonth, in.Grant.Unit)
	assert.True(t, in.Market.AnnualGrowthRate.IsZero(), "growth defaults to zero")
}

func TestParseScenarioYAML_NonFiniteValuesAreRejected(t *testing.T) {
	// GIVEN: A YAML scenario whose share price is .inf
	// WHEN: Resolving it into engine input
	// THEN: InvalidInput on market.share_price, no panic

	sj, err := factory.ParseScenarioYAML([]byte(`
grant: {total_units: 1000, exercise_price: 10, vesting_periods: 4, cliff_periods: 1}
market: {outstanding_shares: 1000000, share_price: .inf, annual_growth_rate: 0.1}
`))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		_, err = factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.Equal(t, "market.share_price", generic.FieldOf(err))
}

func TestLoadScenarioFile_Missing(t *testing.T) {
	_, err := factory.LoadScenarioFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

// =============================================================================
// DERIVATIONS
// =============================================================================

func TestBuild_DerivesPriceAndGrowthFromMarketCaps(t *testing.T) {
	// GIVEN: A 50B company with 10M shares expected to reach 100B
	// WHEN: No explicit price or growth rate is given
	// THEN: Price is cap / shares and growth doubles the cap over the 4-year horizon

	sj := baseScenario()
	sj.Market.SharePrice = nil
	sj.Market.AnnualGrowthRate = nil
	sj.Market.CurrentMarketCap = ptr(50_000_000_000)
	sj.Market.FutureMarketCap = ptr(100_000_000_000)

	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	require.NoError(t, err)

	assert.True(t, in.Market.BasePrice.Equal(decimal.NewFromInt(5000)))
	assert.InDelta(t, 0.189207, in.Market.AnnualGrowthRate.InexactFloat64(), 1e-6)

	res, err := schedule.NewBuilder(nil).Build(in)
	require.NoError(t, err)
	assert.InDelta(t, 10000, res.FuturePrice.InexactFloat64(), 0.01)
}

func TestBuild_GrantedPercentageRoundsToWholeUnits(t *testing.T) {
	sj := baseScenario()
	sj.Grant.TotalUnits = nil
	sj.Grant.GrantedPercentage = ptr(0.00125) // 125 units of 10M

	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	require.NoError(t, err)
	assert.True(t, in.Grant.TotalUnits.Equal(decimal.NewFromInt(125)))
}

func TestBuild_ExplicitUnitsWinOverPercentage(t *testing.T) {
	sj := baseScenario()
	sj.Grant.GrantedPercentage = ptr(50)

	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	require.NoError(t, err)
	assert.True(t, in.Grant.TotalUnits.Equal(decimal.NewFromInt(48000)))
}

func TestBuild_CompanyReferenceFillsMarket(t *testing.T) {
	// GIVEN: A stored company profile
	// WHEN: A scenario references it and overrides only the share price
	// THEN: Shares and growth come from the profile, the price from the scenario

	ctx := context.Background()
	companies := store.NewMemory()
	require.NoError(t, companies.SaveCompany(ctx, generic.Company{
		ID:                "acme",
		Name:              "Acme",
		OutstandingShares: 1_000_000,
		SharePrice:        decimal.NewFromInt(100),
		AnnualGrowthRate:  decimal.RequireFromString("0.1"),
	}))
	f := factory.NewScenarioFactory(companies)

	sj := baseScenario()
	sj.Market = factory.MarketJSON{CompanyID: "acme"}
	in, err := f.Build(ctx, sj)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), in.Market.OutstandingShares)
	assert.True(t, in.Market.BasePrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, in.Market.AnnualGrowthRate.Equal(decimal.RequireFromString("0.1")))

	sj.Market.SharePrice = ptr(120)
	in, err = f.Build(ctx, sj)
	require.NoError(t, err)
	assert.True(t, in.Market.BasePrice.Equal(decimal.NewFromInt(120)))
	assert.True(t, in.Market.AnnualGrowthRate.Equal(decimal.RequireFromString("0.1")))
}

func TestBuild_UnknownCompany(t *testing.T) {
	sj := baseScenario()
	sj.Market.CompanyID = "ghost"

	_, err := factory.NewScenarioFactory(store.NewMemory()).Build(context.Background(), sj)
	require.Error(t, err)
	assert.True(t, generic.IsNotFound(err))

	_, err = factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	assert.True(t, generic.IsNotFound(err), "no store configured")
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewScenarioFactory(nil)
	in, err := f.Build(context.Background(), baseScenario())
	require.NoError(t, err)

	again, err := f.Build(context.Background(), factory.ToJSON(in))
	require.NoError(t, err)
	assert.True(t, again.Grant.TotalUnits.Equal(in.Grant.TotalUnits))
	assert.True(t, again.Market.BasePrice.Equal(in.Market.BasePrice))
	assert.True(t, again.Market.AnnualGrowthRate.Equal(in.Market.AnnualGrowthRate))
	assert.Equal(t, in.Grant.Curve, again.Grant.Curve)
	assert.Equal(t, in.Tax, again.Tax)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestBuild_InvalidScenarios(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*factory.ScenarioJSON)
		field  string
	}{
		{"unknown curve", func(s *factory.ScenarioJSON) { s.Grant.Curve = "zigzag" }, "grant.curve"},
		{"unknown unit", func(s *factory.ScenarioJSON) { s.Grant.PeriodUnit = "fortnight" }, "grant.period_unit"},
		{"bad start date", func(s *factory.ScenarioJSON) { s.Grant.StartDate = "01/02/2024" }, "grant.start_date"},
		{"zero vesting", func(s *factory.ScenarioJSON) { s.Grant.VestingPeriods = 0 }, "grant.vesting_periods"},
		{"cliff beyond vesting", func(s *factory.ScenarioJSON) { s.Grant.CliffPeriods = 9 }, "grant.cliff_periods"},
		{"no units", func(s *factory.ScenarioJSON) { s.Grant.TotalUnits = nil }, "grant.total_units"},
		{"percentage over 100", func(s *factory.ScenarioJSON) { s.Grant.TotalUnits = nil; s.Grant.GrantedPercentage = ptr(120) }, "grant.granted_percentage"},
		{"no shares", func(s *factory.ScenarioJSON) { s.Market.OutstandingShares = 0 }, "market.outstanding_shares"},
		{"no price", func(s *factory.ScenarioJSON) { s.Market.SharePrice = nil }, "market.share_price"},
		{"zero market cap", func(s *factory.ScenarioJSON) { s.Market.SharePrice = nil; s.Market.CurrentMarketCap = ptr(0) }, "market.current_market_cap"},
		{"zero future cap", func(s *factory.ScenarioJSON) { s.Market.AnnualGrowthRate = nil; s.Market.FutureMarketCap = ptr(0) }, "market.future_market_cap"},
		{"growth at -100%", func(s *factory.ScenarioJSON) { s.Market.AnnualGrowthRate = ptr(-1) }, "market.annual_growth_rate"},
		{"unknown regime", func(s *factory.ScenarioJSON) { s.Tax.Regime = "offshore" }, "tax.regime"},
		{"negative holding", func(s *factory.ScenarioJSON) { s.Tax.HoldingPeriodYears = -2 }, "tax.holding_period_years"},
		{"negative elapsed", func(s *factory.ScenarioJSON) { s.ElapsedPeriods = -1 }, "elapsed_periods"},
		{"elapsed beyond max", func(s *factory.ScenarioJSON) { s.ElapsedPeriods = schedule.MaxPeriods + 1 }, "elapsed_periods"},
		{"infinite price", func(s *factory.ScenarioJSON) { s.Market.SharePrice = ptr(math.Inf(1)) }, "market.share_price"},
		{"NaN units", func(s *factory.ScenarioJSON) { s.Grant.TotalUnits = ptr(math.NaN()) }, "grant.total_units"},
		{"infinite exercise price", func(s *factory.ScenarioJSON) { s.Grant.ExercisePrice = math.Inf(1) }, "grant.exercise_price"},
		{"infinite growth", func(s *factory.ScenarioJSON) { s.Market.AnnualGrowthRate = ptr(math.Inf(1)) }, "market.annual_growth_rate"},
		{"NaN percentage", func(s *factory.ScenarioJSON) { s.Grant.TotalUnits = nil; s.Grant.GrantedPercentage = ptr(math.NaN()) }, "grant.granted_percentage"},
		{"infinite market cap", func(s *factory.ScenarioJSON) { s.Market.SharePrice = nil; s.Market.CurrentMarketCap = ptr(math.Inf(1)) }, "market.current_market_cap"},
		{"infinite future cap", func(s *factory.ScenarioJSON) { s.Market.AnnualGrowthRate = nil; s.Market.FutureMarketCap = ptr(math.Inf(1)) }, "market.future_market_cap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sj := baseScenario()
			tt.mutate(&sj)

			_, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
			assert.Equal(t, tt.field, generic.FieldOf(err))
		})
	}
}
