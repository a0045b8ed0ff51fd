/*
Package factory converts scenario documents into engine input.

PURPOSE:
  A scenario is everything one simulation needs, written the way a person
  fills in a calculator form: units or a percentage of the company,
  a share price or a market cap, a growth rate or a future market cap.
  The factory resolves those alternatives into a schedule.Input with
  decimal quantities so the engine only ever sees one canonical shape.

JSON / YAML SCHEMA:
  {
    "name": "Standard RSU",
    "grant": {
      "total_units": 50000,          // or "granted_percentage": 0.5
      "exercise_price": 1000,
      "vesting_periods": 4,
      "cliff_periods": 1,
      "curve": "linear",             // linear | backloaded | frontloaded | cliff_heavy
      "period_unit": "year",         // year | month
      "start_date": "2024-04-01"     // optional
    },
    "market": {
      "outstanding_shares": 10000000,
      "share_price": 5000,           // or "current_market_cap"
      "annual_growth_rate": 0.2,     // or "future_market_cap"
      "company_id": "..."            // optional, fills anything left blank
    },
    "tax": {"regime": "qualified", "holding_period_years": 2},
    "elapsed_periods": 4
  }

RESOLUTION ORDER:
  outstanding shares: explicit > company
  share price:        explicit > current_market_cap / shares > company
  growth rate:        explicit > implied from both caps over the vesting
                      horizon > company > 0
  total units:        explicit > round(shares × granted_percentage / 100)

USAGE:
  f := factory.NewScenarioFactory(store) // store may be nil
  sj, err := factory.LoadScenarioFile("offer.yaml")
  in, err := f.Build(ctx, sj)
  res, err := schedule.NewBuilder(nil).Build(in)

SEE ALSO:
  - presets.go: Built-in scenarios
  - schedule/builder.go: Consumes schedule.Input
*/
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/market"
	"github.com/warp/equity-engine/schedule"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// ScenarioJSON is the document form of one simulation.
type ScenarioJSON struct {
	Name           string     `json:"name,omitempty" yaml:"name,omitempty"`
	Grant          GrantJSON  `json:"grant" yaml:"grant"`
	Market         MarketJSON `json:"market" yaml:"market"`
	Tax            TaxJSON    `json:"tax" yaml:"tax"`
	ElapsedPeriods int        `json:"elapsed_periods" yaml:"elapsed_periods"`
}

// GrantJSON describes the grant. Pointers distinguish "absent" from zero.
type GrantJSON struct {
	TotalUnits        *float64 `json:"total_units,omitempty" yaml:"total_units,omitempty"`
	GrantedPercentage *float64 `json:"granted_percentage,omitempty" yaml:"granted_percentage,omitempty"`
	ExercisePrice     float64  `json:"exercise_price" yaml:"exercise_price"`
	VestingPeriods    int      `json:"vesting_periods" yaml:"vesting_periods"`
	CliffPeriods      int      `json:"cliff_periods" yaml:"cliff_periods"`
	Curve             string   `json:"curve,omitempty" yaml:"curve,omitempty"`             // empty means linear; unknown tags are rejected
	PeriodUnit        string   `json:"period_unit,omitempty" yaml:"period_unit,omitempty"` // empty means year
	StartDate         string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
}

type MarketJSON struct {
	CompanyID         string   `json:"company_id,omitempty" yaml:"company_id,omitempty"`
	OutstandingShares int64    `json:"outstanding_shares,omitempty" yaml:"outstanding_shares,omitempty"`
	SharePrice        *float64 `json:"share_price,omitempty" yaml:"share_price,omitempty"`
	CurrentMarketCap  *float64 `json:"current_market_cap,omitempty" yaml:"current_market_cap,omitempty"`
	FutureMarketCap   *float64 `json:"future_market_cap,omitempty" yaml:"future_market_cap,omitempty"`
	AnnualGrowthRate  *float64 `json:"annual_growth_rate,omitempty" yaml:"annual_growth_rate,omitempty"`
}

type TaxJSON struct {
	Regime             string `json:"regime,omitempty" yaml:"regime,omitempty"` // qualified (also when empty), non_qualified
	HoldingPeriodYears int    `json:"holding_period_years" yaml:"holding_period_years"`
}

// =============================================================================
// LOADING
// =============================================================================

// ParseScenario decodes a JSON document.
func ParseScenario(data []byte) (ScenarioJSON, error) {
	var sj ScenarioJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return ScenarioJSON{}, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	return sj, nil
}

// ParseScenarioYAML decodes a YAML document.
func ParseScenarioYAML(data []byte) (ScenarioJSON, error) {
	var sj ScenarioJSON
	if err := yaml.Unmarshal(data, &sj); err != nil {
		return ScenarioJSON{}, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	return sj, nil
}

// LoadScenarioFile reads a scenario, choosing the decoder by extension.
func LoadScenarioFile(path string) (ScenarioJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioJSON{}, fmt.Errorf("read scenario: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseScenarioYAML(data)
	default:
		return ParseScenario(data)
	}
}

// =============================================================================
// SCENARIO FACTORY
// =============================================================================

// ScenarioFactory resolves scenarios, looking up company profiles when a
// scenario references one.
type ScenarioFactory struct {
	companies generic.CompanyStore
}

// NewScenarioFactory creates a factory. A nil store rejects company references.
func NewScenarioFactory(companies generic.CompanyStore) *ScenarioFactory {
	return &ScenarioFactory{companies: companies}
}

// Build resolves sj into validated engine input.
func (f *ScenarioFactory) Build(ctx context.Context, sj ScenarioJSON) (schedule.Input, error) {
	grant, err := parseGrantShape(sj.Grant)
	if err != nil {
		return schedule.Input{}, err
	}

	company, err := f.company(ctx, sj.Market.CompanyID)
	if err != nil {
		return schedule.Input{}, err
	}

	m, err := resolveMarket(sj.Market, company, grant.PeriodUnit().YearFraction(grant.VestingPeriods))
	if err != nil {
		return schedule.Input{}, err
	}

	grant.TotalUnits, err = resolveUnits(sj.Grant, m.OutstandingShares)
	if err != nil {
		return schedule.Input{}, err
	}

	qualified, err := generic.ParseTaxRegime(sj.Tax.Regime)
	if err != nil {
		return schedule.Input{}, err
	}

	in := schedule.Input{
		Grant:          grant,
		Market:         m,
		Tax:            generic.TaxPolicy{Qualified: qualified, HoldingPeriodYears: sj.Tax.HoldingPeriodYears},
		ElapsedPeriods: sj.ElapsedPeriods,
	}
	if err := in.Validate(); err != nil {
		return schedule.Input{}, err
	}
	return in, nil
}

// ToJSON converts engine input back into a fully explicit document.
func ToJSON(in schedule.Input) ScenarioJSON {
	units := in.Grant.TotalUnits.InexactFloat64()
	price := in.Market.BasePrice.InexactFloat64()
	rate := in.Market.AnnualGrowthRate.InexactFloat64()
	return ScenarioJSON{
		Grant: GrantJSON{
			TotalUnits:     &units,
			ExercisePrice:  in.Grant.ExercisePrice.InexactFloat64(),
			VestingPeriods: in.Grant.VestingPeriods,
			CliffPeriods:   in.Grant.CliffPeriods,
			Curve:          string(in.Grant.Curve),
			PeriodUnit:     string(in.Grant.PeriodUnit()),
			StartDate:      in.Grant.StartDate.String(),
		},
		Market: MarketJSON{
			OutstandingShares: in.Market.OutstandingShares,
			SharePrice:        &price,
			AnnualGrowthRate:  &rate,
		},
		Tax: TaxJSON{
			Regime:             string(in.Tax.Regime()),
			HoldingPeriodYears: in.Tax.HoldingPeriodYears,
		},
		ElapsedPeriods: in.ElapsedPeriods,
	}
}

func (f *ScenarioFactory) company(ctx context.Context, id string) (*generic.Company, error) {
	if id == "" {
		return nil, nil
	}
	if f.companies == nil {
		return nil, fmt.Errorf("company %s: %w", id, generic.ErrCompanyNotFound)
	}
	c, err := f.companies.GetCompany(ctx, generic.CompanyID(id))
	if err != nil {
		return nil, fmt.Errorf("load company %s: %w", id, err)
	}
	return c, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// parseGrantShape fills everything except TotalUnits, which depends on the market.
func parseGrantShape(gj GrantJSON) (generic.Grant, error) {
	curve, err := generic.ParseCurveType(gj.Curve)
	if err != nil {
		return generic.Grant{}, withField(err, "grant.curve")
	}
	unit, err := generic.ParsePeriodUnit(gj.PeriodUnit)
	if err != nil {
		return generic.Grant{}, err
	}
	start, err := generic.ParseDate(gj.StartDate)
	if err != nil {
		return generic.Grant{}, err
	}
	if gj.VestingPeriods <= 0 {
		return generic.Grant{}, invalid("grant.vesting_periods", gj.VestingPeriods, "must be positive")
	}
	exercise, err := generic.DecimalFromFloat("grant.exercise_price", gj.ExercisePrice)
	if err != nil {
		return generic.Grant{}, err
	}
	return generic.Grant{
		ExercisePrice:  exercise,
		VestingPeriods: gj.VestingPeriods,
		CliffPeriods:   gj.CliffPeriods,
		Curve:          curve,
		Unit:           unit,
		StartDate:      start,
	}, nil
}

func resolveMarket(mj MarketJSON, company *generic.Company, horizonYears decimal.Decimal) (generic.MarketState, error) {
	var m generic.MarketState
	if company != nil {
		m = company.MarketState()
	}
	if mj.OutstandingShares != 0 {
		m.OutstandingShares = mj.OutstandingShares
	}
	if m.OutstandingShares <= 0 {
		return m, invalid("market.outstanding_shares", m.OutstandingShares, "must be positive")
	}

	switch {
	case mj.SharePrice != nil:
		price, err := generic.DecimalFromFloat("market.share_price", *mj.SharePrice)
		if err != nil {
			return m, err
		}
		m.BasePrice = price
	case mj.CurrentMarketCap != nil:
		currentCap, err := generic.DecimalFromFloat("market.current_market_cap", *mj.CurrentMarketCap)
		if err != nil {
			return m, err
		}
		price, err := market.PriceFromMarketCap(currentCap, m.OutstandingShares)
		if err != nil {
			return m, withField(err, "market.current_market_cap")
		}
		m.BasePrice = price
	case company == nil:
		return m, invalid("market.share_price", "", "share_price or current_market_cap is required")
	}

	switch {
	case mj.AnnualGrowthRate != nil:
		rate, err := generic.DecimalFromFloat("market.annual_growth_rate", *mj.AnnualGrowthRate)
		if err != nil {
			return m, err
		}
		m.AnnualGrowthRate = rate
	case mj.FutureMarketCap != nil:
		futureCap, err := generic.DecimalFromFloat("market.future_market_cap", *mj.FutureMarketCap)
		if err != nil {
			return m, err
		}
		currentCap, err := market.MarketCap(m.BasePrice, m.OutstandingShares)
		if err != nil {
			return m, withField(err, "market.share_price")
		}
		rate, err := market.ImpliedGrowthRate(currentCap, futureCap, horizonYears)
		if err != nil {
			return m, withField(err, "market.future_market_cap")
		}
		m.AnnualGrowthRate = rate
	}
	return m, nil
}

func resolveUnits(gj GrantJSON, outstanding int64) (decimal.Decimal, error) {
	switch {
	case gj.TotalUnits != nil:
		return generic.DecimalFromFloat("grant.total_units", *gj.TotalUnits)
	case gj.GrantedPercentage != nil:
		pct, err := generic.DecimalFromFloat("grant.granted_percentage", *gj.GrantedPercentage)
		if err != nil {
			return decimal.Zero, err
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, invalid("grant.granted_percentage", pct, "must be within [0, 100]")
		}
		return decimal.NewFromInt(outstanding).Mul(pct).Div(decimal.NewFromInt(100)).Round(0), nil
	}
	return decimal.Zero, invalid("grant.total_units", "", "total_units or granted_percentage is required")
}

// withField re-labels an InvalidInputError with the document path of the
// value that caused it.
func withField(err error, field string) error {
	var inv *generic.InvalidInputError
	if errors.As(err, &inv) {
		return &generic.InvalidInputError{Field: field, Value: inv.Value, Reason: inv.Reason}
	}
	return err
}

func invalid(field string, value any, reason string) error {
	return &generic.InvalidInputError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}
