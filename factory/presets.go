package factory

import (
	"fmt"
	"sort"
)

// =============================================================================
// PRESETS - Built-in scenarios
// =============================================================================

// Preset is a named, ready-to-run scenario.
type Preset struct {
	ID          string
	Name        string
	Description string
	Scenario    ScenarioJSON
}

// Presets are written as JSON so they read exactly like user documents and
// go through the same parser.
var presetDocs = []struct {
	id, name, description, doc string
}{
	{
		id:          "standard",
		name:        "Standard 4-Year Option Grant",
		description: "50,000 options at 1,000 on a 50B company expected to double, 4 years with a 1-year cliff",
		doc: `{
			"grant":  {"total_units": 50000, "exercise_price": 1000, "vesting_periods": 4, "cliff_periods": 1, "curve": "linear"},
			"market": {"outstanding_shares": 10000000, "current_market_cap": 50000000000, "future_market_cap": 100000000000},
			"tax":    {"regime": "qualified", "holding_period_years": 2},
			"elapsed_periods": 4
		}`,
	},
	{
		id:          "standard-rsu",
		name:        "Standard RSU",
		description: "RSUs (no exercise price) vesting linearly over 4 years after a 1-year cliff",
		doc: `{
			"grant":  {"total_units": 4800, "exercise_price": 0, "vesting_periods": 4, "cliff_periods": 1, "curve": "linear"},
			"market": {"outstanding_shares": 500000000, "share_price": 150, "annual_growth_rate": 0.08},
			"tax":    {"regime": "non_qualified", "holding_period_years": 1},
			"elapsed_periods": 2
		}`,
	},
	{
		id:          "startup-backloaded",
		name:        "Startup Backloaded Options",
		description: "0.5% of an early-stage company, most of it vesting late, fast expected growth",
		doc: `{
			"grant":  {"granted_percentage": 0.5, "exercise_price": 0.8, "vesting_periods": 4, "cliff_periods": 1, "curve": "backloaded"},
			"market": {"outstanding_shares": 20000000, "share_price": 2.5, "annual_growth_rate": 0.6},
			"tax":    {"regime": "qualified", "holding_period_years": 3},
			"elapsed_periods": 4
		}`,
	},
	{
		id:          "frontloaded-refresher",
		name:        "Frontloaded Refresher",
		description: "A 3-year refresher grant with no cliff, weighted toward the first year",
		doc: `{
			"grant":  {"total_units": 2000, "exercise_price": 0, "vesting_periods": 3, "cliff_periods": 0, "curve": "frontloaded"},
			"market": {"outstanding_shares": 300000000, "share_price": 220, "annual_growth_rate": 0.1},
			"tax":    {"regime": "non_qualified", "holding_period_years": 0},
			"elapsed_periods": 1
		}`,
	},
	{
		id:          "cliff-heavy-offer",
		name:        "Cliff-Heavy Offer",
		description: "A quarter of the grant released at the 1-year cliff, the rest linear over 3 years",
		doc: `{
			"grant":  {"total_units": 12000, "exercise_price": 40, "vesting_periods": 4, "cliff_periods": 1, "curve": "cliff_heavy"},
			"market": {"outstanding_shares": 80000000, "share_price": 55, "annual_growth_rate": 0.15},
			"tax":    {"regime": "qualified", "holding_period_years": 2},
			"elapsed_periods": 1
		}`,
	},
	{
		id:          "monthly-option",
		name:        "Monthly Option Grant",
		description: "48 monthly tranches after a 12-month cliff, starting April 2024",
		doc: `{
			"grant":  {"total_units": 24000, "exercise_price": 12, "vesting_periods": 48, "cliff_periods": 12,
			           "curve": "linear", "period_unit": "month", "start_date": "2024-04-01"},
			"market": {"outstanding_shares": 150000000, "share_price": 18, "annual_growth_rate": 0.25},
			"tax":    {"regime": "qualified", "holding_period_years": 1},
			"elapsed_periods": 30
		}`,
	},
}

var presets = mustLoadPresets()

func mustLoadPresets() map[string]Preset {
	out := make(map[string]Preset, len(presetDocs))
	for _, p := range presetDocs {
		sj, err := ParseScenario([]byte(p.doc))
		if err != nil {
			panic(fmt.Sprintf("factory: preset %s: %v", p.id, err))
		}
		sj.Name = p.name
		out[p.id] = Preset{ID: p.id, Name: p.name, Description: p.description, Scenario: sj}
	}
	return out
}

// Presets returns every built-in scenario sorted by ID.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupPreset returns the preset with the given ID.
func LookupPreset(id string) (Preset, bool) {
	p, ok := presets[id]
	return p, ok
}
