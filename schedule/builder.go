/*
Package schedule assembles the period-by-period valuation of a grant.

PURPOSE:
  Builder.Build is the engine's single entry point. It validates every
  input, walks the vesting schedule one period at a time, then takes a
  snapshot at the query offset to compute returns and tax.

ALGORITHM:
  1. Validate grant, market, tax policy and elapsed periods, with both
     period counts capped at MaxPeriods. The first violation is returned
     as one *generic.InvalidInputError; nothing is computed on invalid
     input. Growth too steep to price is reported on
     market.annual_growth_rate once the loop reaches it.
  2. Horizon = max(VestingPeriods, ElapsedPeriods).
  3. For p = 1..Horizon:
       cumulative = VestedUnits(p)
       newly      = cumulative - cumulative(p-1)   (previous is 0 at p = 1)
       price      = PriceAt(base, rate, YearFraction(p))
       value      = newly × price
       cliff      = p <= CliffPeriods
  4. Snapshot: vested units and price at ElapsedPeriods, future price at
     the horizon. Current return uses the current price, future return
     uses the future price, both on the units vested at the snapshot.
  5. Tax on exercise gain (current return) and sale gain (future - current).

EXAMPLE:
  b := schedule.NewBuilder(nil) // default tax rates
  res, err := b.Build(schedule.Input{
      Grant:          grant,
      Market:         generic.MarketState{BasePrice: d(5000), AnnualGrowthRate: d(0.2), OutstandingShares: 10_000_000},
      Tax:            generic.TaxPolicy{Qualified: true, HoldingPeriodYears: 2},
      ElapsedPeriods: 4,
  })

CONCURRENCY:
  A Builder holds only immutable rates; Build is safe to call from many
  goroutines at once.

SEE ALSO:
  - vesting/vesting.go: VestedUnits
  - market/market.go: PriceAt, MarketCap
  - returns/returns.go: Gross returns and gains
  - tax/tax.go: Decision table
*/
package schedule

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/market"
	"github.com/warp/equity-engine/returns"
	"github.com/warp/equity-engine/tax"
	"github.com/warp/equity-engine/vesting"
)

// =============================================================================
// BUILDER
// =============================================================================

type Builder struct {
	Tax *tax.Engine
}

// NewBuilder returns a builder; a nil engine selects default tax rates.
func NewBuilder(taxEngine *tax.Engine) *Builder {
	if taxEngine == nil {
		taxEngine = &tax.Engine{Rates: tax.DefaultRates()}
	}
	return &Builder{Tax: taxEngine}
}

// MaxPeriods bounds the schedule length. Vesting and elapsed periods above
// it are rejected; 1200 covers a century of monthly periods.
const MaxPeriods = 1200

// Input contains everything one simulation needs.
type Input struct {
	Grant          generic.Grant
	Market         generic.MarketState
	Tax            generic.TaxPolicy
	ElapsedPeriods int
}

// Validate checks all inputs before any computation.
func (in Input) Validate() error {
	if err := in.Grant.Validate(); err != nil {
		return err
	}
	if in.Grant.VestingPeriods > MaxPeriods {
		return tooLong("grant.vesting_periods", in.Grant.VestingPeriods)
	}
	if err := in.Market.Validate(); err != nil {
		return err
	}
	if err := in.Tax.Validate(); err != nil {
		return err
	}
	if in.ElapsedPeriods < 0 {
		return &generic.InvalidInputError{Field: "elapsed_periods", Value: fmt.Sprint(in.ElapsedPeriods), Reason: "must not be negative"}
	}
	if in.ElapsedPeriods > MaxPeriods {
		return tooLong("elapsed_periods", in.ElapsedPeriods)
	}
	return nil
}

func tooLong(field string, n int) error {
	return &generic.InvalidInputError{Field: field, Value: fmt.Sprint(n), Reason: fmt.Sprintf("must not exceed %d", MaxPeriods)}
}

// Horizon returns the number of schedule rows.
func (in Input) Horizon() int {
	return max(in.Grant.VestingPeriods, in.ElapsedPeriods)
}

// Build computes the full simulation result.
func (b *Builder) Build(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	g := in.Grant
	unit := g.PeriodUnit()
	horizon := in.Horizon()

	periods := make([]PeriodResult, 0, horizon)
	previous := decimal.Zero
	for p := 1; p <= horizon; p++ {
		cumulative, err := vesting.VestedAt(g, p)
		if err != nil {
			return nil, fmt.Errorf("vesting at period %d: %w", p, err)
		}
		price, err := b.priceAt(in.Market, unit, p)
		if err != nil {
			return nil, err
		}

		newly := cumulative.Sub(previous)
		row := PeriodResult{
			Index:            p,
			NewlyVested:      newly,
			CumulativeVested: cumulative,
			Price:            price,
			Value:            newly.Mul(price),
			IsCliffPeriod:    p <= g.CliffPeriods,
		}
		if !g.StartDate.IsZero() {
			row.VestDate = unit.DateOf(g.StartDate, p)
		}
		periods = append(periods, row)
		previous = cumulative
	}

	// Snapshot at the query offset
	vested, err := vesting.VestedAt(g, in.ElapsedPeriods)
	if err != nil {
		return nil, fmt.Errorf("vesting at elapsed %d: %w", in.ElapsedPeriods, err)
	}
	currentPrice, err := b.priceAt(in.Market, unit, in.ElapsedPeriods)
	if err != nil {
		return nil, err
	}
	futurePrice, err := b.priceAt(in.Market, unit, horizon)
	if err != nil {
		return nil, err
	}
	currentCap, err := market.MarketCap(currentPrice, in.Market.OutstandingShares)
	if err != nil {
		return nil, err
	}
	futureCap, err := market.MarketCap(futurePrice, in.Market.OutstandingShares)
	if err != nil {
		return nil, err
	}

	breakdown := returns.Compute(currentPrice, futurePrice, g.ExercisePrice, vested)

	taxResult, err := b.Tax.Compute(breakdown.ExerciseGain, breakdown.SaleGain, in.Tax)
	if err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	return &Result{
		Curve:             g.Curve,
		Unit:              unit,
		Horizon:           horizon,
		ElapsedPeriods:    in.ElapsedPeriods,
		CurrentPrice:      currentPrice,
		FuturePrice:       futurePrice,
		CurrentMarketCap:  currentCap,
		FutureMarketCap:   futureCap,
		TotalUnits:        g.TotalUnits,
		VestedUnits:       vested,
		GrantedPercentage: in.Market.GrantedPercentage(g.TotalUnits),
		Returns:           breakdown,
		Periods:           periods,
		Tax:               taxResult,
	}, nil
}

// CompareCurves runs the same input under every registered curve.
func (b *Builder) CompareCurves(in Input) ([]*Result, error) {
	curves := generic.ListCurves()
	results := make([]*Result, 0, len(curves))
	for _, c := range curves {
		variant := in
		variant.Grant.Curve = c.Type()
		res, err := b.Build(variant)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (b *Builder) priceAt(m generic.MarketState, unit generic.PeriodUnit, p int) (decimal.Decimal, error) {
	price, err := market.PriceAt(m.BasePrice, m.AnnualGrowthRate, unit.YearFraction(p))
	var inv *generic.InvalidInputError
	if errors.As(err, &inv) {
		return decimal.Zero, &generic.InvalidInputError{Field: "market." + inv.Field, Value: inv.Value, Reason: inv.Reason}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("price at period %d: %w", p, err)
	}
	return price, nil
}
