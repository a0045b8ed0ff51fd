package schedule

import (
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/returns"
	"github.com/warp/equity-engine/tax"
	"github.com/warp/equity-engine/vesting"
)

// PeriodResult is one row of the vesting schedule.
type PeriodResult struct {
	Index            int
	NewlyVested      decimal.Decimal
	CumulativeVested decimal.Decimal
	Price            decimal.Decimal
	Value            decimal.Decimal // NewlyVested × Price
	IsCliffPeriod    bool
	VestDate         generic.TimePoint // Zero unless the grant has a start date
}

// Result is the complete, read-only outcome of one simulation.
type Result struct {
	Curve          generic.CurveType
	Unit           generic.PeriodUnit
	Horizon        int
	ElapsedPeriods int

	CurrentPrice     decimal.Decimal // Price at ElapsedPeriods
	FuturePrice      decimal.Decimal // Price at Horizon
	CurrentMarketCap decimal.Decimal
	FutureMarketCap  decimal.Decimal

	TotalUnits        decimal.Decimal
	VestedUnits       decimal.Decimal // At ElapsedPeriods
	GrantedPercentage decimal.Decimal

	Returns returns.Breakdown
	Periods []PeriodResult
	Tax     tax.Result
}

// VestedPercent returns vested units as a percentage of the grant.
func (r *Result) VestedPercent() decimal.Decimal {
	return vesting.Progress(r.VestedUnits, r.TotalUnits)
}

// TotalScheduleValue sums the value of every vest event at its own price.
func (r *Result) TotalScheduleValue() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Periods {
		total = total.Add(p.Value)
	}
	return total
}

// CliffPeriods counts schedule rows inside the cliff.
func (r *Result) CliffPeriods() int {
	n := 0
	for _, p := range r.Periods {
		if p.IsCliffPeriod {
			n++
		}
	}
	return n
}
