// Package report renders simulation results as console tables.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/schedule"
)

// Schedule writes the period table followed by the summary.
func Schedule(w io.Writer, res *schedule.Result) error {
	table := tablewriter.NewWriter(w)
	header := []any{"#", "Newly vested", "Cumulative", "Price", "Value", "Cliff"}
	withDates := len(res.Periods) > 0 && !res.Periods[0].VestDate.IsZero()
	if withDates {
		header = append(header, "Vests on")
	}
	table.Header(header...)

	for _, p := range res.Periods {
		cliff := ""
		if p.IsCliffPeriod {
			cliff = "cliff"
		}
		row := []any{
			fmt.Sprintf("%d", p.Index),
			units(p.NewlyVested),
			units(p.CumulativeVested),
			money(p.Price),
			money(p.Value),
			cliff,
		}
		if withDates {
			row = append(row, p.VestDate.String())
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	Summary(w, res)
	return nil
}

// Summary writes the snapshot figures and tax breakdown.
func Summary(w io.Writer, res *schedule.Result) {
	r, t := res.Returns, res.Tax
	fmt.Fprintf(w, "\n  --- SNAPSHOT AT %d %s (horizon %d) ---\n", res.ElapsedPeriods, res.Unit, res.Horizon)
	fmt.Fprintf(w, "  Curve:              %s\n", res.Curve)
	fmt.Fprintf(w, "  Cliff:              %d %s\n", res.CliffPeriods(), res.Unit)
	fmt.Fprintf(w, "  Vested:             %s of %s (%s%%)\n", units(res.VestedUnits), units(res.TotalUnits), res.VestedPercent().StringFixed(2))
	fmt.Fprintf(w, "  Granted:            %s%% of outstanding\n", res.GrantedPercentage.StringFixed(4))
	fmt.Fprintf(w, "  Price now / future: %s / %s\n", money(res.CurrentPrice), money(res.FuturePrice))
	fmt.Fprintf(w, "  Market cap:         %s / %s\n", money(res.CurrentMarketCap), money(res.FutureMarketCap))
	fmt.Fprintf(w, "  Exercise cost:      %s\n", money(r.ExerciseCost))
	fmt.Fprintf(w, "  Return now:         %s\n", money(r.CurrentReturn))
	fmt.Fprintf(w, "  Return at horizon:  %s\n", money(r.FutureReturn))
	fmt.Fprintf(w, "\n  --- TAX (%s) ---\n", t.Rule)
	fmt.Fprintf(w, "  Exercise tax:       %s\n", money(t.ExerciseTax))
	fmt.Fprintf(w, "  Sale tax:           %s\n", money(t.SaleTax))
	fmt.Fprintf(w, "  Total tax:          %s (nominal %s%%, effective %s%%)\n",
		money(t.TotalTax), t.NominalRatePercent.StringFixed(3), t.EffectiveRatePercent.StringFixed(3))
	fmt.Fprintf(w, "  Net after tax:      %s\n", money(t.NetAfterTax))
}

// Comparison writes one row per curve.
func Comparison(w io.Writer, results []*schedule.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Curve", "Vested", "Vested %", "Return now", "Return at horizon", "Total tax", "Net after tax")

	for _, res := range results {
		if err := table.Append(
			string(res.Curve),
			units(res.VestedUnits),
			res.VestedPercent().StringFixed(2),
			money(res.Returns.CurrentReturn),
			money(res.Returns.FutureReturn),
			money(res.Tax.TotalTax),
			money(res.Tax.NetAfterTax),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func units(d decimal.Decimal) string { return d.StringFixed(2) }
func money(d decimal.Decimal) string { return d.StringFixed(2) }
