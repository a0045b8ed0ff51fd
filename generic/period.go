package generic

import "github.com/shopspring/decimal"

// =============================================================================
// PERIOD UNIT - The step size of a vesting schedule
// =============================================================================

// PeriodUnit defines what one schedule period means in calendar time.
// Vesting length, cliff and elapsed offsets are all counted in this unit;
// price growth is always annual, so offsets are converted with YearFraction.
//
// Examples:
//   - 4-year grant, 1-year cliff: UnitYear, vesting 4, cliff 1
//   - Same grant tracked monthly:  UnitMonth, vesting 48, cliff 12
type PeriodUnit string

const (
	UnitYear  PeriodUnit = "year"
	UnitMonth PeriodUnit = "month"
)

var twelve = decimal.NewFromInt(12)

// ParsePeriodUnit accepts singular and plural forms; empty means years.
func ParsePeriodUnit(s string) (PeriodUnit, error) {
	switch s {
	case "", "year", "years", "yearly":
		return UnitYear, nil
	case "month", "months", "monthly":
		return UnitMonth, nil
	}
	return "", &InvalidInputError{Field: "grant.period_unit", Value: s, Reason: "must be year or month"}
}

func (u PeriodUnit) Valid() bool {
	return u == UnitYear || u == UnitMonth
}

// YearFraction converts a period offset into years.
func (u PeriodUnit) YearFraction(periods int) decimal.Decimal {
	p := decimal.NewFromInt(int64(periods))
	if u == UnitMonth {
		return p.Div(twelve)
	}
	return p
}

// DateOf returns the calendar date of period p counted from start.
func (u PeriodUnit) DateOf(start TimePoint, p int) TimePoint {
	if u == UnitMonth {
		return start.AddMonths(p)
	}
	return start.AddYears(p)
}

// String returns the plural label used in tables ("years", "months").
func (u PeriodUnit) String() string {
	return string(u) + "s"
}
