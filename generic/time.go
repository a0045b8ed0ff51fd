package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar date used to label vest events
// =============================================================================

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() TimePoint {
	now := time.Now()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// ParseDate reads an ISO date (YYYY-MM-DD). Empty input yields the zero TimePoint.
func ParseDate(s string) (TimePoint, error) {
	if s == "" {
		return TimePoint{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, &InvalidInputError{Field: "grant.start_date", Value: s, Reason: "must be YYYY-MM-DD"}
	}
	return TimePoint{Time: t}, nil
}

// Arithmetic
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

func (tp TimePoint) IsZero() bool { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format("2006-01-02")
}
