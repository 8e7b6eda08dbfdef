package domain

import (
	"fmt"
	"strings"
)

// Interval is the cadence of a periodic cash flow
type Interval string

const (
	IntervalDaily     Interval = "daily"
	IntervalWeekly    Interval = "weekly"
	IntervalBiWeekly  Interval = "bi_weekly"
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// periodsPerYear maps each interval to the number of payments in one year
var periodsPerYear = map[Interval]float64{
	IntervalDaily:     365,
	IntervalWeekly:    52,
	IntervalBiWeekly:  26,
	IntervalMonthly:   12,
	IntervalQuarterly: 4,
	IntervalYearly:    1,
}

// PeriodsPerYear returns the number of payments per year and whether the interval is known
func (i Interval) PeriodsPerYear() (float64, bool) {
	n, ok := periodsPerYear[i]
	return n, ok
}

// Valid reports whether the interval is one of the supported cadences
func (i Interval) Valid() bool {
	_, ok := periodsPerYear[i]
	return ok
}

// ParseInterval converts user input into an Interval. The empty string maps to monthly.
func ParseInterval(s string) (Interval, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return IntervalMonthly, nil
	}
	if normalized == "biweekly" {
		normalized = string(IntervalBiWeekly)
	}

	interval := Interval(normalized)
	if !interval.Valid() {
		return "", &CalcError{
			Kind:      ErrInvalidInterval,
			Operation: "parse_interval",
			Message:   fmt.Sprintf("unknown interval %q (valid: daily, weekly, bi_weekly, monthly, quarterly, yearly)", s),
		}
	}
	return interval, nil
}
