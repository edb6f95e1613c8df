package enums

import "fmt"

// Interval defines the billing cadence for a plan. Values match the
// wire strings Paystack expects in plan payloads.
type Interval string

const (
	IntervalDaily      Interval = "daily"
	IntervalWeekly     Interval = "weekly"
	IntervalMonthly    Interval = "monthly"
	IntervalQuarterly  Interval = "quarterly"
	IntervalBiannually Interval = "biannually"
	IntervalAnnually   Interval = "annually"
)

var validIntervals = []Interval{
	IntervalDaily,
	IntervalWeekly,
	IntervalMonthly,
	IntervalQuarterly,
	IntervalBiannually,
	IntervalAnnually,
}

// String implements fmt.Stringer.
func (i Interval) String() string {
	return string(i)
}

// IsValid reports whether the value is a known Interval.
func (i Interval) IsValid() bool {
	for _, candidate := range validIntervals {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInterval converts raw input into an Interval.
func ParseInterval(value string) (Interval, error) {
	for _, candidate := range validIntervals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid interval %q", value)
}
