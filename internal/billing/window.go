package billing

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the calendar date layout the billing API expects
const DateFormat = "2006-01-02"

// DateInterval is a [Start, End) pair of calendar dates formatted with DateFormat
type DateInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (d DateInterval) String() string {
	return d.Start + ".." + d.End
}

// Today truncates a timestamp to its UTC calendar date
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeWindow returns the one-day lookback window ending at asOf.
// Time of day is ignored; the date is taken in UTC.
func ComputeWindow(asOf time.Time) DateInterval {
	end := Today(asOf)
	start := end.AddDate(0, 0, -1)
	return DateInterval{
		Start: start.Format(DateFormat),
		End:   end.Format(DateFormat),
	}
}

// WindowPolicy decides which dates a billing query covers
type WindowPolicy int

const (
	// OneDay looks back exactly one day regardless of granularity
	OneDay WindowPolicy = iota
	// Period sizes the window from the granularity: month-to-date for
	// Monthly, one day otherwise
	Period
)

func (p WindowPolicy) String() string {
	switch p {
	case OneDay:
		return "one-day"
	case Period:
		return "period"
	default:
		return fmt.Sprintf("WindowPolicy(%d)", int(p))
	}
}

// ParseWindowPolicy parses "one-day" or "period"
func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one-day":
		return OneDay, nil
	case "period":
		return Period, nil
	default:
		return OneDay, fmt.Errorf("unsupported window policy: %q (want one-day or period)", s)
	}
}

// Window computes the query interval for asOf under the policy
func (p WindowPolicy) Window(asOf time.Time, g Granularity) DateInterval {
	if p != Period || g != Monthly {
		return ComputeWindow(asOf)
	}

	end := Today(asOf)
	// The month that holds the last full day before asOf, so the 1st of a
	// month reports the whole previous month.
	last := end.AddDate(0, 0, -1)
	start := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateInterval{
		Start: start.Format(DateFormat),
		End:   end.Format(DateFormat),
	}
}
