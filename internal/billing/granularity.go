package billing

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// Granularity is the time-bucketing resolution requested from the billing provider
type Granularity int

const (
	Monthly Granularity = iota
	Daily
	Hourly
)

// String returns the provider token for the granularity
func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "MONTHLY"
	case Daily:
		return "DAILY"
	case Hourly:
		return "HOURLY"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// CostExplorer maps the granularity onto the Cost Explorer enum
func (g Granularity) CostExplorer() types.Granularity {
	return types.Granularity(g.String())
}

// ParseGranularity parses a provider token, ignoring case
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MONTHLY":
		return Monthly, nil
	case "DAILY":
		return Daily, nil
	case "HOURLY":
		return Hourly, nil
	default:
		return Monthly, fmt.Errorf("unsupported granularity: %q (want MONTHLY, DAILY or HOURLY)", s)
	}
}
