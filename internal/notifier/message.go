package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ilhicas/cost-notifier/internal/billing"
)

// FormatMessage renders the chat text for a cost figure
func FormatMessage(cost billing.Cost) string {
	return fmt.Sprintf("Usage cost: %s %s", formatAmount(cost.Amount), cost.Unit)
}

// formatAmount prints the shortest exact form and keeps a decimal point on
// whole numbers, so 100 reads "100.0".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}
