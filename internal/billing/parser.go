package billing

import (
	"strconv"

	"github.com/ilhicas/cost-notifier/internal/apperr"
)

// Extract pulls a single cost figure for metric out of the report's first
// bucket. Only a missing bucket, missing totals, a missing metric key or an
// unparseable amount fail; an absent amount reads as "0" and an absent unit
// as "".
func Extract(report *CostReport, metric string) (Cost, error) {
	var buckets []Bucket
	if report != nil {
		buckets = report.Buckets
	}

	if len(buckets) == 0 {
		return Cost{}, apperr.New(apperr.NoResultBucket, "extract", nil)
	}
	first := buckets[0]

	if first.Totals == nil {
		return Cost{}, apperr.New(apperr.MissingTotals, "extract", nil)
	}

	value, ok := first.Totals[metric]
	if !ok {
		return Cost{}, apperr.New(apperr.MetricNotFound, "extract "+metric, nil)
	}

	raw := value.Amount.OrElse("0")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Cost{}, apperr.New(apperr.AmountParseError, "extract "+metric, err)
	}

	return Cost{
		Amount: amount,
		Unit:   value.Unit.OrElse(""),
	}, nil
}
