// Package pushgateway publishes cost figures to a Prometheus Pushgateway,
// which is how short-lived scheduled jobs expose metrics.
package pushgateway

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/providers"
)

// DefaultJob is used when pushgateway.job is not set
const DefaultJob = "cost_notifier"

func init() {
	providers.RegisterPublisher("pushgateway", func(v *viper.Viper) (providers.Publisher, error) {
		return NewPublisher(v.GetString("pushgateway.url"), v.GetString("pushgateway.job"))
	})
}

// Publisher replaces the job's metric group on every push
type Publisher struct {
	url string
	job string
}

// NewPublisher creates a publisher for the gateway at url
func NewPublisher(url, job string) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("pushgateway.url must be set")
	}
	if job == "" {
		job = DefaultJob
	}
	return &Publisher{url: url, job: job}, nil
}

// GetName returns the publisher name
func (p *Publisher) GetName() string {
	return "Prometheus Pushgateway"
}

// Publish pushes the cost gauge and a last-success timestamp
func (p *Publisher) Publish(ctx context.Context, rec providers.CostRecord) error {
	cost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cloud_billing_cost",
		Help: "Cost reported by the billing provider for the queried window.",
	}, []string{"metric", "unit", "granularity", "window_start", "window_end"})
	cost.WithLabelValues(
		rec.Query.Metric,
		rec.Cost.Unit,
		rec.Query.Granularity.String(),
		rec.Query.Window.Start,
		rec.Query.Window.End,
	).Set(rec.Cost.Amount)

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cloud_billing_last_success_timestamp_seconds",
		Help: "Unix time of the last successful cost notification.",
	})
	lastSuccess.Set(float64(rec.At.Unix()))

	err := push.New(p.url, p.job).
		Collector(cost).
		Collector(lastSuccess).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("error pushing metrics to %s: %w", p.url, err)
	}

	return nil
}
