package newrelic

import (
	"context"
	"fmt"
	"os"

	"github.com/newrelic/newrelic-client-go/newrelic"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/providers"
)

// EventType is the custom event type cost reports are recorded under
const EventType = "CloudCostReport"

// EventCreator is the slice of the New Relic events client the publisher uses
type EventCreator interface {
	CreateEvent(accountID int, event interface{}) error
}

// Publisher records each reported cost as a New Relic custom event
type Publisher struct {
	events    EventCreator
	accountID int
}

// NewPublisher creates a publisher from the newrelic.* configuration keys
func NewPublisher(v *viper.Viper) (*Publisher, error) {
	insertKey := v.GetString("newrelic.insert_key")
	if insertKey == "" {
		insertKey = os.Getenv("NEW_RELIC_INSERT_KEY")
	}
	if insertKey == "" {
		return nil, fmt.Errorf("NEW_RELIC_INSERT_KEY environment variable not set")
	}

	accountID := v.GetInt("newrelic.account_id")
	if accountID <= 0 {
		return nil, fmt.Errorf("newrelic.account_id must be set")
	}

	client, err := newrelic.New(newrelic.ConfigInsightsInsertKey(insertKey))
	if err != nil {
		return nil, fmt.Errorf("error creating New Relic client: %w", err)
	}

	return NewPublisherWithEvents(&client.Events, accountID), nil
}

// NewPublisherWithEvents wraps an existing events client
func NewPublisherWithEvents(events EventCreator, accountID int) *Publisher {
	return &Publisher{events: events, accountID: accountID}
}

// GetName returns the publisher name
func (p *Publisher) GetName() string {
	return "New Relic"
}

// Publish sends one CloudCostReport event. The events API has no context
// support, so ctx is only checked before the call.
func (p *Publisher) Publish(ctx context.Context, rec providers.CostRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.events.CreateEvent(p.accountID, buildEvent(rec)); err != nil {
		return fmt.Errorf("error creating New Relic event: %w", err)
	}

	return nil
}

func buildEvent(rec providers.CostRecord) map[string]interface{} {
	return map[string]interface{}{
		"eventType":   EventType,
		"runId":       rec.RunID,
		"metric":      rec.Query.Metric,
		"granularity": rec.Query.Granularity.String(),
		"windowStart": rec.Query.Window.Start,
		"windowEnd":   rec.Query.Window.End,
		"amount":      rec.Cost.Amount,
		"currency":    rec.Cost.Unit,
		"timestamp":   rec.At.Unix(),
	}
}
