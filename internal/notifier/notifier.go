// Package notifier runs one billing query and posts the result to chat.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ilhicas/cost-notifier/internal/apperr"
	"github.com/ilhicas/cost-notifier/internal/billing"
	"github.com/ilhicas/cost-notifier/internal/chat"
	"github.com/ilhicas/cost-notifier/internal/providers"
)

// Options configure a Notifier
type Options struct {
	Billing     providers.BillingProvider
	ChatFactory chat.Factory
	Publishers  []providers.Publisher

	SlackToken     string
	SlackChannelID string

	Granularity billing.Granularity
	Metric      string
	Window      billing.WindowPolicy

	// AsOf pins the query date; zero means today in UTC
	AsOf time.Time

	// DryRun stops after formatting the message
	DryRun bool

	Logger logrus.FieldLogger
	Now    func() time.Time
}

// Result describes a completed run
type Result struct {
	RunID    string            `json:"run_id"`
	Provider string            `json:"provider"`
	Query    billing.Query     `json:"query"`
	Cost     billing.Cost      `json:"cost"`
	Message  string            `json:"message"`
	Ack      *chat.DeliveryAck `json:"ack,omitempty"`
}

// Notifier performs the query → parse → format → post sequence
type Notifier struct {
	opts Options
	log  logrus.FieldLogger
	now  func() time.Time
}

// New validates opts and returns a Notifier
func New(opts Options) (*Notifier, error) {
	if opts.Billing == nil {
		return nil, fmt.Errorf("billing provider is required")
	}
	if !opts.DryRun {
		if opts.ChatFactory == nil {
			return nil, fmt.Errorf("chat factory is required")
		}
		if opts.SlackToken == "" || opts.SlackChannelID == "" {
			return nil, apperr.New(apperr.ConfigMissing, "notifier", fmt.Errorf("slack token and channel id are required"))
		}
	}
	if opts.Metric == "" {
		opts.Metric = billing.MetricUnblendedCost
	}

	n := &Notifier{opts: opts, log: opts.Logger, now: opts.Now}
	if n.log == nil {
		n.log = logrus.StandardLogger()
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n, nil
}

// Query returns the billing query the next run will issue
func (n *Notifier) Query() billing.Query {
	asOf := n.opts.AsOf
	if asOf.IsZero() {
		asOf = n.now()
	}
	return billing.Query{
		Window:      n.opts.Window.Window(asOf, n.opts.Granularity),
		Granularity: n.opts.Granularity,
		Metric:      n.opts.Metric,
	}
}

// Run executes one notification. Every stage fails fast; nothing is posted
// unless the cost was queried and parsed.
func (n *Notifier) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:    uuid.NewString(),
		Provider: n.opts.Billing.GetName(),
		Query:    n.Query(),
	}
	log := n.log.WithFields(logrus.Fields{
		"run_id":      res.RunID,
		"window":      res.Query.Window.String(),
		"granularity": res.Query.Granularity.String(),
		"metric":      res.Query.Metric,
	})

	log.Debug("querying billing provider")
	report, err := n.opts.Billing.QueryCost(ctx, res.Query)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", res.Provider, err)
	}

	cost, err := billing.Extract(report, res.Query.Metric)
	if err != nil {
		return nil, fmt.Errorf("error reading cost report: %w", err)
	}
	res.Cost = cost
	res.Message = FormatMessage(cost)

	log = log.WithFields(logrus.Fields{"amount": cost.Amount, "unit": cost.Unit})
	if n.opts.DryRun {
		log.Info("dry run, message not sent")
		return res, nil
	}

	client, err := n.opts.ChatFactory(n.opts.SlackToken, n.opts.SlackChannelID)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.New(apperr.DeliveryFailed, "build chat client", err)
		}
		return nil, fmt.Errorf("error creating chat client: %w", err)
	}

	ack, err := client.PostMessage(ctx, res.Message)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.New(apperr.DeliveryFailed, "post message", err)
		}
		return nil, fmt.Errorf("error sending message: %w", err)
	}
	res.Ack = ack
	log.WithField("ts", ack.Timestamp).Info("message sent")

	n.publish(ctx, log, providers.CostRecord{
		RunID: res.RunID,
		Query: res.Query,
		Cost:  res.Cost,
		At:    n.now(),
	})

	return res, nil
}

// publish fans the record out to every publisher. Failures are logged and
// do not fail the run.
func (n *Notifier) publish(ctx context.Context, log logrus.FieldLogger, rec providers.CostRecord) {
	for _, p := range n.opts.Publishers {
		if err := p.Publish(ctx, rec); err != nil {
			log.WithError(err).WithField("publisher", p.GetName()).Warn("publish failed")
			continue
		}
		log.WithField("publisher", p.GetName()).Debug("published")
	}
}
