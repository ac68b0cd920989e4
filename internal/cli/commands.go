package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/billing"
	"github.com/ilhicas/cost-notifier/internal/chat"
	"github.com/ilhicas/cost-notifier/internal/config"
	"github.com/ilhicas/cost-notifier/internal/notifier"
	"github.com/ilhicas/cost-notifier/internal/providers"
	"github.com/ilhicas/cost-notifier/internal/providers/aws"
)

// Params are the per-invocation flags
type Params struct {
	// AsOf is a YYYY-MM-DD date; empty means today (UTC)
	AsOf   string
	DryRun bool
}

// Deps overrides collaborators; nil fields are built from configuration
type Deps struct {
	Billing     providers.BillingProvider
	ChatFactory chat.Factory
	Publishers  []providers.Publisher
}

// Run builds a notifier from cfg and executes it once
func Run(ctx context.Context, cfg *config.Config, v *viper.Viper, p Params, deps Deps, log logrus.FieldLogger) (*notifier.Result, error) {
	if !p.DryRun {
		if err := cfg.RequireSlack(); err != nil {
			return nil, err
		}
	}

	asOf, err := parseAsOf(p.AsOf)
	if err != nil {
		return nil, err
	}

	granularity, err := cfg.Billing.ParsedGranularity()
	if err != nil {
		return nil, err
	}
	window, err := cfg.Billing.ParsedWindow()
	if err != nil {
		return nil, err
	}

	if deps.Billing == nil {
		awsCfg, err := aws.LoadConfig(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("error initializing AWS Cost Explorer provider: %w", err)
		}
		deps.Billing = aws.NewCostExplorerProvider(awsCfg)
	}

	if deps.ChatFactory == nil {
		deps.ChatFactory = chat.NewSlackFactory(chat.SlackOptions{APIURL: cfg.Slack.APIURL})
	}

	if deps.Publishers == nil && !p.DryRun {
		deps.Publishers, err = providers.BuildPublishers(cfg.Publishers, v)
		if err != nil {
			return nil, err
		}
	}

	n, err := notifier.New(notifier.Options{
		Billing:        deps.Billing,
		ChatFactory:    deps.ChatFactory,
		Publishers:     deps.Publishers,
		SlackToken:     cfg.Slack.Token,
		SlackChannelID: cfg.Slack.ChannelID,
		Granularity:    granularity,
		Metric:         cfg.Billing.Metric,
		Window:         window,
		AsOf:           asOf,
		DryRun:         p.DryRun,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	return n.Run(ctx)
}

// parseAsOf parses an optional YYYY-MM-DD date
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(billing.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of date format: %w", err)
	}
	return t, nil
}
