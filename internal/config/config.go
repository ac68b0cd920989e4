package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/apperr"
	"github.com/ilhicas/cost-notifier/internal/billing"
)

// EnvPrefix prefixes environment overrides, e.g. COST_NOTIFIER_BILLING_GRANULARITY
const EnvPrefix = "COST_NOTIFIER"

const redacted = "********"

// Config holds the application configuration
type Config struct {
	Output      string            `mapstructure:"output" yaml:"output"`
	Publishers  []string          `mapstructure:"publishers" yaml:"publishers"`
	Slack       SlackConfig       `mapstructure:"slack" yaml:"slack"`
	AWS         AWSConfig         `mapstructure:"aws" yaml:"aws"`
	Billing     BillingConfig     `mapstructure:"billing" yaml:"billing"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	CloudWatch  CloudWatchConfig  `mapstructure:"cloudwatch" yaml:"cloudwatch"`
	NewRelic    NewRelicConfig    `mapstructure:"newrelic" yaml:"newrelic"`
	Pushgateway PushgatewayConfig `mapstructure:"pushgateway" yaml:"pushgateway"`
}

// SlackConfig holds the chat destination
type SlackConfig struct {
	Token     string `mapstructure:"token" yaml:"token"`
	ChannelID string `mapstructure:"channel_id" yaml:"channel_id"`
	APIURL    string `mapstructure:"api_url" yaml:"api_url,omitempty"`
}

// AWSConfig holds AWS-specific configuration
type AWSConfig struct {
	Region      string `mapstructure:"region" yaml:"region"`
	Profile     string `mapstructure:"profile" yaml:"profile"`
	MaxAttempts int    `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// BillingConfig selects what gets queried
type BillingConfig struct {
	Granularity string `mapstructure:"granularity" yaml:"granularity"`
	Metric      string `mapstructure:"metric" yaml:"metric"`
	Window      string `mapstructure:"window" yaml:"window"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CloudWatchConfig configures the cloudwatch publisher
type CloudWatchConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// NewRelicConfig configures the newrelic publisher
type NewRelicConfig struct {
	AccountID int    `mapstructure:"account_id" yaml:"account_id"`
	InsertKey string `mapstructure:"insert_key" yaml:"insert_key"`
}

// PushgatewayConfig configures the pushgateway publisher
type PushgatewayConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	Job string `mapstructure:"job" yaml:"job"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "table")
	v.SetDefault("publishers", []string{})
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.channel_id", "")
	v.SetDefault("slack.api_url", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.max_attempts", 3)
	v.SetDefault("billing.granularity", billing.Monthly.String())
	v.SetDefault("billing.metric", billing.MetricUnblendedCost)
	v.SetDefault("billing.window", billing.OneDay.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cloudwatch.namespace", "CostNotifier")
	v.SetDefault("newrelic.account_id", 0)
	v.SetDefault("newrelic.insert_key", "")
	v.SetDefault("pushgateway.url", "")
	v.SetDefault("pushgateway.job", "cost_notifier")
}

// BindEnv maps environment variables onto configuration keys
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider-specific variable names
	bindings := map[string][]string{
		"slack.token":          {"SLACK_API_TOKEN", EnvPrefix + "_SLACK_TOKEN"},
		"slack.channel_id":     {"SLACK_CHANNEL_ID", EnvPrefix + "_SLACK_CHANNEL_ID"},
		"newrelic.insert_key":  {"NEW_RELIC_INSERT_KEY", EnvPrefix + "_NEWRELIC_INSERT_KEY"},
		"newrelic.account_id":  {"NEW_RELIC_ACCOUNT_ID", EnvPrefix + "_NEWRELIC_ACCOUNT_ID"},
		"pushgateway.url":      {"PUSHGATEWAY_URL", EnvPrefix + "_PUSHGATEWAY_URL"},
		"aws.profile":          {"AWS_PROFILE", EnvPrefix + "_AWS_PROFILE"},
		"cloudwatch.namespace": {EnvPrefix + "_CLOUDWATCH_NAMESPACE"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	return nil
}

// LoadDotEnv loads a dotenv file into the process environment without
// overriding variables that are already set
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// Load unmarshals and validates configuration from v. Files must already
// have been read into v.
func Load(v *viper.Viper) (*Config, error) {
	var config Config

	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks enumerated settings. Credentials are checked by RequireSlack.
func (c *Config) Validate() error {
	if _, err := c.Billing.ParsedGranularity(); err != nil {
		return err
	}
	if _, err := c.Billing.ParsedWindow(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Billing.Metric) == "" {
		return fmt.Errorf("billing.metric must not be empty")
	}
	switch c.Output {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output)
	}
	return nil
}

// RequireSlack fails with ConfigMissing when the chat token or channel is unset
func (c *Config) RequireSlack() error {
	var missing []string
	if c.Slack.Token == "" {
		missing = append(missing, "SLACK_API_TOKEN")
	}
	if c.Slack.ChannelID == "" {
		missing = append(missing, "SLACK_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.ConfigMissing, "config", fmt.Errorf("%s must be set", strings.Join(missing, " and ")))
	}
	return nil
}

// Redacted returns a copy with secrets masked
func (c *Config) Redacted() Config {
	out := *c
	if out.Slack.Token != "" {
		out.Slack.Token = redacted
	}
	if out.NewRelic.InsertKey != "" {
		out.NewRelic.InsertKey = redacted
	}
	return out
}

// ParsedGranularity parses Granularity
func (b BillingConfig) ParsedGranularity() (billing.Granularity, error) {
	return billing.ParseGranularity(b.Granularity)
}

// ParsedWindow parses Window
func (b BillingConfig) ParsedWindow() (billing.WindowPolicy, error) {
	return billing.ParseWindowPolicy(b.Window)
}
