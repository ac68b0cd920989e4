package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configPath string

const defaultConfig = `# Cost Notifier Configuration

# Output format for report and notify --dry-run (table, json, or csv)
output: table

# Slack destination. Prefer the environment:
#   export SLACK_API_TOKEN=xoxb-...
#   export SLACK_CHANNEL_ID=C0123456789
slack:
  channel_id: ""

# AWS credentials come from the default chain (env, shared config, instance role)
aws:
  # Cost Explorer is served from us-east-1
  region: us-east-1
  # AWS Profile to use (optional)
  profile: ""
  # SDK attempts per billing query, retries included
  max_attempts: 3

billing:
  # MONTHLY, DAILY or HOURLY
  granularity: MONTHLY
  metric: UnblendedCost
  # one-day: always query the day before the run date
  # period:  month-to-date for MONTHLY, one day otherwise
  window: one-day

log:
  level: info
  format: text

# Extra destinations for the cost figure: cloudwatch, newrelic, pushgateway
publishers: []

cloudwatch:
  namespace: CostNotifier

newrelic:
  account_id: 0
  # export NEW_RELIC_INSERT_KEY=...

pushgateway:
  url: ""
  job: cost_notifier
`

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage configuration for the cost notifier.`,
	}

	generateConfigCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default configuration file",
		Long:  `Generate a default configuration file with every supported key and its default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := generateDefaultConfig(configPath)
			if err != nil {
				return fmt.Errorf("error generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file generated at: %s\n", path)
			return nil
		},
	}
	generateConfigCmd.Flags().StringVarP(&configPath, "path", "f", "cost-notifier.yaml", "Path to save the configuration file")

	showConfigCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg.Redacted())
		},
	}

	configCmd.AddCommand(generateConfigCmd, showConfigCmd)
	rootCmd.AddCommand(configCmd)
}

func generateDefaultConfig(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		path = filepath.Join(home, ".cost-notifier.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration file already exists at %s, use --path to specify a different location or delete the existing file", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("could not write configuration file: %w", err)
	}

	return path, nil
}
