package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/cli"
	"github.com/ilhicas/cost-notifier/internal/reports"
)

func init() {
	var asOf string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the cost for the configured window without posting",
		Long:  `Query AWS Cost Explorer exactly as notify would and print the result locally. Nothing is sent to Slack.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := cli.Run(cmd.Context(), cfg, viper.GetViper(), cli.Params{AsOf: asOf, DryRun: true}, deps, log)
			if err != nil {
				return fmt.Errorf("error generating report: %w", err)
			}

			if err := reports.FromResult(res).Output(cfg.Output, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("error outputting report: %w", err)
			}
			return nil
		},
	}

	reportCmd.Flags().StringVar(&asOf, "as-of", "", "Query date (YYYY-MM-DD), defaults to today in UTC")

	rootCmd.AddCommand(reportCmd)
}
