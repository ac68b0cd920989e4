package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/cli"
	"github.com/ilhicas/cost-notifier/internal/reports"
)

func init() {
	var params cli.Params

	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Query billing and post the cost to Slack",
		Long: `Query AWS Cost Explorer for the configured window and post the cost summary to
the configured Slack channel. Any failure aborts the run before a message is sent
and exits non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := cli.Run(cmd.Context(), cfg, viper.GetViper(), params, deps, log)
			if err != nil {
				return err
			}

			if params.DryRun {
				return reports.FromResult(res).Output(cfg.Output, cmd.OutOrStdout())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Message sent successfully %s\n", res.Ack)
			return nil
		},
	}

	notifyCmd.Flags().StringVar(&params.AsOf, "as-of", "", "Query date (YYYY-MM-DD), defaults to today in UTC")
	notifyCmd.Flags().BoolVar(&params.DryRun, "dry-run", false, "Query and format the message without posting it")

	rootCmd.AddCommand(notifyCmd)
}
