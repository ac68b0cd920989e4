package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/cli"
	"github.com/ilhicas/cost-notifier/internal/config"
	"github.com/ilhicas/cost-notifier/internal/logging"

	// Register publishers
	_ "github.com/ilhicas/cost-notifier/internal/providers/aws"
	_ "github.com/ilhicas/cost-notifier/internal/providers/newrelic"
	_ "github.com/ilhicas/cost-notifier/internal/providers/pushgateway"
)

var (
	cfgFile string
	envFile string

	cfg *config.Config
	log *logrus.Logger

	// deps is left empty in production; cli.Run builds what is missing
	deps cli.Deps
)

var rootCmd = &cobra.Command{
	Use:   "cost-notifier",
	Short: "Post cloud billing spend to a chat channel",
	Long: `A CLI tool meant to run on a schedule. It queries AWS Cost Explorer for the
account's spend over a date window and posts a one-line summary to Slack.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cost-notifier.yaml or $HOME/.cost-notifier.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	bindFlags(viper.GetViper())
}

func bindFlags(v *viper.Viper) {
	v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("cost-notifier")
	}

	found, err := readConfig()
	if err != nil {
		return err
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	log, err = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	if found {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else {
		log.Debug("no config file found, using defaults and environment")
	}

	return nil
}

// readConfig reads the selected config file. Only a file that does not exist
// is skipped; one that exists but cannot be parsed fails startup.
func readConfig() (bool, error) {
	err := viper.ReadInConfig()
	if err == nil {
		return true, nil
	}
	if cfgFile != "" {
		return false, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return false, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
	}

	home, herr := os.UserHomeDir()
	if herr != nil {
		return false, nil
	}
	fallback := filepath.Join(home, ".cost-notifier.yaml")
	if _, serr := os.Stat(fallback); serr != nil {
		return false, nil
	}

	viper.SetConfigFile(fallback)
	if err := viper.ReadInConfig(); err != nil {
		return false, fmt.Errorf("error reading config file %s: %w", fallback, err)
	}
	return true, nil
}
