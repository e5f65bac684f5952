// Package cmd wires the douscan subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/config"
	"github.com/douscan/douscan/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "douscan",
		Short: "Job listing crawler and Telegram notifier for jobs.dou.ua",
		Long: `douscan crawls job listing categories on jobs.dou.ua, stores new
vacancies in Postgres keyed by URL, and delivers unseen ones to a
Telegram channel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every
// subcommand.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}
