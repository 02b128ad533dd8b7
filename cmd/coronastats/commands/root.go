package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/telemetry"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "coronastats",
	Short: "coronastats scrapes worldwide COVID-19 counters and serves them over HTTP.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a json5 config file (default "+config.DefaultFile+" if present).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	telemetry.InitSlog(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}
