package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chidi150c/backtestlab/internal/obslog"
	"github.com/chidi150c/backtestlab/internal/runconfig"
)

var cfg *runconfig.Config

var rootCmd = &cobra.Command{
	Use:   "backtestlab",
	Short: "Event-driven backtesting engine and parameter-sweep optimizer",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = runconfig.LoadFromFile(configFile)
		} else {
			cfg, err = runconfig.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(serveCmd)
}

func logOptions() obslog.Options {
	format := obslog.FormatConsole
	if cfg.Logging.Format == "json" {
		format = obslog.FormatJSON
	}
	return obslog.Options{Format: format, Level: obslog.ParseLevel(cfg.Logging.Level)}
}
