package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nholabs/claimsight/internal/config"
	"github.com/nholabs/claimsight/internal/exitcode"
)

var (
	cfg     = config.Defaults()
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "claimsight",
	Short: "HMO operations analytics backend",
	Long:  "Loads clinical and financial extracts, reconciles benefit usage and revenue, and serves the derived tables over a JSON API with background refresh.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("CLAIMSIGHT_DB_URL"), "Postgres connection string (or set CLAIMSIGHT_DB_URL)")
	pf.StringVar(&cfg.DataDir, "data-dir", "", "Parquet extract directory (alternative to --dsn)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel table loads per refresh cycle")
	pf.StringVar(&cfgFile, "config", "", "YAML config file (flags take precedence)")
}

// mergeConfigFile applies config-file values under any flags the user set
// explicitly: defaults < file < flags.
func mergeConfigFile(cmd *cobra.Command) error {
	if cfgFile == "" {
		return nil
	}
	fromFlags := cfg
	if err := cfg.LoadFromFile(cfgFile); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dsn") {
		cfg.DSN = fromFlags.DSN
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = fromFlags.DataDir
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = fromFlags.LogFormat
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = fromFlags.LogLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = fromFlags.Workers
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = fromFlags.ListenAddr
	}
	if flags.Changed("refresh-interval") {
		cfg.RefreshInterval = fromFlags.RefreshInterval
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = fromFlags.PollInterval
	}
	if flags.Changed("refresh-cron") {
		cfg.RefreshCron = fromFlags.RefreshCron
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
