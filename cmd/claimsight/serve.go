package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/nholabs/claimsight/internal/exitcode"
	"github.com/nholabs/claimsight/internal/logging"
	"github.com/nholabs/claimsight/internal/refresh"
	"github.com/nholabs/claimsight/internal/server"
	"github.com/nholabs/claimsight/internal/source/parquetdir"
	"github.com/nholabs/claimsight/internal/source/sqlsource"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh scheduler and JSON API server",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	f.DurationVar(&cfg.RefreshInterval, "refresh-interval", cfg.RefreshInterval, "Target age between reloads")
	f.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Scheduler wakeup interval")
	f.StringVar(&cfg.RefreshCron, "refresh-cron", "", "Optional cron spec for additional refreshes (e.g. \"0 6 * * *\")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := mergeConfigFile(cmd); err != nil {
		return err
	}
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var loader refresh.Loader
	if cfg.DSN != "" {
		pool, err := sqlsource.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		loader = sqlsource.New(pool, cfg.Workers, log)
	} else {
		loader = parquetdir.New(cfg.DataDir, cfg.Workers, log)
	}

	sched := refresh.New(loader, refresh.Options{
		Interval: cfg.RefreshInterval,
		Poll:     cfg.PollInterval,
	}, log)
	sched.Start(ctx)
	defer sched.Stop()

	if cfg.RefreshCron != "" {
		c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
		if _, err := c.AddFunc(cfg.RefreshCron, func() {
			if err := sched.ForceRefresh(ctx); err != nil {
				log.Error().Err(err).Msg("cron refresh failed")
			}
		}); err != nil {
			log.Error().Err(err).Str("spec", cfg.RefreshCron).Msg("invalid cron spec")
			os.Exit(exitcode.UsageError)
		}
		c.Start()
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.New(sched, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			os.Exit(exitcode.ServerError)
		}
	}
	return nil
}
