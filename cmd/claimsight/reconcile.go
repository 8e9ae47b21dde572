package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nholabs/claimsight/internal/exitcode"
	"github.com/nholabs/claimsight/internal/logging"
	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/refresh"
	"github.com/nholabs/claimsight/internal/source/parquetdir"
	"github.com/nholabs/claimsight/internal/source/sqlsource"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Load extracts, run all reconciliations once, and print a summary",
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if err := mergeConfigFile(cmd); err != nil {
		return err
	}
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

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

	started := time.Now()
	ds, err := loader.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.LoadError)
	}

	snap, err := refresh.Build(ds, time.Now(), log)
	if err != nil {
		log.Error().Err(err).Msg("reconciliation failed")
		os.Exit(exitcode.ReconcileError)
	}

	var rows int64
	for _, n := range snap.RowCounts {
		if n > 0 {
			rows += n
		}
	}
	fmt.Printf("Reconcile complete: %d source rows, %d combined usage rows, %d exceedances, %d companies balanced (%.1fs)\n",
		rows,
		len(snap.Recon.Usage[model.SourceCombined]),
		len(snap.Recon.Exceedances[model.SourceCombined]),
		len(snap.Revenue),
		time.Since(started).Seconds())
	return nil
}
