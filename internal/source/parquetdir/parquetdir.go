// Package parquetdir loads the tabular data store from a directory of
// nightly Parquet extract dumps, one file per source table.
package parquetdir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/parquet-go/parquet-go"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
)

const defaultWorkers = 4

// Loader reads every extract file in a directory into a Dataset. Tables are
// independent until the join stage, so the per-table reads run in parallel.
type Loader struct {
	dir     string
	workers int
	log     zerolog.Logger
}

func New(dir string, workers int, log zerolog.Logger) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{
		dir:     dir,
		workers: workers,
		log:     log.With().Str("component", "parquetdir").Str("dir", dir).Logger(),
	}
}

// Load materializes all extract files. Every required file missing from the
// directory is reported in one error, not just the first; a partial extract
// dump is the most common operational failure and the full list is what the
// operator needs. Optional files that are absent load as empty tables.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := l.checkRequired(); err != nil {
		return nil, err
	}

	ds := &dataset.Dataset{LoadedAt: time.Now()}
	counts := xsync.NewMap[string, int64]()

	pool := pond.NewPool(l.workers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	load := func(e model.Extract, read func(path string) (int, error)) {
		group.SubmitErr(func() error {
			path := filepath.Join(l.dir, e.File)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return nil // optional, required absence already rejected
			}
			n, err := read(path)
			if err != nil {
				return err
			}
			counts.Store(e.Name, int64(n))
			return nil
		})
	}

	for _, e := range model.AllExtracts {
		switch e.Name {
		case "pa_procedures":
			load(e, into(e.Name, &ds.PA))
		case "claims":
			load(e, into(e.Name, &ds.Claims))
		case "providers":
			load(e, into(e.Name, &ds.Providers))
		case "groups":
			load(e, into(e.Name, &ds.Groups))
		case "plans":
			load(e, into(e.Name, &ds.Plans))
		case "group_plans":
			load(e, into(e.Name, &ds.GroupPlans))
		case "group_contracts":
			load(e, into(e.Name, &ds.Contracts))
		case "group_coverage":
			load(e, into(e.Name, &ds.Coverage))
		case "enrollees":
			load(e, into(e.Name, &ds.Enrollees))
		case "member_plans":
			load(e, into(e.Name, &ds.MemberPlans))
		case "benefit_procedures":
			load(e, into(e.Name, &ds.BenefitProcedures))
		case "plan_benefit_limits":
			load(e, into(e.Name, &ds.PlanLimits))
		case "debit_notes":
			load(e, into(e.Name, &ds.DebitNotes))
		case "ledger_entries":
			load(e, into(e.Name, &ds.Ledger))
		case "account_setup":
			load(e, into(e.Name, &ds.AccountSetup))
		case "company_accounts":
			load(e, into(e.Name, &ds.CompanyAccounts))
		}
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("load extract dir: %w", err)
	}

	evt := l.log.Info()
	counts.Range(func(table string, n int64) bool {
		evt = evt.Int64(table, n)
		return true
	})
	evt.Msg("extract directory loaded")
	return ds, nil
}

// checkRequired verifies every required extract file exists before any read
// starts.
func (l *Loader) checkRequired() error {
	var missing []string
	for _, e := range model.AllExtracts {
		if !e.Required {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.dir, e.File)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, e.File)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", e.File, err)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("extract dir %s is missing required files: %s",
			l.dir, strings.Join(missing, ", "))
	}
	return nil
}

// into binds a destination slice to a read function. Each table writes to
// its own field, so concurrent tasks never share a destination.
func into[T any](table string, dst *[]T) func(path string) (int, error) {
	return func(path string) (int, error) {
		rows, err := readTable[T](path, table)
		if err != nil {
			return 0, err
		}
		*dst = rows
		return len(rows), nil
	}
}

// readTable streams one Parquet file into typed rows, validating the file's
// schema against the row type first so a missing column is a SchemaError
// naming the table and column instead of a zero-filled field.
func readTable[T any](path, table string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", table, err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", table, err)
	}

	var zero T
	if err := validateSchema(table, parquet.SchemaOf(zero), pf.Schema()); err != nil {
		return nil, err
	}

	r := parquet.NewGenericReader[T](pf)
	defer r.Close()

	rows := make([]T, 0, r.NumRows())
	buf := make([]T, 512)
	for {
		n, err := r.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", table, err)
		}
	}
	return rows, nil
}

// validateSchema checks that every column the row type expects exists in the
// file.
func validateSchema(table string, want, got *parquet.Schema) error {
	have := make(map[string]bool, len(got.Fields()))
	for _, f := range got.Fields() {
		have[strings.ToLower(f.Name())] = true
	}
	for _, f := range want.Fields() {
		if !have[strings.ToLower(f.Name())] {
			return &dataset.SchemaError{Table: table, Column: f.Name()}
		}
	}
	return nil
}
