// Package sqlsource loads the tabular data store straight from the upstream
// reporting database.
package sqlsource

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
)

const defaultWorkers = 4

// Loader reads every extract view into a Dataset, one query per table, run
// in parallel on the pool.
type Loader struct {
	pool    *pgxpool.Pool
	workers int
	log     zerolog.Logger
}

func New(pool *pgxpool.Pool, workers int, log zerolog.Logger) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{
		pool:    pool,
		workers: workers,
		log:     log.With().Str("component", "sqlsource").Logger(),
	}
}

// Load runs every extract query and scans the rows by column name.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{LoadedAt: time.Now()}
	counts := xsync.NewMap[string, int64]()

	workers := pond.NewPool(l.workers)
	defer workers.StopAndWait()
	group := workers.NewGroupContext(ctx)

	load := func(e model.Extract, read func(ctx context.Context) (int, error)) {
		group.SubmitErr(func() error {
			n, err := read(ctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", e.Name, err)
			}
			counts.Store(e.Name, int64(n))
			return nil
		})
	}

	for _, e := range model.AllExtracts {
		switch e.Name {
		case "pa_procedures":
			load(e, into(l.pool, e.Name, &ds.PA))
		case "claims":
			load(e, into(l.pool, e.Name, &ds.Claims))
		case "providers":
			load(e, into(l.pool, e.Name, &ds.Providers))
		case "groups":
			load(e, into(l.pool, e.Name, &ds.Groups))
		case "plans":
			load(e, into(l.pool, e.Name, &ds.Plans))
		case "group_plans":
			load(e, into(l.pool, e.Name, &ds.GroupPlans))
		case "group_contracts":
			load(e, into(l.pool, e.Name, &ds.Contracts))
		case "group_coverage":
			load(e, into(l.pool, e.Name, &ds.Coverage))
		case "enrollees":
			load(e, into(l.pool, e.Name, &ds.Enrollees))
		case "member_plans":
			load(e, into(l.pool, e.Name, &ds.MemberPlans))
		case "benefit_procedures":
			load(e, into(l.pool, e.Name, &ds.BenefitProcedures))
		case "plan_benefit_limits":
			load(e, into(l.pool, e.Name, &ds.PlanLimits))
		case "debit_notes":
			load(e, into(l.pool, e.Name, &ds.DebitNotes))
		case "ledger_entries":
			load(e, into(l.pool, e.Name, &ds.Ledger))
		case "account_setup":
			load(e, into(l.pool, e.Name, &ds.AccountSetup))
		case "company_accounts":
			load(e, into(l.pool, e.Name, &ds.CompanyAccounts))
		}
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("load from database: %w", err)
	}

	evt := l.log.Info()
	counts.Range(func(table string, n int64) bool {
		evt = evt.Int64(table, n)
		return true
	})
	evt.Msg("database extracts loaded")
	return ds, nil
}

func into[T any](pool *pgxpool.Pool, table string, dst *[]T) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		rows, err := loadTable[T](ctx, pool, table)
		if err != nil {
			return 0, err
		}
		*dst = rows
		return len(rows), nil
	}
}

// loadTable runs the table's embedded query and scans into typed rows by
// column name.
func loadTable[T any](ctx context.Context, pool *pgxpool.Pool, table string) ([]T, error) {
	q, err := query(table)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}
