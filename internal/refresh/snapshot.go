package refresh

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/ledger"
	"github.com/nholabs/claimsight/internal/metrics"
	"github.com/nholabs/claimsight/internal/recon"
)

// Snapshot is one atomically published bundle of source and derived tables.
// It is immutable once published; a new cycle builds a fresh one and swaps
// the pointer.
type Snapshot struct {
	CycleID uuid.UUID `json:"cycle_id"`

	Data    *dataset.Dataset        `json:"-"`
	Recon   *recon.Result           `json:"-"`
	Revenue []ledger.CompanyBalance `json:"-"`
	Triage  ledger.Triage           `json:"-"`
	Metrics metrics.Summary         `json:"-"`

	RowCounts map[string]int64 `json:"row_counts"`

	// LastUpdate is when this snapshot was published. LastHeartbeat is the
	// scheduler's liveness signal at publication time; the live value is on
	// the scheduler, not here.
	LastUpdate    time.Time `json:"last_update"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Build runs every derived computation over a freshly loaded dataset. The
// benefit reconciliation is load-bearing: its failure fails the cycle. The
// financial tables are optional extracts, so a missing ledger input degrades
// to an empty revenue section rather than failing the clinical side.
func Build(ds *dataset.Dataset, now time.Time, log zerolog.Logger) (*Snapshot, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	res, err := recon.Run(ds, log)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		CycleID:       uuid.New(),
		Data:          ds,
		Recon:         res,
		Metrics:       metrics.Compute(ds, now),
		RowCounts:     ds.RowCounts(),
		LastUpdate:    now,
		LastHeartbeat: now,
	}

	revenue, err := ledger.Reconcile(ds, res.Envelopes, log)
	switch {
	case err == nil:
		snap.Revenue = revenue
		snap.Triage = ledger.DebitTriage(ds.DebitNotes, res.Envelopes)
	case errors.As(err, new(*dataset.MissingSourceError)):
		log.Warn().Err(err).Msg("financial extracts absent, skipping revenue reconciliation")
	default:
		return nil, err
	}

	return snap, nil
}
