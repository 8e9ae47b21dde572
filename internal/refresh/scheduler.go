// Package refresh runs the background reload loop and publishes snapshots.
// Single writer, many readers: the loop (or a forced refresh) builds a
// private snapshot and publishes it with one pointer swap, so readers always
// see a fully-old or fully-new table set and never block.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
)

// Loader materializes every source table. Implementations exist for a
// Parquet extract directory and for a live SQL connection.
type Loader interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// CycleError wraps whatever failed inside one refresh cycle. The scheduler
// is the only place load and reconcile errors are caught; everything below
// it propagates.
type CycleError struct {
	CycleID uuid.UUID
	Err     error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("refresh cycle %s: %v", e.CycleID, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

// Options tune the loop. Zero values fall back to the defaults.
type Options struct {
	// Interval is the target age between successful reloads.
	Interval time.Duration
	// Poll is how often the loop wakes to check the interval and bump the
	// heartbeat.
	Poll time.Duration
	// FailureBackoff delays the retry after a failed cycle so a broken
	// source is not hammered every poll tick.
	FailureBackoff time.Duration
}

const (
	defaultInterval = time.Hour
	defaultPoll     = 10 * time.Second
	defaultBackoff  = time.Minute
)

// Scheduler owns the refresh loop and the published snapshot.
type Scheduler struct {
	loader Loader
	opts   Options
	log    zerolog.Logger

	snapshot  atomic.Pointer[Snapshot]
	status    atomic.Int32
	heartbeat atomic.Int64 // unix nanos, bumped every poll tick

	// reloadMu serializes the loop against ForceRefresh so two reloads
	// never race to publish.
	reloadMu    sync.Mutex
	lastErrMu   sync.Mutex
	lastErr     error
	lastAttempt time.Time
	lastSuccess time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(loader Loader, opts Options, log zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Poll <= 0 {
		opts.Poll = defaultPoll
	}
	if opts.FailureBackoff <= 0 {
		opts.FailureBackoff = defaultBackoff
	}
	s := &Scheduler{
		loader: loader,
		opts:   opts,
		log:    log.With().Str("component", "refresh").Logger(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.status.Store(int32(StatusIdle))
	return s
}

// Start launches the loop. The first reload begins immediately; callers that
// need data before serving should use ForceRefresh instead of waiting.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop asks the loop to exit and waits for it. A reload in progress is
// allowed to finish; the last published snapshot survives.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Snapshot returns the latest published snapshot without blocking on an
// in-progress reload. Nil until the first successful cycle.
func (s *Scheduler) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Status returns the current cycle state.
func (s *Scheduler) Status() Status {
	return Status(s.status.Load())
}

// Heartbeat is the scheduler's liveness signal, advanced on every poll tick
// whether or not a reload ran. A stale heartbeat means the loop itself is
// gone; a stale snapshot with a live heartbeat means cycles are failing.
func (s *Scheduler) Heartbeat() time.Time {
	ns := s.heartbeat.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// LastError returns the error from the most recent failed cycle, or nil if
// the last cycle succeeded.
func (s *Scheduler) LastError() error {
	s.lastErrMu.Lock()
	defer s.lastErrMu.Unlock()
	return s.lastErr
}

// ForceRefresh runs one reload synchronously, bypassing the timer. It holds
// the reload lock, so it mutually excludes the background loop.
func (s *Scheduler) ForceRefresh(ctx context.Context) error {
	return s.reload(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.Poll)
	defer ticker.Stop()

	s.heartbeat.Store(time.Now().UnixNano())
	if err := s.reload(ctx); err != nil {
		s.log.Error().Err(err).Msg("initial load failed")
	}

	for {
		select {
		case <-s.stop:
			s.log.Info().Msg("refresh loop stopped")
			return
		case <-ctx.Done():
			s.log.Info().Msg("refresh loop canceled")
			return
		case now := <-ticker.C:
			s.heartbeat.Store(now.UnixNano())
			if !s.due(now) {
				continue
			}
			if err := s.reload(ctx); err != nil {
				s.log.Error().Err(err).Msg("scheduled reload failed")
			}
		}
	}
}

// due decides whether a reload should run at now: the interval has elapsed
// since the last success, and a failed attempt is not retried until the
// backoff has passed.
func (s *Scheduler) due(now time.Time) bool {
	s.lastErrMu.Lock()
	lastSuccess, lastAttempt, lastErr := s.lastSuccess, s.lastAttempt, s.lastErr
	s.lastErrMu.Unlock()

	if now.Sub(lastSuccess) < s.opts.Interval {
		return false
	}
	if lastErr != nil && now.Sub(lastAttempt) < s.opts.FailureBackoff {
		return false
	}
	return true
}

// reload runs one full cycle: load every source table, recompute every
// derived table, publish. Any failure leaves the previous snapshot in place
// and marks the cycle Failed.
func (s *Scheduler) reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	cycleID := uuid.New()
	started := time.Now()
	s.status.Store(int32(StatusLoading))
	s.log.Info().Stringer("cycle_id", cycleID).Msg("reload started")

	snap, err := s.cycle(ctx)
	if err != nil {
		cerr := &CycleError{CycleID: cycleID, Err: err}
		s.finish(started, cerr)
		s.status.Store(int32(StatusFailed))
		return cerr
	}

	s.snapshot.Store(snap)
	s.finish(started, nil)
	s.status.Store(int32(StatusReady))
	s.log.Info().
		Stringer("cycle_id", snap.CycleID).
		Dur("elapsed", time.Since(started)).
		Msg("snapshot published")
	return nil
}

func (s *Scheduler) cycle(ctx context.Context) (*Snapshot, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	snap, err := Build(ds, time.Now(), s.log)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	return snap, nil
}

func (s *Scheduler) finish(started time.Time, err error) {
	s.lastErrMu.Lock()
	defer s.lastErrMu.Unlock()
	s.lastAttempt = started
	s.lastErr = err
	if err == nil {
		s.lastSuccess = started
	}
}
