package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Summary aggregates one full reconciliation pass.
type Summary struct {
	Total     int   `json:"total"`
	Skipped   int   `json:"skipped"`
	Processed int   `json:"processed"`
	Matched   int64 `json:"matched"`
	Modified  int64 `json:"modified"`
}

// Reconciler iterates the entire catalog in fixed-size batches, consulting
// the fingerprint cache to skip unchanged products. Used for startup
// catch-up and administrator-triggered resync.
type Reconciler struct {
	enabled    bool
	catalog    CatalogRepo
	exec       *Executor
	batchSize  int
	batchDelay time.Duration
	log        zerolog.Logger

	running atomic.Bool
}

// NewReconciler constructs a Reconciler.
func NewReconciler(enabled bool, catalog CatalogRepo, exec *Executor, batchSize int, batchDelay time.Duration, log zerolog.Logger) *Reconciler {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Reconciler{
		enabled:    enabled,
		catalog:    catalog,
		exec:       exec,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		log:        log,
	}
}

// RunFull resynchronizes the whole catalog. Fails fast when sync is disabled
// or another run is already in progress. The inter-batch delay is deliberate
// backpressure against the stock store.
func (r *Reconciler) RunFull(ctx context.Context) (Summary, error) {
	if !r.enabled {
		return Summary{}, ErrSyncDisabled
	}
	if !r.running.CompareAndSwap(false, true) {
		return Summary{}, ErrReconcileRunning
	}
	defer r.running.Store(false)

	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	products, err := r.catalog.FindAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	log.Info().Int("total", len(products)).Msg("bulk reconciliation started")

	sum := Summary{Total: len(products)}
	for i := 0; i < len(products); i += r.batchSize {
		end := i + r.batchSize
		if end > len(products) {
			end = len(products)
		}

		for _, p := range products[i:end] {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			res := r.exec.Apply(ctx, p, false)
			if res.Skipped {
				sum.Skipped++
				continue
			}
			sum.Processed++
			sum.Matched += res.Matched
			sum.Modified += res.Modified
		}

		if end < len(products) && r.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(r.batchDelay):
			}
		}
	}

	log.Info().
		Int("total", sum.Total).
		Int("skipped", sum.Skipped).
		Int("processed", sum.Processed).
		Int64("matched", sum.Matched).
		Int64("modified", sum.Modified).
		Msg("bulk reconciliation completed")
	return sum, nil
}

// Running reports whether a reconciliation pass is in progress.
func (r *Reconciler) Running() bool { return r.running.Load() }
