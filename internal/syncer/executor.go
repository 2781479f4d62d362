package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/catalog-stock-sync/internal/fingerprint"
	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
	"github.com/fairyhunter13/catalog-stock-sync/internal/sink"
)

// Result summarizes one executor apply.
type Result struct {
	Matched  int64
	Modified int64
	Skipped  bool
	Err      error
}

// Executor pushes one catalog product's mirrored fields onto every matching
// branch stock record.
type Executor struct {
	stocks StockRepo
	cache  Cache
	sink   sink.EventSink
	ttl    time.Duration
	log    zerolog.Logger
}

// NewExecutor constructs an Executor. sink may not be nil; pass sink.Noop{}
// when no downstream consumer exists.
func NewExecutor(stocks StockRepo, cache Cache, es sink.EventSink, ttl time.Duration, log zerolog.Logger) *Executor {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Executor{stocks: stocks, cache: cache, sink: es, ttl: ttl, log: log}
}

// Apply synchronizes all branch stock records matching p's name. With
// bypassCache false, an unexpired matching fingerprint short-circuits the
// write. Update errors are absorbed into the Result so one bad record never
// aborts a batch or kills a change-stream consumer.
func (e *Executor) Apply(ctx context.Context, p model.CatalogProduct, bypassCache bool) Result {
	if model.NormalizeName(p.Name) == "" {
		return Result{}
	}

	id := p.ID.Hex()
	fp := fingerprint.Compute(p)

	if !bypassCache && e.cache.IsSynced(ctx, id, fp) {
		return Result{Skipped: true}
	}

	patch := model.SyncPatch(p)
	matched, modified, err := e.stocks.UpdateManyByName(ctx, p.Name, patch)
	if err != nil {
		e.log.Error().Err(err).Str("name", p.Name).Msg("branch stock update failed")
		return Result{Err: err}
	}

	if modified > 0 {
		e.cache.MarkSynced(ctx, id, fp, e.ttl)
		e.sink.Publish(model.StockUpdated{
			Kind:      "catalog",
			ProductID: id,
			Fields:    patch,
		})
		e.log.Info().
			Str("name", p.Name).
			Int64("matched", matched).
			Int64("modified", modified).
			Msg("branch stock synced")
	}

	return Result{Matched: matched, Modified: modified}
}

// Enrich patches a single, newly created branch stock record with the
// catalog product's mirrored fields. No broadcast: only the new record lacks
// enrichment.
func (e *Executor) Enrich(ctx context.Context, st model.BranchStock, p model.CatalogProduct) error {
	patch := model.SyncPatch(p)
	if err := e.stocks.UpdateByID(ctx, st.ID, patch); err != nil {
		e.log.Error().Err(err).Str("name", st.Name).Msg("branch stock enrichment failed")
		return err
	}
	e.sink.Publish(model.StockUpdated{
		Kind:    "stock",
		StockID: st.ID.Hex(),
		Fields:  patch,
	})
	e.log.Info().
		Str("name", st.Name).
		Str("product_type", p.ProductType).
		Msg("new branch stock enriched from catalog")
	return nil
}
