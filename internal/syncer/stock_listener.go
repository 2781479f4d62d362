package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// StockListener subscribes to insert events on the branch stock collection
// and performs one-shot enrichment of newly created records from the
// catalog. Only inserts matter here: broadcasting on every stock change
// would rewrite rows that are already consistent, while a brand-new record
// is the only one missing catalog data.
type StockListener struct {
	catalog CatalogRepo
	exec    *Executor
	log     zerolog.Logger

	consumer *streamConsumer
}

// NewStockListener wires a listener; retryMax/retryBase bound stream
// reconnection.
func NewStockListener(catalog CatalogRepo, stocks StockRepo, exec *Executor, retryMax int, retryBase time.Duration, log zerolog.Logger) *StockListener {
	l := &StockListener{catalog: catalog, exec: exec, log: log}
	l.consumer = &streamConsumer{
		name:      "stock",
		open:      stocks.Watch,
		handle:    l.handleChange,
		retryMax:  retryMax,
		retryBase: retryBase,
		log:       log,
	}
	return l
}

// Run consumes stock changes until ctx is cancelled.
func (l *StockListener) Run(ctx context.Context) { l.consumer.Run(ctx) }

// Active reports whether the subscription is open.
func (l *StockListener) Active() bool { return l.consumer.Active() }

func (l *StockListener) handleChange(ctx context.Context, ev ChangeEvent) {
	if ev.OperationType != "insert" {
		return
	}
	if len(ev.FullDocument) == 0 {
		return
	}

	var st model.BranchStock
	if err := bson.Unmarshal(ev.FullDocument, &st); err != nil {
		l.log.Error().Err(err).Msg("stock insert decode failed")
		return
	}
	if model.NormalizeName(st.Name) == "" {
		return
	}

	p, err := l.catalog.FindByName(ctx, st.Name)
	if err != nil {
		l.log.Error().Err(err).Str("name", st.Name).Msg("catalog lookup failed")
		return
	}
	if p == nil {
		// No catalog entry yet; the record stays un-enriched until the next
		// reconciliation or a catalog update for that name.
		return
	}

	_ = l.exec.Enrich(ctx, st, *p)
}
