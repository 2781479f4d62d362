package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// CatalogListener subscribes to insert/update/replace events on the catalog
// collection and pushes every affected product to the executor. Real-time
// events always bypass the fingerprint cache: their whole purpose is
// immediacy, the cache is reserved for the bulk path.
type CatalogListener struct {
	catalog CatalogRepo
	exec    *Executor
	cache   Cache
	log     zerolog.Logger

	consumer *streamConsumer
}

// NewCatalogListener wires a listener; retryMax/retryBase bound stream
// reconnection.
func NewCatalogListener(catalog CatalogRepo, exec *Executor, cache Cache, retryMax int, retryBase time.Duration, log zerolog.Logger) *CatalogListener {
	l := &CatalogListener{catalog: catalog, exec: exec, cache: cache, log: log}
	l.consumer = &streamConsumer{
		name:      "catalog",
		open:      catalog.Watch,
		handle:    l.handleChange,
		retryMax:  retryMax,
		retryBase: retryBase,
		log:       log,
	}
	return l
}

// Run consumes catalog changes until ctx is cancelled.
func (l *CatalogListener) Run(ctx context.Context) { l.consumer.Run(ctx) }

// Active reports whether the subscription is open.
func (l *CatalogListener) Active() bool { return l.consumer.Active() }

func (l *CatalogListener) handleChange(ctx context.Context, ev ChangeEvent) {
	switch ev.OperationType {
	case "insert", "update", "replace":
	default:
		return
	}

	p, err := l.resolveProduct(ctx, ev)
	if err != nil {
		l.log.Error().Err(err).Str("product_id", ev.DocumentKey.ID.Hex()).Msg("catalog change lookup failed")
		return
	}
	if p == nil || model.NormalizeName(p.Name) == "" {
		// Malformed or incomplete record, nothing to join on.
		return
	}

	l.cache.Invalidate(ctx, p.ID.Hex())
	l.exec.Apply(ctx, *p, true)
}

// resolveProduct prefers the event's full document and falls back to a
// fetch by id when the payload omits it.
func (l *CatalogListener) resolveProduct(ctx context.Context, ev ChangeEvent) (*model.CatalogProduct, error) {
	if len(ev.FullDocument) > 0 {
		var p model.CatalogProduct
		if err := bson.Unmarshal(ev.FullDocument, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	return l.catalog.FindByID(ctx, ev.DocumentKey.ID)
}
