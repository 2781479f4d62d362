// Package syncer keeps denormalized branch stock records eventually consistent
// with the authoritative product catalog: live change capture on both
// collections, a fingerprint cache to suppress redundant writes, and a
// batched bulk reconciliation fallback.
package syncer

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// Sentinel errors surfaced to administrative callers.
var (
	ErrSyncDisabled     = errors.New("product sync is disabled (ENABLE_PRODUCT_SYNC=false)")
	ErrReconcileRunning = errors.New("bulk reconciliation already in progress")
)

// ChangeStream is the subset of a live change subscription the listeners
// consume. *mongo.ChangeStream satisfies it.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

// ChangeEvent is the decoded form of one change-capture delivery.
type ChangeEvent struct {
	OperationType string      `bson:"operationType"`
	DocumentKey   documentKey `bson:"documentKey"`
	FullDocument  bson.Raw    `bson:"fullDocument"`
}

type documentKey struct {
	ID primitive.ObjectID `bson:"_id"`
}

// CatalogRepo reads the authoritative product catalog.
type CatalogRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.CatalogProduct, error)
	// FindByName matches case-insensitively after trimming; nil when absent.
	FindByName(ctx context.Context, name string) (*model.CatalogProduct, error)
	FindAll(ctx context.Context) ([]model.CatalogProduct, error)
	Watch(ctx context.Context) (ChangeStream, error)
}

// StockRepo mutates the denormalized branch stock collection.
type StockRepo interface {
	// UpdateManyByName patches every record whose name matches, exact after
	// trim and casefold, across all branches.
	UpdateManyByName(ctx context.Context, name string, patch map[string]any) (matched, modified int64, err error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch map[string]any) error
	Watch(ctx context.Context) (ChangeStream, error)
}

// Cache is the fingerprint cache consulted by the executor. Implementations
// must treat backend failures as "not synced".
type Cache interface {
	IsSynced(ctx context.Context, productID, fp string) bool
	MarkSynced(ctx context.Context, productID, fp string, ttl time.Duration)
	Invalidate(ctx context.Context, productID string)
	Connected(ctx context.Context) bool
}
