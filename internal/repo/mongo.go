// Package repo implements the catalog and stock repositories on MongoDB,
// including the change-capture subscriptions consumed by the sync listeners.
package repo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
	"github.com/fairyhunter13/catalog-stock-sync/internal/syncer"
)

// Collection names owned by the catalog and stock subsystems.
const (
	CatalogCollection = "productimages"
	StockCollection   = "branchstocks"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// nameFilter matches a product name exactly, after trimming and casefolding.
// Not a substring match: the pattern is anchored on both ends.
func nameFilter(name string) bson.M {
	return bson.M{"name": primitive.Regex{
		Pattern: `^\s*` + regexp.QuoteMeta(strings.TrimSpace(name)) + `\s*$`,
		Options: "i",
	}}
}

// Catalog reads the authoritative product catalog collection.
type Catalog struct {
	col *mongo.Collection
}

// NewCatalog binds the catalog repository to its collection.
func NewCatalog(db *mongo.Database) *Catalog {
	return &Catalog{col: db.Collection(CatalogCollection)}
}

// FindByID returns the product by id, or nil when it no longer exists.
func (r *Catalog) FindByID(ctx context.Context, id primitive.ObjectID) (*model.CatalogProduct, error) {
	var p model.CatalogProduct
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByName returns the product whose name matches after normalization, or
// nil when none does.
func (r *Catalog) FindByName(ctx context.Context, name string) (*model.CatalogProduct, error) {
	var p model.CatalogProduct
	err := r.col.FindOne(ctx, nameFilter(name)).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAll loads the full catalog, streamed from the server in batches.
func (r *Catalog) FindAll(ctx context.Context) ([]model.CatalogProduct, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetBatchSize(100))
	if err != nil {
		return nil, fmt.Errorf("catalog find: %w", err)
	}
	var out []model.CatalogProduct
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	return out, nil
}

// Watch opens a change stream over the catalog collection with full-document
// lookup, so update events carry the post-change record when available.
func (r *Catalog) Watch(ctx context.Context) (syncer.ChangeStream, error) {
	return r.col.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
}

// Stock mutates the denormalized branch stock collection.
type Stock struct {
	col *mongo.Collection
}

// NewStock binds the stock repository to its collection.
func NewStock(db *mongo.Database) *Stock {
	return &Stock{col: db.Collection(StockCollection)}
}

// UpdateManyByName patches every record whose name matches, across all
// branches.
func (r *Stock) UpdateManyByName(ctx context.Context, name string, patch map[string]any) (int64, int64, error) {
	res, err := r.col.UpdateMany(ctx, nameFilter(name), bson.M{"$set": bson.M(patch)})
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

// UpdateByID patches a single record.
func (r *Stock) UpdateByID(ctx context.Context, id primitive.ObjectID, patch map[string]any) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(patch)})
	return err
}

// Watch opens a change stream over the stock collection.
func (r *Stock) Watch(ctx context.Context) (syncer.ChangeStream, error) {
	return r.col.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
}
