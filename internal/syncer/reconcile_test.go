package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

func reconcilerForTest(enabled bool, catalog *fakeCatalog, exec *Executor) *Reconciler {
	return NewReconciler(enabled, catalog, exec, 2, time.Millisecond, zerolog.Nop())
}

func TestRunFullDisabledFailsFast(t *testing.T) {
	exec := newExecutorForTest(&fakeStocks{}, newFakeCache(true), &fakeSink{})
	r := reconcilerForTest(false, &fakeCatalog{}, exec)

	_, err := r.RunFull(context.Background())
	if !errors.Is(err, ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
}

func TestRunFullSecondPassAllSkipped(t *testing.T) {
	var products []model.CatalogProduct
	var records []model.BranchStock
	names := []string{"iPhone 13", "Galaxy S23", "AirPods Pro", "Pixel 8", "Redmi Note"}
	for i, name := range names {
		p := product(name, float64(1000*(i+1)))
		products = append(products, p)
		records = append(records, model.BranchStock{ID: primitive.NewObjectID(), Branch: "B1", Name: name})
	}
	catalog := &fakeCatalog{products: products}
	stocks := &fakeStocks{records: records}
	exec := newExecutorForTest(stocks, newFakeCache(true), &fakeSink{})
	r := reconcilerForTest(true, catalog, exec)

	first, err := r.RunFull(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Total != 5 || first.Modified != 5 || first.Skipped != 0 {
		t.Fatalf("unexpected first summary: %+v", first)
	}

	second, err := r.RunFull(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Modified != 0 {
		t.Fatalf("idempotent rerun must modify nothing: %+v", second)
	}
	if second.Skipped != second.Total {
		t.Fatalf("idempotent rerun must skip everything: %+v", second)
	}
}

func TestRunFullCatalogChangeResyncs(t *testing.T) {
	p := product("iPhone 13", 15000)
	catalog := &fakeCatalog{products: []model.CatalogProduct{p}}
	stocks := &fakeStocks{records: []model.BranchStock{
		{ID: primitive.NewObjectID(), Branch: "B1", Name: "iPhone 13"},
	}}
	exec := newExecutorForTest(stocks, newFakeCache(true), &fakeSink{})
	r := reconcilerForTest(true, catalog, exec)

	if _, err := r.RunFull(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	catalog.mu.Lock()
	catalog.products[0].Price = 16000
	catalog.mu.Unlock()

	sum, err := r.RunFull(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Modified != 1 {
		t.Fatalf("changed product must resync: %+v", sum)
	}
	if stocks.records[0].Price != 16000 {
		t.Fatalf("stock not updated: %+v", stocks.records[0])
	}
}

func TestRunFullRejectsConcurrentRuns(t *testing.T) {
	exec := newExecutorForTest(&fakeStocks{}, newFakeCache(true), &fakeSink{})
	r := reconcilerForTest(true, &fakeCatalog{}, exec)

	// Hold the guard as a concurrent run would.
	if !r.running.CompareAndSwap(false, true) {
		t.Fatalf("guard unexpectedly held")
	}
	defer r.running.Store(false)

	_, err := r.RunFull(context.Background())
	if !errors.Is(err, ErrReconcileRunning) {
		t.Fatalf("expected ErrReconcileRunning, got %v", err)
	}
}

func TestRunFullHonorsCancellation(t *testing.T) {
	var products []model.CatalogProduct
	for i := 0; i < 20; i++ {
		products = append(products, product("p", 1))
	}
	catalog := &fakeCatalog{products: products}
	exec := newExecutorForTest(&fakeStocks{}, newFakeCache(true), &fakeSink{})
	r := NewReconciler(true, catalog, exec, 2, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RunFull(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.Running() {
		t.Fatalf("guard must be released after cancellation")
	}
}
