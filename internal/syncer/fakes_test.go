package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products []model.CatalogProduct
	findErr  error
	watchFn  func(ctx context.Context) (ChangeStream, error)
}

func (f *fakeCatalog) FindByID(ctx context.Context, id primitive.ObjectID) (*model.CatalogProduct, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) FindByName(ctx context.Context, name string) (*model.CatalogProduct, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	want := model.NormalizeName(name)
	for i := range f.products {
		if model.NormalizeName(f.products[i].Name) == want {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) FindAll(ctx context.Context) ([]model.CatalogProduct, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.CatalogProduct, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeCatalog) Watch(ctx context.Context) (ChangeStream, error) {
	if f.watchFn != nil {
		return f.watchFn(ctx)
	}
	return newBlockingStream(), nil
}

type fakeStocks struct {
	mu        sync.Mutex
	records   []model.BranchStock
	updateErr error
	byIDCalls int
	watchFn   func(ctx context.Context) (ChangeStream, error)
}

func (f *fakeStocks) UpdateManyByName(ctx context.Context, name string, patch map[string]any) (int64, int64, error) {
	if f.updateErr != nil {
		return 0, 0, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	want := model.NormalizeName(name)
	var matched, modified int64
	for i := range f.records {
		if model.NormalizeName(f.records[i].Name) != want {
			continue
		}
		matched++
		if applyPatch(&f.records[i], patch) {
			modified++
		}
	}
	return matched, modified, nil
}

func (f *fakeStocks) UpdateByID(ctx context.Context, id primitive.ObjectID, patch map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDCalls++
	for i := range f.records {
		if f.records[i].ID == id {
			applyPatch(&f.records[i], patch)
			return nil
		}
	}
	return errors.New("stock record not found")
}

func (f *fakeStocks) Watch(ctx context.Context) (ChangeStream, error) {
	if f.watchFn != nil {
		return f.watchFn(ctx)
	}
	return newBlockingStream(), nil
}

func (f *fakeStocks) get(id primitive.ObjectID) (model.BranchStock, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			return f.records[i], true
		}
	}
	return model.BranchStock{}, false
}

// applyPatch mirrors the patched fields onto a record, reporting whether
// anything changed. Only the fields the executor writes are handled.
func applyPatch(st *model.BranchStock, patch map[string]any) bool {
	changed := false
	if v, ok := patch["price"].(float64); ok && st.Price != v {
		st.Price = v
		changed = true
	}
	if v, ok := patch["productType"].(string); ok && st.ProductType != v {
		st.ProductType = v
		changed = true
	}
	if v, ok := patch["boxsetType"].(string); ok && st.BoxsetType != v {
		st.BoxsetType = v
		changed = true
	}
	if v, ok := patch["category_name"].(string); ok && st.CategoryName != v {
		st.CategoryName = v
		changed = true
	}
	if v, ok := patch["docFee"].(float64); ok && st.DocFee != v {
		st.DocFee = v
		changed = true
	}
	return changed
}

// fakeCache stores fingerprints in memory; available=false simulates an
// unreachable backend.
type fakeCache struct {
	mu        sync.Mutex
	entries   map[string]string
	available bool
	marks     int
}

func newFakeCache(available bool) *fakeCache {
	return &fakeCache{entries: map[string]string{}, available: available}
}

func (c *fakeCache) IsSynced(ctx context.Context, productID, fp string) bool {
	if !c.available {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[productID] == fp
}

func (c *fakeCache) MarkSynced(ctx context.Context, productID, fp string, ttl time.Duration) {
	if !c.available {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = fp
	c.marks++
}

func (c *fakeCache) Invalidate(ctx context.Context, productID string) {
	if !c.available {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
}

func (c *fakeCache) Connected(ctx context.Context) bool { return c.available }

type fakeSink struct {
	mu     sync.Mutex
	events []model.StockUpdated
}

func (s *fakeSink) Publish(ev model.StockUpdated) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// fakeStream delivers a fixed set of events, then blocks until the context
// is cancelled (like a live subscription with nothing new).
type fakeStream struct {
	events []ChangeEvent
	idx    int
	err    error
	closed chan struct{}
}

func newBlockingStream(events ...ChangeEvent) *fakeStream {
	return &fakeStream{events: events, closed: make(chan struct{})}
}

func (s *fakeStream) Next(ctx context.Context) bool {
	if s.idx < len(s.events) {
		return true
	}
	if s.err != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.closed:
		return false
	}
}

func (s *fakeStream) Decode(val interface{}) error {
	ev, ok := val.(*ChangeEvent)
	if !ok {
		return errors.New("unexpected decode target")
	}
	*ev = s.events[s.idx]
	s.idx++
	return nil
}

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) Close(ctx context.Context) error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func catalogEvent(t interface{ Fatalf(string, ...any) }, op string, p model.CatalogProduct) ChangeEvent {
	raw, err := bson.Marshal(p)
	if err != nil {
		t.Fatalf("marshal product: %v", err)
	}
	return ChangeEvent{
		OperationType: op,
		DocumentKey:   documentKey{ID: p.ID},
		FullDocument:  raw,
	}
}

func stockEvent(t interface{ Fatalf(string, ...any) }, op string, st model.BranchStock) ChangeEvent {
	raw, err := bson.Marshal(st)
	if err != nil {
		t.Fatalf("marshal stock: %v", err)
	}
	return ChangeEvent{
		OperationType: op,
		DocumentKey:   documentKey{ID: st.ID},
		FullDocument:  raw,
	}
}
