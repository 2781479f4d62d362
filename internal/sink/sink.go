// Package sink delivers fire-and-forget sync notifications to downstream
// consumers. Publishing is decoupled from the sync path: a slow or absent
// consumer never delays a write.
package sink

import (
	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// EventSink receives notifications about completed sync writes.
type EventSink interface {
	Publish(ev model.StockUpdated)
}

// Noop discards every event. Used when no downstream consumer is wired so
// call sites never branch on a nil sink.
type Noop struct{}

// Publish implements EventSink.
func (Noop) Publish(model.StockUpdated) {}
