package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
)

// Handler consumes dispatched events, e.g. a websocket hub or message bus
// bridge.
type Handler func(ev model.StockUpdated)

// Notifier is a buffered EventSink with a background broker. Publish appends
// to an unbounded backlog and returns immediately; the broker drains the
// backlog into the output buffer and invokes the handler.
type Notifier struct {
	mu      sync.Mutex
	backlog []model.StockUpdated
	notify  chan struct{}
	out     chan model.StockUpdated

	published  atomic.Uint64
	dispatched atomic.Uint64

	handler Handler
	log     zerolog.Logger
}

// NewNotifier creates a Notifier with a buffered output channel.
func NewNotifier(outBuffer int, handler Handler, log zerolog.Logger) *Notifier {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	if handler == nil {
		handler = func(model.StockUpdated) {}
	}
	return &Notifier{
		notify:  make(chan struct{}, 1),
		out:     make(chan model.StockUpdated, outBuffer),
		handler: handler,
		log:     log,
	}
}

// Start runs the broker and dispatch loops until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context, highWatermark int) {
	go n.broker(ctx, highWatermark)
	go n.dispatch(ctx)
}

// broker moves backlog items to the output channel.
func (n *Notifier) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		n.flushOnce()
		if highWatermark > 0 {
			if sz := n.BacklogSize(); sz > highWatermark {
				n.log.Warn().Int("backlog_size", sz).Int("high_watermark", highWatermark).Msg("notifier backlog exceeds high watermark")
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-n.notify:
		case <-ticker.C:
		}
	}
}

// flushOnce drains backlog into the output buffer.
func (n *Notifier) flushOnce() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for len(n.backlog) > 0 && len(n.out) < cap(n.out) {
		item := n.backlog[0]
		n.backlog = n.backlog[1:]
		n.out <- item
	}
}

// dispatch hands buffered events to the handler one at a time.
func (n *Notifier) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.out:
			n.handler(ev)
			n.dispatched.Add(1)
		}
	}
}

// Publish implements EventSink. It never blocks and never fails.
func (n *Notifier) Publish(ev model.StockUpdated) {
	n.published.Add(1)
	n.mu.Lock()
	n.backlog = append(n.backlog, ev)
	n.mu.Unlock()
	select {
	case n.notify <- struct{}{}:
	default:
	}
}

// BacklogSize returns the number of published-but-not-yet-buffered events.
func (n *Notifier) BacklogSize() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.backlog)
}

// Metrics returns counters and sizes for observability.
func (n *Notifier) Metrics() (published, dispatched uint64, backlog int) {
	return n.published.Load(), n.dispatched.Load(), n.BacklogSize()
}
