package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the lifecycle state of the sync service.
type State int

// Lifecycle states.
const (
	StateDisabled State = iota
	StateStarting
	StateActive
	StateStopping
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return "disabled"
	}
}

// Status is the read-only introspection surface of the service.
type Status struct {
	Enabled        bool   `json:"enabled"`
	State          string `json:"state"`
	ActiveStreams  int    `json:"active_streams"`
	CacheConnected bool   `json:"cache_connected"`
	Environment    string `json:"environment"`
}

// Service owns the two change listeners: start/stop, enabled gating, status,
// graceful shutdown. One instance per process; independent instances are
// possible for tests.
type Service struct {
	enabled     bool
	environment string
	catalog     CatalogRepo
	stocks      StockRepo
	exec        *Executor
	cache       Cache
	retryMax    int
	retryBase   time.Duration
	log         zerolog.Logger

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	listeners []interface{ Active() bool }
}

// NewService constructs a Service in the Disabled state.
func NewService(enabled bool, environment string, catalog CatalogRepo, stocks StockRepo, exec *Executor, cache Cache, retryMax int, retryBase time.Duration, log zerolog.Logger) *Service {
	if retryBase <= 0 {
		retryBase = 500 * time.Millisecond
	}
	return &Service{
		enabled:     enabled,
		environment: environment,
		catalog:     catalog,
		stocks:      stocks,
		exec:        exec,
		cache:       cache,
		retryMax:    retryMax,
		retryBase:   retryBase,
		log:         log,
	}
}

// Enabled reports the configuration gate.
func (s *Service) Enabled() bool { return s.enabled }

// Start opens both change subscriptions. No-op when sync is disabled by
// configuration. Restart is idempotent: any previously tracked subscriptions
// are closed first so two listeners never watch the same collection
// concurrently.
func (s *Service) Start(ctx context.Context) {
	if !s.enabled {
		s.log.Info().Msg("product sync disabled (ENABLE_PRODUCT_SYNC=false)")
		return
	}

	s.mu.Lock()
	if s.state == StateActive || s.state == StateStarting {
		s.mu.Unlock()
		s.Stop()
		s.mu.Lock()
	}
	s.state = StateStarting

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	catalogListener := NewCatalogListener(s.catalog, s.exec, s.cache, s.retryMax, s.retryBase, s.log.With().Str("component", "catalog-listener").Logger())
	stockListener := NewStockListener(s.catalog, s.stocks, s.exec, s.retryMax, s.retryBase, s.log.With().Str("component", "stock-listener").Logger())
	s.listeners = []interface{ Active() bool }{catalogListener, stockListener}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		catalogListener.Run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		stockListener.Run(runCtx)
	}()

	s.state = StateActive
	s.mu.Unlock()

	s.log.Info().Msg("product sync started")
}

// Stop closes every tracked subscription best-effort and waits for the
// listener loops to exit. In-flight event callbacks are not drained beyond
// the subscription close itself.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.state != StateActive && s.state != StateStarting {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.listeners = nil
	s.state = StateDisabled
	s.mu.Unlock()

	s.log.Info().Msg("product sync stopped")
}

// Status returns the current lifecycle and collaborator health. Read-only,
// no side effects beyond a cache ping.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.Lock()
	state := s.state
	listeners := s.listeners
	s.mu.Unlock()

	active := 0
	for _, l := range listeners {
		if l.Active() {
			active++
		}
	}

	return Status{
		Enabled:        s.enabled,
		State:          state.String(),
		ActiveStreams:  active,
		CacheConnected: s.cache.Connected(ctx),
		Environment:    s.environment,
	}
}
