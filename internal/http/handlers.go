package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/catalog-stock-sync/internal/config"
	httpopenapi "github.com/fairyhunter13/catalog-stock-sync/internal/http/openapi"
	"github.com/fairyhunter13/catalog-stock-sync/internal/sink"
	"github.com/fairyhunter13/catalog-stock-sync/internal/syncer"
)

// App holds the handler dependencies for the admin surface.
type App struct {
	Cfg        config.Config
	Service    *syncer.Service
	Reconciler *syncer.Reconciler
	Notifier   *sink.Notifier
	Log        zerolog.Logger
	started    time.Time
}

// NewApp constructs the HTTP application.
func NewApp(cfg config.Config, svc *syncer.Service, rec *syncer.Reconciler, n *sink.Notifier, log zerolog.Logger) *App {
	return &App{Cfg: cfg, Service: svc, Reconciler: rec, Notifier: n, Log: log, started: time.Now()}
}

func (a *App) syncStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	st := a.Service.Status(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

func (a *App) adminSyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	sum, err := a.Reconciler.RunFull(r.Context())
	switch {
	case errors.Is(err, syncer.ErrSyncDisabled):
		WriteJSONError(w, http.StatusPreconditionFailed, "sync_disabled", err.Error())
		return
	case errors.Is(err, syncer.ErrReconcileRunning):
		WriteJSONError(w, http.StatusConflict, "reconciliation_running", err.Error())
		return
	case err != nil:
		a.Log.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("manual reconciliation failed")
		WriteJSONError(w, http.StatusInternalServerError, "reconciliation_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sum)
	a.Log.Info().
		Str("request_id", RequestIDFromContext(r.Context())).
		Int("total", sum.Total).
		Int("skipped", sum.Skipped).
		Int64("modified", sum.Modified).
		Msg("manual reconciliation completed")
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	published, dispatched, backlog := a.Notifier.Metrics()
	m := map[string]any{
		"events_published":  published,
		"events_dispatched": dispatched,
		"backlog_size":      backlog,
		"uptime_sec":        time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
