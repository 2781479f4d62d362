// Package main boots the catalog-to-stock synchronization service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/catalog-stock-sync/internal/cache"
	"github.com/fairyhunter13/catalog-stock-sync/internal/config"
	httpapi "github.com/fairyhunter13/catalog-stock-sync/internal/http"
	"github.com/fairyhunter13/catalog-stock-sync/internal/model"
	"github.com/fairyhunter13/catalog-stock-sync/internal/obs"
	"github.com/fairyhunter13/catalog-stock-sync/internal/repo"
	"github.com/fairyhunter13/catalog-stock-sync/internal/sink"
	"github.com/fairyhunter13/catalog-stock-sync/internal/syncer"
)

func main() {
	cfg := config.Load()
	log := obs.NewLogger(cfg.LogLevel)
	log.Info().Str("environment", cfg.Environment).Msg("service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := repo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unavailable")
	}
	db := mongoClient.Database(cfg.MongoDatabase)
	catalog := repo.NewCatalog(db)
	stocks := repo.NewStock(db)

	// Redis is optional: with no address configured the fingerprint cache
	// degrades to "always resync".
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, sync cache degraded")
		} else {
			log.Info().Msg("sync cache connected")
		}
	} else {
		log.Info().Msg("no REDIS_ADDR configured, sync cache disabled")
	}
	fpCache := cache.New(redisClient, cfg.CacheKeyVersion, log.With().Str("component", "sync-cache").Logger())

	notifier := sink.NewNotifier(cfg.NotifierBuffer, func(ev model.StockUpdated) {
		log.Debug().Str("kind", ev.Kind).Str("product_id", ev.ProductID).Str("stock_id", ev.StockID).Msg("branch stock updated")
	}, log.With().Str("component", "notifier").Logger())
	notifier.Start(ctx, cfg.NotifierBuffer*4)

	exec := syncer.NewExecutor(stocks, fpCache, notifier, cfg.CacheTTL, log.With().Str("component", "executor").Logger())
	service := syncer.NewService(cfg.SyncEnabled, cfg.Environment, catalog, stocks, exec, fpCache,
		cfg.StreamRetryMax, cfg.StreamRetryBase, log.With().Str("component", "sync-service").Logger())
	reconciler := syncer.NewReconciler(cfg.SyncEnabled, catalog, exec, cfg.BatchSize, cfg.BatchDelay,
		log.With().Str("component", "reconciler").Logger())

	service.Start(ctx)

	if cfg.SyncEnabled && cfg.SyncOnStart {
		go func() {
			if _, err := reconciler.RunFull(ctx); err != nil {
				log.Error().Err(err).Msg("startup reconciliation failed")
			}
		}()
	}

	app := httpapi.NewApp(cfg, service, reconciler, notifier, log.With().Str("component", "http").Logger())
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info().Str("signal", s.String()).Msg("shutdown signal")

	// Close change streams before the process exits so no cursors dangle.
	service.Stop()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	ctxDisc, cancelDisc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDisc()
	if err := mongoClient.Disconnect(ctxDisc); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close error")
		}
	}
	log.Info().Msg("service stopped")
}
