package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fortuna/hardwood/internal/api/rest"
	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/cache"
	"github.com/fortuna/hardwood/internal/config"
	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/platform/logging"
	"github.com/fortuna/hardwood/internal/proxy"
	"github.com/fortuna/hardwood/internal/render"
	"github.com/fortuna/hardwood/internal/scheduler"
)

const (
	serviceName    = "hardwood"
	serviceVersion = "1.0.0"

	redisRetries    = 5
	redisRetryDelay = 2 * time.Second
	upstreamTimeout = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

// latencyBuckets span a fast cache-backed reply up to the upstream timeout.
var latencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		logging.NewJSON(logging.LevelError).Error("loading configuration failed", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(logging.ParseLevel(cfg.LogLevel)).With("service", serviceName)
	logging.SetDefault(logger)
	defer logger.Sync()

	logger.Info("starting", "version", serviceVersion, "addr", cfg.HTTPAddr)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("hardwood stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("hardwood stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	table, err := cfg.LeagueTable()
	if err != nil {
		return errors.Wrap(err, "building league table")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	metricsManager := metrics.NewManager(metrics.WithHistogramBuckets(latencyBuckets))
	metricsManager.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Proxy response cache is optional; the proxies run uncached without it.
	var responseCache proxy.ResponseCache
	if cfg.RedisURL != "" {
		redisCache := connectRedis(ctx, cfg.RedisURL, logger)
		if redisCache != nil {
			defer redisCache.Close()
			responseCache = redisCache
		}
	}

	upstreamClient := &http.Client{Timeout: upstreamTimeout}
	allowed := append(append([]string{}, proxy.DefaultESPNPaths...), table.EndpointPaths("scoreboard", "summary", "standings")...)
	espnProxy := proxy.NewESPN(cfg.ESPNUpstream, allowed, proxy.Options{
		HTTPClient: upstreamClient,
		Cache:      responseCache,
		Recorder:   metricsManager,
		Logger:     logger.With("component", "proxy.espn"),
		MaxAge:     cfg.ProxyMaxAge,
	})
	sportsDBProxy := proxy.NewSportsDB(cfg.SportsDBUpstream, proxy.Options{
		HTTPClient: upstreamClient,
		Cache:      responseCache,
		Recorder:   metricsManager,
		Logger:     logger.With("component", "proxy.sportsdb"),
		MaxAge:     cfg.SportsDBMaxAge,
	})

	service := board.NewService(table, espn.New(cfg.ProxyURL, cfg.HTTPTimeout),
		board.WithLocation(loc),
		board.WithLogger(logger.With("component", "board")),
		board.WithObserver(metricsManager),
		board.WithSourceLabel(cfg.SourceLabel),
	)

	store := board.NewStore(table.Keys())
	pagesFS := os.DirFS(cfg.PagesDir)
	pages := render.NewPages(pagesFS, store, table)

	refresher := scheduler.NewRefresher(service, store, refreshTargets(pages, table, logger), scheduler.Config{
		Interval: cfg.RefreshInterval,
		Logger:   logger.With("component", "scheduler"),
	})

	restServer := rest.NewServer(cfg.HTTPAddr, rest.Dependencies{
		Leagues:   table,
		Store:     store,
		Pages:     pages,
		Static:    pagesFS,
		Refresher: refresher,
		ESPN:      espnProxy,
		SportsDB:  sportsDBProxy,
		Metrics:   metricsManager,
		Logger:    logger.With("component", "rest"),
	})

	// The board fetches through this process's own proxy, so the listener is
	// bound before the first pass starts.
	ln, err := restServer.Listen()
	if err != nil {
		return err
	}
	logger.Info("REST API server listening", "addr", ln.Addr().String())

	serverErr := make(chan error, 1)
	go func() {
		if err := restServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	go refresher.Start(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err, ok := <-serverErr:
		if ok {
			runErr = errors.Wrap(err, "REST server")
		}
	}

	refresher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("REST API server shutdown error", "error", err)
	}
	return runErr
}

func connectRedis(ctx context.Context, redisURL string, logger *logging.Logger) *cache.RedisCache {
	for i := 0; i < redisRetries; i++ {
		redisCache, err := cache.NewRedisCache(ctx, redisURL)
		if err == nil {
			logger.Info("connected to Redis")
			return redisCache
		}
		logger.Warn("Redis connection attempt failed", "attempt", i+1, "max", redisRetries, "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(redisRetryDelay):
		}
	}
	logger.Warn("running proxies without a response cache")
	return nil
}

// refreshTargets lists the leagues the pages show. When the pages cannot be
// scanned every league is loaded with all regions.
func refreshTargets(pages *render.Pages, table *league.Table, logger *logging.Logger) []scheduler.Target {
	presences, err := pages.Scan()
	if err != nil {
		logger.Warn("scanning pages failed, refreshing every league", "error", err)
		targets := make([]scheduler.Target, 0, len(table.Keys()))
		for _, key := range table.Keys() {
			targets = append(targets, scheduler.Target{League: key, Options: board.AllRegions})
		}
		return targets
	}

	targets := make([]scheduler.Target, 0, len(presences))
	for _, p := range presences {
		targets = append(targets, scheduler.Target{League: p.League, Options: p.Options})
	}
	return targets
}
