package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/stocklens/internal/api"
	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/data"
	"github.com/mohamedkhairy/stocklens/internal/engine"
	"github.com/mohamedkhairy/stocklens/internal/refresh"
	"github.com/mohamedkhairy/stocklens/internal/storage"
	"github.com/mohamedkhairy/stocklens/internal/stream"
	"github.com/mohamedkhairy/stocklens/internal/universe"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting stocklens server",
		logger.Int("port", cfg.Server.Port),
		logger.Int("health_port", cfg.Server.HealthCheckPort),
		logger.String("provider", cfg.Provider.Type),
	)

	// Bar archive (optional)
	var store storage.BarStore
	if cfg.Database.Enabled {
		pg, err := storage.NewPostgresBarStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize bar store", logger.ErrorField(err))
		}
		defer pg.Close()
		store = pg
	}

	// History provider
	var provider data.HistoryProvider
	if cfg.Provider.Type == "postgres" {
		provider = data.NewStoreProvider(store)
	} else {
		provider, err = data.NewFactory().Create(cfg.Provider.Type, cfg.Provider)
		if err != nil {
			logger.Fatal("Failed to create provider", logger.ErrorField(err))
		}
	}

	// Bar cache (optional)
	if cfg.Redis.Enabled {
		cache, err := data.NewRedisBarCache(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize bar cache", logger.ErrorField(err))
		}
		defer cache.Close()
		provider = data.NewCachedProvider(provider, cache)
	}

	service := engine.NewAnalysisService(provider, engine.New(), store)

	// Ticker universe
	tickers, err := universe.Load(cfg.Universe.Path)
	if err != nil {
		logger.Warn("Failed to load ticker universe",
			logger.String("path", cfg.Universe.Path),
			logger.ErrorField(err),
		)
	} else {
		logger.Info("Loaded ticker universe", logger.Int("count", len(tickers)))
	}

	auth := api.NewAuthManager(cfg.Server.JWTSecret)
	hub := stream.NewHub(auth)
	defer hub.Stop()

	router := api.NewRouter(api.RouterConfig{
		Analysis:     api.NewAnalysisHandler(service, cfg.Engine.Indicators),
		Tickers:      api.NewTickerHandler(tickers),
		Auth:         auth,
		RateLimitRPS: cfg.Server.RateLimitRPS,
		Stream:       hub,
	})

	// Refresh scheduler
	if cfg.Refresh.Enabled {
		refresher := refresh.New(service, hub, cfg.Refresh, cfg.Engine.Indicators)
		if err := refresher.Start(cfg.Refresh.Cron); err != nil {
			logger.Fatal("Failed to start refresh scheduler", logger.ErrorField(err))
		}
		defer refresher.Stop()
	}

	// Health and metrics server
	healthMux := http.NewServeMux()
	healthMux.Handle("/metrics", promhttp.Handler())
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HealthCheckPort),
		Handler: healthMux,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server failed", logger.ErrorField(err))
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", logger.ErrorField(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", logger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
	}
	if err := healthServer.Shutdown(ctx); err != nil {
		logger.Error("Health server shutdown failed", logger.ErrorField(err))
	}
}
