package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/sanjaypinna/price-fetcher/api"
	"github.com/sanjaypinna/price-fetcher/compare"
	"github.com/sanjaypinna/price-fetcher/config"
	"github.com/sanjaypinna/price-fetcher/discovery"
	"github.com/sanjaypinna/price-fetcher/jsonld"
	"github.com/sanjaypinna/price-fetcher/scraper"
	"github.com/sanjaypinna/price-fetcher/search"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine; real deployments set env directly.
		fmt.Fprintf(os.Stderr, "no .env file loaded: %v\n", err)
	}
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("price-fetcher starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"discoveryKeys", len(cfg.Discovery.APIKeys),
	)

	// ── 3. Build the pipeline stages ────────────────────────────────
	discoverer := discovery.NewDiscoverer(
		discovery.NewClient(&http.Client{Timeout: cfg.Discovery.Timeout}, cfg.Discovery.BaseURL, cfg.Discovery.Model),
		cfg.Discovery.APIKeys,
	)
	searcher := search.NewSearcher(&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search.BaseURL, cfg.Search.APIKey)
	fetcher := scraper.NewFetcher(cfg.Fetch.MaxBodyBytes, cfg.Fetch.Proxy)

	cmp := compare.NewComparer(discoverer, searcher, fetcher, jsonld.Extract, compare.Options{
		FetchTimeout:         cfg.Fetch.Timeout,
		MaxConcurrentFetches: cfg.Compare.MaxConcurrentFetches,
	})

	// ── 4. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(cmp, cfg, startTime)

	// CORS wraps the whole engine so the collaborator UI can call us
	// from the browser.
	corsOpts := cors.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	handler := cors.New(corsOpts).Handler(router)

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("price-fetcher stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
