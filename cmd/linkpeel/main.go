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

	"github.com/linkpeel/linkpeel/api"
	"github.com/linkpeel/linkpeel/batch"
	"github.com/linkpeel/linkpeel/browser"
	"github.com/linkpeel/linkpeel/cache"
	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/extract"
	"github.com/linkpeel/linkpeel/fetch"
	"github.com/linkpeel/linkpeel/resolver"
	"github.com/linkpeel/linkpeel/session"
)

func main() {
	cfg := config.Load()

	initLogger(cfg.Log)
	slog.Info("linkpeel starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"maxConcurrency", cfg.Batch.MaxConcurrency,
		"maxBatchSize", cfg.Batch.MaxBatchSize,
	)

	b, err := browser.New(cfg.Browser)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	ex, err := extract.New(cfg.Extract)
	if err != nil {
		slog.Error("failed to initialise extractor", "error", err)
		os.Exit(1)
	}

	var fetcher *fetch.Client
	if cfg.Fetch.Enabled {
		fetcher = fetch.NewClient(cfg.Fetch, cfg.Browser.UserAgent, cfg.Browser.Proxy)
		slog.Info("HTTP fast path enabled", "timeout", cfg.Fetch.Timeout)
	}

	orch := session.NewOrchestrator(b, resolver.New(cfg.Resolver), ex, fetcher, cfg.Browser)
	sched := batch.NewScheduler(cfg.Batch, orch)
	cc := cache.New(cfg.Cache.MaxEntries)

	startTime := time.Now()
	router := api.NewRouter(orch, sched, cc, cfg, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight sessions a few seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// b.Close() runs via defer and kills Chrome.
	slog.Info("linkpeel stopped")
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

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
