// Command server runs the exchange tick engine's multi-tenant backtest API.
//
// Usage:
//
//	server <bind-address> <port>
//
// Operational settings (dataset directory, logging, rate limits) are not
// flags — they come from an optional YAML file (UISTD_CONFIG env var) and
// UISTD_*-prefixed environment variable overrides, keeping the CLI surface
// fixed at exactly the two positional arguments above.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"uistd/internal/api"
	"uistd/internal/config"
	"uistd/internal/dataset"
	"uistd/internal/metrics"
	"uistd/internal/ratelimit"
	"uistd/internal/session"
	"uistd/pkg/types"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: server <bind-address> <port>")
		os.Exit(1)
	}
	bindAddr := os.Args[1]
	port := os.Args[2]

	cfgPath := os.Getenv("UISTD_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(newLogHandler(cfg.Logging))

	datasets, err := loadDatasets(*cfg, logger)
	if err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}

	registry := session.NewRegistry(datasets)
	limiter := ratelimit.NewLimiter(
		cfg.RateLimit.TickCapacity, cfg.RateLimit.TickRate,
		cfg.RateLimit.MutateCapacity, cfg.RateLimit.MutateRate,
		cfg.RateLimit.ReadCapacity, cfg.RateLimit.ReadRate,
		cfg.RateLimit.WaitTimeout,
	)
	metricsReg := metrics.New()

	addr := fmt.Sprintf("%s:%s", bindAddr, port)
	srv := api.NewServer(addr, registry, limiter, metricsReg, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("exchange tick engine started", "addr", addr, "datasets", len(datasets))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	if err := srv.Stop(); err != nil {
		logger.Error("failed to stop server", "error", err)
	}
}

func newLogHandler(cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadDatasets always registers a synthetic "random" dataset, and loads one
// additional dataset per CSV file found in cfg.Datasets.Dir (if it exists),
// memoizing each parse through the on-disk cache.
func loadDatasets(cfg config.Config, logger *slog.Logger) (map[string]*dataset.Dataset, error) {
	out := map[string]*dataset.Dataset{
		"random": dataset.Random("random", cfg.Datasets.RandomLength, types.Daily, 1),
	}

	entries, err := os.ReadDir(cfg.Datasets.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read datasets dir: %w", err)
	}

	var cache *dataset.Cache
	if cfg.Datasets.CacheDir != "" {
		cache, err = dataset.OpenCache(cfg.Datasets.CacheDir)
		if err != nil {
			return nil, err
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		path := filepath.Join(cfg.Datasets.Dir, entry.Name())
		name := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]

		if cache != nil {
			if cached, err := cache.Load(name, path); err == nil && cached != nil {
				out[name] = cached
				logger.Info("loaded dataset from cache", "name", name)
				continue
			}
		}

		ds, err := dataset.LoadCSV(name, path, types.Daily)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", name, err)
		}
		out[name] = ds
		logger.Info("loaded dataset from csv", "name", name, "path", path)

		if cache != nil {
			if err := cache.Save(path, ds, ds.Store.AllQuotes()); err != nil {
				logger.Warn("failed to cache dataset", "name", name, "error", err)
			}
		}
	}

	return out, nil
}
