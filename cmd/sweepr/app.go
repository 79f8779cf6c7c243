package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vmunix/sweepr/internal/catalog"
	"github.com/vmunix/sweepr/internal/config"
	"github.com/vmunix/sweepr/internal/getter"
	"github.com/vmunix/sweepr/internal/migrations"
	"github.com/vmunix/sweepr/internal/plex"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *sql.DB
	cache     *plex.Cache
	client    *plex.Client
	catalog   *catalog.Catalog
	appID     catalog.ApplicationID
	evaluator *getter.Evaluator
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig reads the --config file, or the discovered one.
func loadConfig() (*config.Config, error) {
	loc, err := resolveConfig()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(loc.Path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func resolveConfig() (config.Location, error) {
	loc, err := config.Resolve(configPath)
	if errors.Is(err, config.ErrNotFound) {
		return loc, fmt.Errorf("%w (run 'sweepr config init' to create one)", err)
	}
	return loc, err
}

// openCacheDB opens the SQLite response cache and applies migrations.
func openCacheDB(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func plexConfig(cfg *config.Config) plex.Config {
	return plex.Config{
		BaseURL:           cfg.Plex.URL,
		Token:             cfg.Plex.Token,
		PlexTVURL:         cfg.PlexTV.URL,
		PlexTVToken:       cfg.PlexTV.Token,
		Timeout:           cfg.Plex.Timeout,
		RequestsPerSecond: cfg.Plex.RequestsPerSecond,
		Burst:             cfg.Plex.Burst,
		Retries:           uint(max(cfg.Plex.Retries, 0)),
		RetryDelay:        cfg.Plex.RetryDelay,
		Breaker: plex.BreakerSettings{
			MaxRequests:  cfg.Plex.Breaker.MaxRequests,
			Interval:     cfg.Plex.Breaker.Interval,
			Timeout:      cfg.Plex.Breaker.Timeout,
			MinRequests:  cfg.Plex.Breaker.MinRequests,
			FailureRatio: cfg.Plex.Breaker.FailureRatio,
		},
		Concurrency: cfg.Evaluator.Concurrency,
	}
}

// newApp wires config, cache, Plex client, catalog and evaluator.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	a := &app{cfg: cfg, log: log}

	var opts []plex.Option
	if cfg.Cache.Enabled {
		a.db, err = openCacheDB(ctx, cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		a.cache = plex.NewCache(a.db)
		opts = append(opts, plex.WithCache(a.cache, cfg.Cache.TTL))
	}
	a.client = plex.NewClient(plexConfig(cfg), log, opts...)

	a.catalog, err = catalog.Load()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.appID, err = a.catalog.ApplicationByKey(cfg.Evaluator.Application)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.evaluator, err = getter.New(a.catalog, a.client,
		getter.WithLogger(log),
		getter.WithConcurrency(cfg.Evaluator.Concurrency),
		getter.WithApplication(a.appID),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Debug("sweepr ready", "plex", cfg.Plex.URL, "cache", cfg.Cache.Enabled, "catalog_version", a.catalog.Version())
	return a, nil
}

// Close releases the cache database.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close cache", "error", err)
		}
	}
}
