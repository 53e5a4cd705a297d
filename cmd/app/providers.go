package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/packing"
	"github.com/yanqian/packing-advisor/internal/infra/config"
	"github.com/yanqian/packing-advisor/internal/infra/forecaststore"
	"github.com/yanqian/packing-advisor/internal/infra/telemetry"
	"github.com/yanqian/packing-advisor/internal/infra/weather/openmeteo"
)

func provideCatalog(cfg *config.Config, logger *slog.Logger) (packing.Catalog, error) {
	path := strings.TrimSpace(cfg.Packing.CatalogPath)
	if path == "" {
		return packing.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	catalog, err := packing.ParseCatalogYAML(data)
	if err != nil {
		return nil, err
	}
	logger.Info("packing catalog loaded", "path", path)
	return catalog, nil
}

func providePackingConfig(cfg *config.Config) packing.Config {
	return packing.Config{
		MaxDuration:   cfg.Packing.MaxDuration,
		WeatherBudget: cfg.Packing.WeatherBudget,
	}
}

func provideForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{CacheTTL: cfg.Cache.TTL}
}

func provideWeatherClient(cfg *config.Config, logger *slog.Logger) *openmeteo.Client {
	w := cfg.Weather
	return openmeteo.NewClient(openmeteo.Config{
		GeocodingURL: w.GeocodingURL,
		ForecastURL:  w.ForecastURL,
		Timeout:      w.Timeout,
		MaxAttempts:  w.Retry.MaxAttempts,
		BaseBackoff:  w.Retry.BaseBackoff,
		Breaker: openmeteo.BreakerConfig{
			MaxRequests:  w.Breaker.MaxRequests,
			Interval:     w.Breaker.Interval,
			Timeout:      w.Breaker.Timeout,
			FailureRatio: w.Breaker.FailureRatio,
			MinRequests:  w.Breaker.MinRequests,
		},
	}, logger)
}

// provideForecastCache picks the configured cache driver and degrades to memory when
// the backing store is unreachable.
func provideForecastCache(cfg *config.Config, logger *slog.Logger) forecast.Cache {
	switch cfg.Cache.Driver {
	case config.CacheValkey:
		if store := buildValkeyStore(cfg, logger); store != nil {
			return store
		}
	case config.CachePostgres:
		if store := buildPostgresStore(cfg, logger); store != nil {
			return store
		}
	case config.CacheSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := forecaststore.NewSQLiteStore(ctx, cfg.Cache.SQLite.Path)
		if err != nil {
			logger.Error("sqlite forecast cache unavailable, using memory store", "error", err)
			break
		}
		logger.Info("sqlite forecast cache enabled", "path", cfg.Cache.SQLite.Path)
		return store
	}
	return forecaststore.NewMemoryStore()
}

func buildValkeyStore(cfg *config.Config, logger *slog.Logger) forecast.Cache {
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey forecast cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return forecaststore.NewValkeyStore(client, "forecast")
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}, nil
}

func buildPostgresStore(cfg *config.Config, logger *slog.Logger) forecast.Cache {
	dsn := strings.TrimSpace(cfg.Cache.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory store")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return nil
	}
	if cfg.Cache.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Cache.Postgres.MaxConns
	}
	if cfg.Cache.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Cache.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return nil
	}
	store := forecaststore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory store", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres forecast cache enabled")
	return store
}

func provideTracer(cfg *config.Config, logger *slog.Logger) (telemetry.ShutdownFunc, error) {
	shutdown, err := telemetry.InitTracer(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		logger.Info("otlp tracing enabled", "endpoint", cfg.Telemetry.OTLPEndpoint)
	}
	return shutdown, nil
}
