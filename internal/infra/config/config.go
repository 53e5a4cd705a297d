package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheMemory   = "memory"
	CacheValkey   = "valkey"
	CachePostgres = "postgres"
	CacheSQLite   = "sqlite"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Weather   WeatherConfig   `yaml:"weather"`
	Cache     CacheConfig     `yaml:"cache"`
	Packing   PackingConfig   `yaml:"packing"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// WeatherConfig configures the upstream forecast provider.
type WeatherConfig struct {
	GeocodingURL string        `yaml:"geocodingUrl"`
	ForecastURL  string        `yaml:"forecastUrl"`
	Timeout      time.Duration `yaml:"timeout"`
	Retry        RetryConfig   `yaml:"retry"`
	Breaker      BreakerConfig `yaml:"breaker"`
}

// RetryConfig configures bounded retries of upstream requests.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
}

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"maxRequests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	FailureRatio float64       `yaml:"failureRatio"`
	MinRequests  uint32        `yaml:"minRequests"`
}

// CacheConfig selects and configures the forecast cache backend.
type CacheConfig struct {
	Driver   string         `yaml:"driver"`
	TTL      time.Duration  `yaml:"ttl"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Addr string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PackingConfig controls the recommendation engine.
type PackingConfig struct {
	CatalogPath   string        `yaml:"catalogPath"`
	MaxDuration   int           `yaml:"maxDuration"`
	WeatherBudget time.Duration `yaml:"weatherBudget"`
}

// TelemetryConfig controls trace export. An empty endpoint disables export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	ServiceName  string `yaml:"serviceName"`
	Environment  string `yaml:"environment"`
}

// Load reads configuration from an optional .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)

	if v := os.Getenv("WEATHER_GEOCODING_URL"); v != "" {
		cfg.Weather.GeocodingURL = v
	}
	if v := os.Getenv("WEATHER_FORECAST_URL"); v != "" {
		cfg.Weather.ForecastURL = v
	}
	envDuration("WEATHER_TIMEOUT", &cfg.Weather.Timeout)
	envInt("WEATHER_RETRY_MAX_ATTEMPTS", &cfg.Weather.Retry.MaxAttempts)
	envDuration("WEATHER_RETRY_BASE_BACKOFF", &cfg.Weather.Retry.BaseBackoff)

	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	envDuration("CACHE_TTL", &cfg.Cache.TTL)
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("CACHE_POSTGRES_DSN"); v != "" {
		cfg.Cache.Postgres.DSN = v
	}
	if v := os.Getenv("CACHE_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_SQLITE_PATH"); v != "" {
		cfg.Cache.SQLite.Path = v
	}

	if v := os.Getenv("PACKING_CATALOG_PATH"); v != "" {
		cfg.Packing.CatalogPath = v
	}
	envInt("PACKING_MAX_DURATION", &cfg.Packing.MaxDuration)
	envDuration("PACKING_WEATHER_BUDGET", &cfg.Packing.WeatherBudget)

	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Telemetry.Environment = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Weather: WeatherConfig{
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:  "https://api.open-meteo.com/v1/forecast",
			Timeout:      8 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseBackoff: 200 * time.Millisecond,
			},
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				FailureRatio: 0.6,
				MinRequests:  5,
			},
		},
		Cache: CacheConfig{
			Driver: CacheMemory,
			TTL:    3 * time.Hour,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			SQLite: SQLiteConfig{
				Path: "data/forecasts.db",
			},
		},
		Packing: PackingConfig{
			MaxDuration:   30,
			WeatherBudget: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "packing-advisor",
			Environment: "development",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Weather.GeocodingURL) == "" || strings.TrimSpace(c.Weather.ForecastURL) == "" {
		return errors.New("weather.geocodingUrl and weather.forecastUrl cannot be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Weather.Retry.MaxAttempts <= 0 {
		return errors.New("weather.retry.maxAttempts must be positive")
	}
	if c.Weather.Retry.BaseBackoff < 0 {
		return errors.New("weather.retry.baseBackoff cannot be negative")
	}
	if c.Weather.Breaker.FailureRatio <= 0 || c.Weather.Breaker.FailureRatio > 1 {
		return errors.New("weather.breaker.failureRatio must be in (0, 1]")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	switch c.Cache.Driver {
	case CacheMemory:
	case CacheValkey:
		if strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
			return errors.New("cache.valkey.addr cannot be empty when the valkey cache is selected")
		}
	case CachePostgres:
		if strings.TrimSpace(c.Cache.Postgres.DSN) == "" {
			return errors.New("cache.postgres.dsn cannot be empty when the postgres cache is selected")
		}
	case CacheSQLite:
		if strings.TrimSpace(c.Cache.SQLite.Path) == "" {
			return errors.New("cache.sqlite.path cannot be empty when the sqlite cache is selected")
		}
	default:
		return fmt.Errorf("cache.driver %q is not supported", c.Cache.Driver)
	}
	if c.Packing.MaxDuration <= 0 {
		return errors.New("packing.maxDuration must be positive")
	}
	if c.Packing.WeatherBudget <= 0 {
		return errors.New("packing.weatherBudget must be positive")
	}
	if c.HTTP.WriteTimeout > 0 && c.Packing.WeatherBudget >= c.HTTP.WriteTimeout {
		return errors.New("packing.weatherBudget must be shorter than http.writeTimeout")
	}
	return nil
}
