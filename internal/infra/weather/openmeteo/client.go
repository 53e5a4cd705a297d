package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/pkg/metrics"
	"github.com/yanqian/packing-advisor/pkg/util"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	sourceName  = "open-meteo"
	breakerName = "open-meteo"

	dailyFields = "weather_code,temperature_2m_max,temperature_2m_min,uv_index_max,precipitation_sum"
)

var tracer = otel.Tracer("github.com/yanqian/packing-advisor/internal/infra/weather/openmeteo")

var (
	// ErrLocationNotFound is returned when geocoding yields no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstreamRejected marks a 4xx answer to a request the caller shaped, such as a date
	// outside the forecast window. It says nothing about upstream health.
	ErrUpstreamRejected = errors.New("upstream rejected request")
)

// Config controls the Open-Meteo client.
type Config struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	Breaker      BreakerConfig
}

// BreakerConfig tunes the circuit breaker around upstream calls.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Client fetches daily forecasts from Open-Meteo.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[forecast.Forecast]
	logger     *slog.Logger
}

// NewClient builds an API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.GeocodingURL = strings.TrimRight(firstNonEmpty(cfg.GeocodingURL, defaultGeocodingURL), "/")
	cfg.ForecastURL = strings.TrimRight(firstNonEmpty(cfg.ForecastURL, defaultForecastURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	logger = logger.With("component", "openmeteo.client")
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[forecast.Forecast](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.Breaker.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrLocationNotFound) ||
				errors.Is(err, ErrUpstreamRejected) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return c
}

// Fetch geocodes the destination and retrieves its daily forecast.
func (c *Client) Fetch(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
	ctx, span := tracer.Start(ctx, "openmeteo.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("destination", q.Destination), attribute.Int("days", q.Days))

	fc, err := c.breaker.Execute(func() (forecast.Forecast, error) {
		return c.fetch(ctx, q)
	})
	if err != nil {
		span.RecordError(err)
		return forecast.Forecast{}, err
	}
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
	loc, err := c.geocode(ctx, q.Destination)
	if err != nil {
		return forecast.Forecast{}, err
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	params.Set("daily", dailyFields)
	params.Set("temperature_unit", "fahrenheit")
	params.Set("precipitation_unit", "mm")
	params.Set("timezone", "auto")
	if start, err := util.ParseISODate(q.StartDate); err == nil {
		params.Set("start_date", start.Format(util.ISODate))
		params.Set("end_date", start.AddDate(0, 0, q.Days-1).Format(util.ISODate))
	} else {
		params.Set("forecast_days", strconv.Itoa(q.Days))
	}

	var raw forecastResponse
	if err := c.getJSON(ctx, "forecast", c.cfg.ForecastURL+"?"+params.Encode(), &raw); err != nil {
		return forecast.Forecast{}, err
	}
	if raw.Timezone != "" {
		loc.Timezone = raw.Timezone
	}

	days := normalizeDaily(raw.Daily)
	if len(days) == 0 {
		return forecast.Forecast{}, fmt.Errorf("open-meteo returned no usable days for %q", q.Destination)
	}
	c.logger.Debug("forecast received", "destination", q.Destination, "location", loc.Name, "days", len(days))
	return forecast.Forecast{
		Location:  loc,
		Source:    sourceName,
		FetchedAt: util.NowUTC(),
		Days:      days,
	}, nil
}

func (c *Client) geocode(ctx context.Context, destination string) (forecast.Location, error) {
	params := url.Values{}
	params.Set("name", searchName(destination))
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var raw geocodingResponse
	if err := c.getJSON(ctx, "geocoding", c.cfg.GeocodingURL+"?"+params.Encode(), &raw); err != nil {
		return forecast.Location{}, err
	}
	if len(raw.Results) == 0 {
		return forecast.Location{}, fmt.Errorf("%w: %s", ErrLocationNotFound, destination)
	}
	hit := raw.Results[0]
	return forecast.Location{
		Name:      hit.Name,
		Country:   hit.Country,
		Latitude:  hit.Latitude,
		Longitude: hit.Longitude,
		Timezone:  hit.Timezone,
	}, nil
}

// getJSON performs a GET with bounded retries. Transport errors, 429 and 5xx responses are
// retried with exponential backoff; other failures return immediately.
func (c *Client) getJSON(ctx context.Context, endpoint, target string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.cfg.BaseBackoff * time.Duration(1<<(attempt-2))
			c.logger.Warn("retrying upstream request", "endpoint", endpoint, "attempt", attempt, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		retryable, err := c.doGet(ctx, endpoint, target, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, endpoint, target string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues(endpoint, "error").Observe(time.Since(started).Seconds())
		return ctx.Err() == nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(started).Seconds())

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, fmt.Errorf("%s request error: status=%d body=%s", endpoint, resp.StatusCode, string(payload))
		}
		if resp.StatusCode >= 400 {
			return false, fmt.Errorf("%w: %s status=%d body=%s", ErrUpstreamRejected, endpoint, resp.StatusCode, string(payload))
		}
		return false, fmt.Errorf("%s request error: status=%d body=%s", endpoint, resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return false, nil
}

// searchName keeps the part before the first comma; the geocoder matches place names only.
func searchName(destination string) string {
	name, _, _ := strings.Cut(destination, ",")
	return strings.TrimSpace(name)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
