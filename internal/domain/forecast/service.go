package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
	"github.com/yanqian/packing-advisor/pkg/metrics"
	"github.com/yanqian/packing-advisor/pkg/util"
)

var tracer = otel.Tracer("github.com/yanqian/packing-advisor/internal/domain/forecast")

// Service resolves daily forecasts for a destination.
type Service interface {
	Forecast(ctx context.Context, q Query) (Forecast, error)
}

// Provider fetches forecasts from an upstream weather API.
type Provider interface {
	Fetch(ctx context.Context, q Query) (Forecast, error)
}

// Cache stores normalized forecasts between requests.
type Cache interface {
	Get(ctx context.Context, key string) (Forecast, bool, error)
	Save(ctx context.Context, key string, f Forecast, ttl time.Duration) error
}

type service struct {
	cfg      Config
	provider Provider
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the forecast domain. cache may be nil.
func NewService(cfg Config, provider Provider, cache Cache, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "forecast.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Forecast(ctx context.Context, q Query) (Forecast, error) {
	ctx, span := tracer.Start(ctx, "forecast.Forecast")
	defer span.End()

	q, err := normalizeQuery(q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Forecast{}, err
	}
	span.SetAttributes(attribute.String("destination", q.Destination), attribute.Int("days", q.Days))

	key := CacheKey(q)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("forecast cache read failed", "key", key, "error", err)
		case ok:
			metrics.WeatherLookups.WithLabelValues(metrics.OutcomeCache).Inc()
			if !strings.HasSuffix(cached.Source, cachedSourceSuffix) {
				cached.Source += cachedSourceSuffix
			}
			return cached, nil
		}
	}

	fc, err := s.provider.Fetch(ctx, q)
	if err != nil {
		metrics.WeatherLookups.WithLabelValues(metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider fetch failed")
		return Forecast{}, apperrors.Wrap(apperrors.CodeWeatherUnavailable, "weather forecast unavailable", err)
	}
	if len(fc.Days) == 0 {
		metrics.WeatherLookups.WithLabelValues(metrics.OutcomeError).Inc()
		return Forecast{}, apperrors.Wrap(apperrors.CodeWeatherUnavailable, "weather provider returned no days", nil)
	}
	for i := range fc.Days {
		fc.Days[i].Condition = rules.Classify(fc.Days[i].WeatherCode, fc.Days[i].Precipitation)
	}
	if fc.FetchedAt.IsZero() {
		fc.FetchedAt = s.now()
	}
	metrics.WeatherLookups.WithLabelValues(metrics.OutcomeProvider).Inc()
	s.logger.Info("forecast fetched", "destination", q.Destination, "days", len(fc.Days), "source", fc.Source)

	if s.cache != nil {
		if err := s.cache.Save(ctx, key, fc, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("forecast cache write failed", "key", key, "error", err)
		}
	}
	return fc, nil
}

// CacheKey derives the cache key for a normalized query.
func CacheKey(q Query) string {
	return strings.ToLower(strings.TrimSpace(q.Destination)) + "|" + q.StartDate + "|" + strconv.Itoa(q.Days)
}

func normalizeQuery(q Query) (Query, error) {
	q.Destination = strings.TrimSpace(q.Destination)
	q.StartDate = strings.TrimSpace(q.StartDate)
	if q.Destination == "" {
		return Query{}, apperrors.Wrap(apperrors.CodeInvalidInput, "destination is required", nil)
	}
	if q.Days < 1 || q.Days > MaxDays {
		return Query{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("days must be between 1 and %d", MaxDays), nil)
	}
	if q.StartDate != "" {
		if _, err := util.ParseISODate(q.StartDate); err != nil {
			return Query{}, apperrors.Wrap(apperrors.CodeInvalidInput, "startDate must be formatted as YYYY-MM-DD", err)
		}
	}
	return q, nil
}
