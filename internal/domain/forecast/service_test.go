package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
)

type stubProvider struct {
	calls   int
	fetchFn func(ctx context.Context, q Query) (Forecast, error)
}

func (s *stubProvider) Fetch(ctx context.Context, q Query) (Forecast, error) {
	s.calls++
	return s.fetchFn(ctx, q)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]Forecast
	ttls    map[string]time.Duration
	getErr  error
	saveErr error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]Forecast{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) (Forecast, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return Forecast{}, false, c.getErr
	}
	f, ok := c.entries[key]
	return f, ok, nil
}

func (c *mapCache) Save(_ context.Context, key string, f Forecast, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.entries[key] = f
	c.ttls[key] = ttl
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoDayForecast(context.Context, Query) (Forecast, error) {
	return Forecast{
		Location: Location{Name: "Lisbon", Latitude: 38.72, Longitude: -9.14},
		Source:   "open-meteo",
		Days: []Day{
			{Date: "2025-06-01", High: 82, Low: 64, WeatherCode: 0},
			{Date: "2025-06-02", High: 70, Low: 60, WeatherCode: 61, Precipitation: 6.5},
		},
	}, nil
}

func TestForecastClassifiesAndCaches(t *testing.T) {
	provider := &stubProvider{fetchFn: twoDayForecast}
	cache := newMapCache()
	svc := NewService(Config{CacheTTL: time.Hour}, provider, cache, testLogger())

	q := Query{Destination: "  Lisbon ", StartDate: "2025-06-01", Days: 2}
	first, err := svc.Forecast(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, "open-meteo", first.Source)
	require.Equal(t, rules.ConditionSunny, first.Days[0].Condition)
	require.Equal(t, rules.ConditionRainy, first.Days[1].Condition)
	require.False(t, first.FetchedAt.IsZero())
	require.Equal(t, time.Hour, cache.ttls["lisbon|2025-06-01|2"])

	second, err := svc.Forecast(context.Background(), Query{Destination: "LISBON", StartDate: "2025-06-01", Days: 2})
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, "open-meteo+cache", second.Source)
	require.Equal(t, first.Days, second.Days)
}

func TestForecastCacheErrorsAreNotFatal(t *testing.T) {
	provider := &stubProvider{fetchFn: twoDayForecast}
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	cache.saveErr = errors.New("connection refused")
	svc := NewService(Config{}, provider, cache, testLogger())

	fc, err := svc.Forecast(context.Background(), Query{Destination: "Lisbon", Days: 2})
	require.NoError(t, err)
	require.Len(t, fc.Days, 2)
	require.Equal(t, 1, provider.calls)
}

func TestForecastProviderFailure(t *testing.T) {
	provider := &stubProvider{fetchFn: func(context.Context, Query) (Forecast, error) {
		return Forecast{}, errors.New("upstream 503")
	}}
	svc := NewService(Config{}, provider, nil, testLogger())

	_, err := svc.Forecast(context.Background(), Query{Destination: "Lisbon", Days: 3})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherUnavailable))
}

func TestForecastEmptyDaysIsUnavailable(t *testing.T) {
	provider := &stubProvider{fetchFn: func(context.Context, Query) (Forecast, error) {
		return Forecast{Source: "open-meteo"}, nil
	}}
	svc := NewService(Config{}, provider, nil, testLogger())

	_, err := svc.Forecast(context.Background(), Query{Destination: "Lisbon", Days: 1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherUnavailable))
}

func TestForecastRejectsInvalidQueries(t *testing.T) {
	provider := &stubProvider{fetchFn: twoDayForecast}
	svc := NewService(Config{}, provider, nil, testLogger())

	cases := map[string]Query{
		"missing destination": {Destination: " ", Days: 2},
		"zero days":           {Destination: "Lisbon", Days: 0},
		"too many days":       {Destination: "Lisbon", Days: MaxDays + 1},
		"bad start date":      {Destination: "Lisbon", StartDate: "June 1", Days: 2},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Forecast(context.Background(), q)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
	require.Zero(t, provider.calls)
}

func TestFallbackSequence(t *testing.T) {
	now := time.Date(2025, time.January, 30, 9, 0, 0, 0, time.UTC)

	fc := Fallback("Oslo", "", 3, now)
	require.Equal(t, SourceFallback, fc.Source)
	require.Equal(t, "Oslo", fc.Location.Name)
	require.Len(t, fc.Days, 3)
	require.Equal(t, "2025-01-30", fc.Days[0].Date)
	require.Equal(t, "2025-02-01", fc.Days[2].Date)
	for _, day := range fc.Days {
		require.Equal(t, 72.0, day.High)
		require.Equal(t, 58.0, day.Low)
		require.Equal(t, rules.ConditionCloudy, day.Condition)
		require.Zero(t, day.Precipitation)
		require.NotNil(t, day.UVIndex)
		require.Equal(t, 5.0, *day.UVIndex)
	}

	fromStart := Fallback("Oslo", "2025-07-04", 1, now)
	require.Equal(t, "2025-07-04", fromStart.Days[0].Date)
}
