package openmeteo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
)

const geocodingBody = `{"results":[{"name":"Austin","latitude":30.26715,"longitude":-97.74306,"country":"United States","timezone":"America/Chicago"}]}`

const forecastBody = `{
  "latitude": 30.27, "longitude": -97.74, "timezone": "America/Chicago",
  "daily": {
    "time": ["2025-06-01", "2025-06-02", "2025-06-03"],
    "weather_code": [0, 63, null],
    "temperature_2m_max": [91.2, 84.0, null],
    "temperature_2m_min": [74.1, 70.3, 69.0],
    "uv_index_max": [9.1, null, 7.0],
    "precipitation_sum": [0.0, 12.4, 0.0]
  }
}`

type upstream struct {
	server        *httptest.Server
	forecastCalls atomic.Int32
	lastQuery     atomic.Value
}

func newUpstream(t *testing.T, geocoding string, forecastHandler func(calls int32, w http.ResponseWriter)) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		u.lastQuery.Store(r.URL.Query().Get("name"))
		_, _ = io.WriteString(w, geocoding)
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("temperature_unit") != "fahrenheit" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		forecastHandler(u.forecastCalls.Add(1), w)
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) client() *Client {
	return NewClient(Config{
		GeocodingURL: u.server.URL + "/v1/search",
		ForecastURL:  u.server.URL + "/v1/forecast",
		Timeout:      2 * time.Second,
		MaxAttempts:  3,
		BaseBackoff:  time.Millisecond,
		Breaker:      BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.6, MinRequests: 100},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchNormalizesForecast(t *testing.T) {
	u := newUpstream(t, geocodingBody, func(_ int32, w http.ResponseWriter) {
		_, _ = io.WriteString(w, forecastBody)
	})

	fc, err := u.client().Fetch(context.Background(), forecast.Query{Destination: "Austin, TX, USA", StartDate: "2025-06-01", Days: 3})
	require.NoError(t, err)
	require.Equal(t, "Austin", u.lastQuery.Load())
	require.Equal(t, "Austin", fc.Location.Name)
	require.Equal(t, "America/Chicago", fc.Location.Timezone)
	require.Equal(t, sourceName, fc.Source)
	require.False(t, fc.FetchedAt.IsZero())
	require.Len(t, fc.Days, 2)
	require.Equal(t, 91.2, fc.Days[0].High)
	require.Equal(t, 9.1, *fc.Days[0].UVIndex)
	require.Equal(t, 63, fc.Days[1].WeatherCode)
	require.Nil(t, fc.Days[1].UVIndex)
	require.Equal(t, 12.4, fc.Days[1].Precipitation)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	u := newUpstream(t, geocodingBody, func(calls int32, w http.ResponseWriter) {
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, forecastBody)
	})

	fc, err := u.client().Fetch(context.Background(), forecast.Query{Destination: "Austin", Days: 3})
	require.NoError(t, err)
	require.Len(t, fc.Days, 2)
	require.Equal(t, int32(3), u.forecastCalls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	u := newUpstream(t, geocodingBody, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":true,"reason":"bad date"}`)
	})

	_, err := u.client().Fetch(context.Background(), forecast.Query{Destination: "Austin", Days: 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=400")
	require.ErrorIs(t, err, ErrUpstreamRejected)
	require.Equal(t, int32(1), u.forecastCalls.Load())
}

func TestRejectedRequestsDoNotOpenBreaker(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, geocodingBody)
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_date") == "2027-01-01" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":true,"reason":"start_date out of range"}`)
			return
		}
		_, _ = io.WriteString(w, forecastBody)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := newBreakerClient(server.URL)

	for i := 0; i < 6; i++ {
		_, err := client.Fetch(context.Background(), forecast.Query{Destination: "Austin", StartDate: "2027-01-01", Days: 3})
		require.ErrorIs(t, err, ErrUpstreamRejected)
	}

	fc, err := client.Fetch(context.Background(), forecast.Query{Destination: "Austin", StartDate: "2025-06-01", Days: 3})
	require.NoError(t, err)
	require.Len(t, fc.Days, 2)
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	u := newUpstream(t, geocodingBody, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := newBreakerClient(u.server.URL)

	for i := 0; i < 5; i++ {
		_, err := client.Fetch(context.Background(), forecast.Query{Destination: "Austin", Days: 3})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUpstreamRejected)
	}

	_, err := client.Fetch(context.Background(), forecast.Query{Destination: "Austin", Days: 3})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, int32(5), u.forecastCalls.Load())
}

func newBreakerClient(baseURL string) *Client {
	return NewClient(Config{
		GeocodingURL: baseURL + "/v1/search",
		ForecastURL:  baseURL + "/v1/forecast",
		Timeout:      2 * time.Second,
		MaxAttempts:  1,
		Breaker:      BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.6, MinRequests: 5},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchUnknownLocation(t *testing.T) {
	u := newUpstream(t, `{"generationtime_ms":0.2}`, func(_ int32, w http.ResponseWriter) {
		_, _ = io.WriteString(w, forecastBody)
	})

	_, err := u.client().Fetch(context.Background(), forecast.Query{Destination: "Atlantis", Days: 3})
	require.True(t, errors.Is(err, ErrLocationNotFound))
	require.Zero(t, u.forecastCalls.Load())
}

func TestNormalizeDaily(t *testing.T) {
	high, low, rain := 60.0, 40.0, -0.1
	days := normalizeDaily(dailyBlock{
		Time:             []string{"2025-01-01", "2025-01-02"},
		WeatherCode:      []*int{nil},
		TemperatureMax:   []*float64{&high, &high},
		TemperatureMin:   []*float64{&low},
		PrecipitationSum: []*float64{&rain},
	})
	require.Len(t, days, 1)
	require.Equal(t, unknownWeatherCode, days[0].WeatherCode)
	require.Zero(t, days[0].Precipitation)
	require.Nil(t, days[0].UVIndex)
}

func TestSearchName(t *testing.T) {
	require.Equal(t, "Austin", searchName(" Austin , TX, USA"))
	require.Equal(t, "Lisbon", searchName("Lisbon"))
}
