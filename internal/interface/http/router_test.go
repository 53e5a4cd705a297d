package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/packing"
	"github.com/yanqian/packing-advisor/internal/infra/config"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
)

func TestRouter_CreatePackingListSuccess(t *testing.T) {
	resp := packing.Response{
		Destination:   "Austin, TX, USA",
		Duration:      3,
		TripTypes:     []packing.TripType{packing.TripBusiness},
		LuggageSize:   packing.LuggageCarryOn,
		WeatherSource: "open-meteo",
		PackingList: packing.PackingList{
			Tops: []packing.ScoredItem{{Name: "Business shirts/blouses", Quantity: 2, Priority: packing.PriorityConditional, Reason: "fits business trips", Score: 23.5}},
		},
	}
	svc := &stubPacking{
		recommendFn: func(ctx context.Context, req packing.Request) (packing.Response, error) {
			require.Equal(t, "Austin, TX, USA", req.Destination)
			require.Equal(t, 3, req.Duration)
			require.Equal(t, [][]string{{"Business meetings"}}, req.Activities)
			return resp, nil
		},
	}

	body := `{"destination":"Austin, TX, USA","duration":3,"tripTypes":["business"],"luggageSize":"carry-on","activities":[["Business meetings"]]}`
	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", body, newRouterUnderTest(t, svc, &stubForecast{}, config.RateLimitConfig{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var got packing.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp.PackingList.Tops, got.PackingList.Tops)
	require.Equal(t, "open-meteo", got.WeatherSource)
}

func TestRouter_CreatePackingListInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", `{"duration":"three"}`, newRouterUnderTest(t, &stubPacking{}, &stubForecast{}, config.RateLimitConfig{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_CreatePackingListInvalidInput(t *testing.T) {
	svc := &stubPacking{
		recommendFn: func(ctx context.Context, req packing.Request) (packing.Response, error) {
			return packing.Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "destination is required", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", `{"duration":2}`, newRouterUnderTest(t, svc, &stubForecast{}, config.RateLimitConfig{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, apperrors.CodeInvalidInput, errBody["error"]["code"])
	require.Equal(t, "destination is required", errBody["error"]["message"])
}

func TestRouter_CreatePackingListUnexpectedError(t *testing.T) {
	svc := &stubPacking{
		recommendFn: func(ctx context.Context, req packing.Request) (packing.Response, error) {
			return packing.Response{}, errors.New("boom")
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/packing-lists", `{"destination":"Oslo","duration":2}`, newRouterUnderTest(t, svc, &stubForecast{}, config.RateLimitConfig{}))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "packing_list_failed", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_GetForecast(t *testing.T) {
	fc := forecast.Forecast{
		Location: forecast.Location{Name: "Lisbon"},
		Source:   "open-meteo+cache",
		Days:     []forecast.Day{{Date: "2025-06-01", High: 80, Low: 62}},
	}
	forecasts := &stubForecast{
		forecastFn: func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
			require.Equal(t, forecast.Query{Destination: "Lisbon", StartDate: "2025-06-01", Days: 1}, q)
			return fc, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon&days=1&startDate=2025-06-01", "", newRouterUnderTest(t, &stubPacking{}, forecasts, config.RateLimitConfig{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got forecast.Forecast
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "open-meteo+cache", got.Source)
	require.Len(t, got.Days, 1)
}

func TestRouter_GetForecastDefaultsDays(t *testing.T) {
	forecasts := &stubForecast{
		forecastFn: func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
			require.Equal(t, defaultForecastDays, q.Days)
			return forecast.Forecast{}, nil
		},
	}
	recorder := performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon", "", newRouterUnderTest(t, &stubPacking{}, forecasts, config.RateLimitConfig{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon&days=many", "", newRouterUnderTest(t, &stubPacking{}, forecasts, config.RateLimitConfig{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_GetForecastUpstreamFailure(t *testing.T) {
	forecasts := &stubForecast{
		forecastFn: func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
			return forecast.Forecast{}, apperrors.Wrap(apperrors.CodeWeatherUnavailable, "weather forecast unavailable", errors.New("503"))
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon&days=3", "", newRouterUnderTest(t, &stubPacking{}, forecasts, config.RateLimitConfig{}))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, apperrors.CodeWeatherUnavailable, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, &stubPacking{}, &stubForecast{}, config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1})

	first := performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon", "", server)
	require.Equal(t, http.StatusOK, first.Code)

	second := performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon", "", server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])

	health := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, health.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, &stubPacking{}, &stubForecast{}, config.RateLimitConfig{})

	health := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, health.Code)
	require.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	_ = performRequest(http.MethodGet, "/api/v1/forecasts?destination=Lisbon", "", server)
	metricsRec := performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.True(t, strings.Contains(metricsRec.Body.String(), "packing_advisor_http_requests_total"))
}

func TestRouter_RequestIDPropagates(t *testing.T) {
	server := newRouterUnderTest(t, &stubPacking{}, &stubForecast{}, config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubPacking{}, &stubForecast{}, config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/packing-lists", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiterForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1})
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("10.0.0.2"))
	require.Len(t, limiter.visitors, 1)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, packingSvc packing.Service, forecastSvc forecast.Service, rateLimit config.RateLimitConfig) *http.Server {
	t.Helper()
	logger := newTestLogger()
	handler := NewHandler(packingSvc, forecastSvc, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			RateLimit:      rateLimit,
			AllowedOrigins: []string{"https://app.example"},
		},
	}
	return NewRouter(cfg, handler, logger)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubPacking struct {
	recommendFn func(ctx context.Context, req packing.Request) (packing.Response, error)
}

func (s *stubPacking) Recommend(ctx context.Context, req packing.Request) (packing.Response, error) {
	if s.recommendFn != nil {
		return s.recommendFn(ctx, req)
	}
	return packing.Response{}, nil
}

type stubForecast struct {
	forecastFn func(ctx context.Context, q forecast.Query) (forecast.Forecast, error)
}

func (s *stubForecast) Forecast(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
	if s.forecastFn != nil {
		return s.forecastFn(ctx, q)
	}
	return forecast.Forecast{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
