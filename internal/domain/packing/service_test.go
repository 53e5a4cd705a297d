package packing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/rules"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
)

type stubForecasts struct {
	queries    []forecast.Query
	forecastFn func(ctx context.Context, q forecast.Query) (forecast.Forecast, error)
}

func (s *stubForecasts) Forecast(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
	s.queries = append(s.queries, q)
	return s.forecastFn(ctx, q)
}

func newTestService(t *testing.T, forecasts ForecastSource) *service {
	t.Helper()
	svc := NewService(Config{MaxDuration: 30}, newTestEngine(t), forecasts, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func austinForecast(context.Context, forecast.Query) (forecast.Forecast, error) {
	uv := 9.0
	return forecast.Forecast{
		Location: forecast.Location{Name: "Austin", Country: "United States", Latitude: 30.27, Longitude: -97.74},
		Source:   "open-meteo",
		Days: []forecast.Day{
			{Date: "2025-06-01", High: 90, Low: 75, Condition: rules.ConditionSunny, UVIndex: &uv},
			{Date: "2025-06-02", High: 92, Low: 76, Condition: rules.ConditionSunny, UVIndex: &uv},
		},
	}, nil
}

func TestRecommendUsesForecastAndExtendsDays(t *testing.T) {
	stub := &stubForecasts{forecastFn: austinForecast}
	svc := newTestService(t, stub)

	res, err := svc.Recommend(context.Background(), Request{
		Destination: " Austin, TX, USA ",
		StartDate:   "2025-06-01",
		Duration:    3,
		TripTypes:   []string{"Business", "vacation", "business"},
		LuggageSize: "carry-on",
		Activities:  [][]string{{"Business meetings"}, {"Business meetings"}},
	})
	require.NoError(t, err)

	require.Equal(t, []forecast.Query{{Destination: "Austin, TX, USA", StartDate: "2025-06-01", Days: 3}}, stub.queries)
	require.Equal(t, "Austin, TX, USA", res.Destination)
	require.Equal(t, []TripType{TripBusiness}, res.TripTypes)
	require.Equal(t, LuggageCarryOn, res.LuggageSize)
	require.Equal(t, "open-meteo", res.WeatherSource)
	require.Equal(t, "Austin", res.Location.Name)

	require.Len(t, res.Daily, 3)
	require.Equal(t, "2025-06-03", res.Daily[2].Date)
	require.Equal(t, 92.0, res.Daily[2].WeatherDetails.High)
	require.Empty(t, res.Daily[2].Recommendations.ActivitySpecific)
	require.Contains(t, res.Daily[0].Recommendations.ActivitySpecific, "Business attire")

	require.Contains(t, names(res.PackingList.Tops), "Business shirts/blouses")
	require.NotEmpty(t, res.PackingList.Essentials)
	require.NotEmpty(t, res.Luggage.PackingTips)
}

func TestRecommendFallsBackWhenWeatherFails(t *testing.T) {
	stub := &stubForecasts{forecastFn: func(context.Context, forecast.Query) (forecast.Forecast, error) {
		return forecast.Forecast{}, apperrors.Wrap(apperrors.CodeWeatherUnavailable, "weather forecast unavailable", errors.New("timeout"))
	}}
	svc := newTestService(t, stub)

	res, err := svc.Recommend(context.Background(), Request{Destination: "Atlantis", Duration: 2, LuggageSize: "suitcase"})
	require.NoError(t, err)
	require.Equal(t, forecast.SourceFallback, res.WeatherSource)
	require.Equal(t, LuggageStandard, res.LuggageSize)
	require.Empty(t, res.TripTypes)
	require.Len(t, res.Daily, 2)
	require.Equal(t, "2025-06-01", res.Daily[0].Date)
	require.Equal(t, rules.ConditionCloudy, res.Daily[0].WeatherDetails.Condition)
	require.NotEmpty(t, res.PackingList.Essentials)
}

func TestRecommendWithoutForecastSource(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Recommend(context.Background(), Request{Destination: "Oslo", StartDate: "2025-12-30", Duration: 3})
	require.NoError(t, err)
	require.Equal(t, forecast.SourceFallback, res.WeatherSource)
	require.Equal(t, "2026-01-01", res.Daily[2].Date)
}

func TestRecommendCapsForecastWindow(t *testing.T) {
	stub := &stubForecasts{forecastFn: austinForecast}
	svc := newTestService(t, stub)

	res, err := svc.Recommend(context.Background(), Request{Destination: "Austin", Duration: 20})
	require.NoError(t, err)
	require.Equal(t, forecast.MaxDays, stub.queries[0].Days)
	require.Len(t, res.Daily, 20)
}

func TestRecommendRejectsInvalidRequests(t *testing.T) {
	stub := &stubForecasts{forecastFn: austinForecast}
	svc := newTestService(t, stub)

	cases := map[string]Request{
		"missing destination": {Duration: 3},
		"blank destination":   {Destination: "   ", Duration: 3},
		"zero duration":       {Destination: "Austin"},
		"negative duration":   {Destination: "Austin", Duration: -2},
		"too long":            {Destination: "Austin", Duration: 31},
		"bad start date":      {Destination: "Austin", Duration: 3, StartDate: "06/01/2025"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Recommend(context.Background(), req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), err.Error())
		})
	}
	require.Empty(t, stub.queries)
}

func TestRecommendFallsBackWithinWeatherBudget(t *testing.T) {
	cases := map[string]func(ctx context.Context, q forecast.Query) (forecast.Forecast, error){
		"source honours cancellation": func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
			select {
			case <-ctx.Done():
				return forecast.Forecast{}, ctx.Err()
			case <-time.After(5 * time.Second):
				return austinForecast(ctx, q)
			}
		},
		"source ignores cancellation": func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
			time.Sleep(2 * time.Second)
			return austinForecast(ctx, q)
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, &stubForecasts{forecastFn: fn})
			svc.cfg.WeatherBudget = 50 * time.Millisecond

			started := time.Now()
			res, err := svc.Recommend(context.Background(), Request{Destination: "Austin", Duration: 3})
			elapsed := time.Since(started)

			require.NoError(t, err)
			require.Equal(t, forecast.SourceFallback, res.WeatherSource)
			require.Len(t, res.Daily, 3)
			require.Less(t, elapsed, time.Second)
		})
	}
}

func TestRecommendPassesBudgetDeadlineToSource(t *testing.T) {
	var deadline time.Time
	stub := &stubForecasts{forecastFn: func(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
		deadline, _ = ctx.Deadline()
		return austinForecast(ctx, q)
	}}
	svc := newTestService(t, stub)
	svc.cfg.WeatherBudget = time.Minute

	started := time.Now()
	res, err := svc.Recommend(context.Background(), Request{Destination: "Austin", Duration: 2})
	require.NoError(t, err)
	require.Equal(t, "open-meteo", res.WeatherSource)
	require.WithinDuration(t, started.Add(time.Minute), deadline, 5*time.Second)
}
