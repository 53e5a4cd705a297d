package packing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
	"github.com/yanqian/packing-advisor/pkg/metrics"
	"github.com/yanqian/packing-advisor/pkg/util"
)

var tracer = otel.Tracer("github.com/yanqian/packing-advisor/internal/domain/packing")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service exposes packing list recommendations.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
}

// ForecastSource resolves daily weather for a destination.
type ForecastSource interface {
	Forecast(ctx context.Context, q forecast.Query) (forecast.Forecast, error)
}

type service struct {
	cfg       Config
	engine    *Engine
	forecasts ForecastSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the packing domain.
func NewService(cfg Config, engine *Engine, forecasts ForecastSource, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		engine:    engine,
		forecasts: forecasts,
		logger:    logger.With("component", "packing.service"),
		now:       util.NowUTC,
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	ctx, span := tracer.Start(ctx, "packing.Recommend")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return Response{}, err
	}
	destination := strings.TrimSpace(req.Destination)
	tripTypes := parseTripTypes(req.TripTypes)
	luggage := parseLuggageSize(req.LuggageSize)
	span.SetAttributes(
		attribute.String("destination", destination),
		attribute.Int("duration", req.Duration),
		attribute.String("luggage_size", string(luggage)),
	)

	fc := s.resolveForecast(ctx, destination, req.StartDate, req.Duration)
	days := buildDays(fc, req.Activities, req.Duration)
	trip := TripContext{
		Destination: destination,
		Duration:    req.Duration,
		TripTypes:   tripTypes,
		LuggageSize: luggage,
		DailyData:   days,
	}

	list := s.engine.Assemble(days, trip)
	res := Response{
		Destination:   destination,
		Duration:      req.Duration,
		TripTypes:     tripTypes,
		LuggageSize:   luggage,
		WeatherSource: fc.Source,
		Location:      fc.Location,
		PackingList:   list,
		Daily:         GenerateDaily(days, trip),
		Luggage:       EstimateLuggage(list, trip),
	}

	metrics.PackingListsGenerated.WithLabelValues(string(luggage)).Inc()
	metrics.PackingItemsListed.Observe(float64(list.TotalItems()))
	s.logger.Info("packing list generated",
		"destination", destination,
		"duration", req.Duration,
		"luggageSize", luggage,
		"weatherSource", fc.Source,
		"items", list.TotalItems(),
	)
	return res, nil
}

func (s *service) validateRequest(req Request) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, validationMessage(err), err)
	}
	if strings.TrimSpace(req.Destination) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "destination is required", nil)
	}
	if s.cfg.MaxDuration > 0 && req.Duration > s.cfg.MaxDuration {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("duration must not exceed %d days", s.cfg.MaxDuration), nil)
	}
	return nil
}

// resolveForecast never fails: upstream problems degrade to the static fallback sequence.
func (s *service) resolveForecast(ctx context.Context, destination, start string, duration int) forecast.Forecast {
	q := forecast.Query{
		Destination: destination,
		StartDate:   start,
		Days:        min(duration, forecast.MaxDays),
	}
	if s.forecasts != nil {
		fc, err := s.lookupForecast(ctx, q)
		if err == nil && len(fc.Days) > 0 {
			return fc
		}
		s.logger.Warn("weather lookup failed, using fallback forecast", "destination", destination, "error", err)
	}
	metrics.WeatherLookups.WithLabelValues(metrics.OutcomeFallback).Inc()
	return forecast.Fallback(destination, start, duration, s.now())
}

type forecastResult struct {
	fc  forecast.Forecast
	err error
}

// lookupForecast returns once the source answers or the weather budget runs out, whichever
// comes first. A source that ignores cancellation finishes in the background.
func (s *service) lookupForecast(ctx context.Context, q forecast.Query) (forecast.Forecast, error) {
	if s.cfg.WeatherBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WeatherBudget)
		defer cancel()
	}

	done := make(chan forecastResult, 1)
	go func() {
		fc, err := s.forecasts.Forecast(ctx, q)
		done <- forecastResult{fc: fc, err: err}
	}()

	select {
	case res := <-done:
		return res.fc, res.err
	case <-ctx.Done():
		return forecast.Forecast{}, ctx.Err()
	}
}

// buildDays pairs forecast days with the requested activities. Trips longer than the forecast
// repeat the last forecast day's weather on the following dates.
func buildDays(fc forecast.Forecast, activities [][]string, duration int) []DayWeatherActivity {
	days := make([]DayWeatherActivity, duration)
	last := fc.Days[len(fc.Days)-1]
	lastDate, dateErr := util.ParseISODate(last.Date)
	for i := range days {
		weather := last
		if i < len(fc.Days) {
			weather = fc.Days[i]
		} else if dateErr == nil {
			weather.Date = lastDate.AddDate(0, 0, i-len(fc.Days)+1).Format(util.ISODate)
		}
		var dayActivities []string
		if i < len(activities) {
			dayActivities = activities[i]
		}
		days[i] = DayWeatherActivity{
			Date:          weather.Date,
			Condition:     weather.Condition,
			Temp:          Temperature{High: weather.High, Low: weather.Low},
			UVIndex:       weather.UVIndex,
			Precipitation: weather.Precipitation,
			Activities:    dayActivities,
		}
	}
	return days
}

func parseTripTypes(values []string) []TripType {
	out := make([]TripType, 0, len(values))
	seen := make(map[TripType]struct{}, len(values))
	for _, v := range values {
		t := TripType(strings.ToLower(strings.TrimSpace(v)))
		switch t {
		case TripBusiness, TripLeisure, TripAdventure:
		default:
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseLuggageSize(value string) LuggageSize {
	size := LuggageSize(strings.ToLower(strings.TrimSpace(value)))
	switch size {
	case LuggageCarryOn, LuggageBackpack, LuggageMediumSuitcase, LuggageLargeSuitcase, LuggageChecked, LuggageStandard:
		return size
	default:
		return LuggageStandard
	}
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be formatted as YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
