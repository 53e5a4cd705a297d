package forecast

import (
	"time"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
	"github.com/yanqian/packing-advisor/pkg/util"
)

const (
	fallbackHighF = 72
	fallbackLowF  = 58
	fallbackUV    = 5
	// WMO "overcast", which classifies as cloudy.
	fallbackWeatherCode = 3
)

// Fallback returns a mild, dry, cloudy forecast for days consecutive dates starting at start
// (YYYY-MM-DD). An empty or unparsable start uses now.
func Fallback(destination, start string, days int, now time.Time) Forecast {
	from := now.UTC()
	if start != "" {
		if parsed, err := util.ParseISODate(start); err == nil {
			from = parsed
		}
	}
	labels := util.DateRange(from, days)
	out := make([]Day, len(labels))
	for i, date := range labels {
		uv := float64(fallbackUV)
		out[i] = Day{
			Date:        date,
			High:        fallbackHighF,
			Low:         fallbackLowF,
			WeatherCode: fallbackWeatherCode,
			Condition:   rules.ConditionCloudy,
			UVIndex:     &uv,
		}
	}
	return Forecast{
		Location:  Location{Name: destination},
		Source:    SourceFallback,
		FetchedAt: now.UTC(),
		Days:      out,
	}
}
