package forecast

import (
	"time"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

// MaxDays is the longest forecast window the upstream provider serves.
const MaxDays = 16

// Source labels.
const (
	SourceFallback     = "fallback"
	cachedSourceSuffix = "+cache"
)

// Query identifies a forecast window for a destination. StartDate is optional (YYYY-MM-DD);
// empty means today.
type Query struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate,omitempty"`
	Days        int    `json:"days"`
}

// Location is the geocoded destination.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Day is one normalized forecast day. Temperatures are °F, precipitation is mm.
type Day struct {
	Date          string          `json:"date"`
	High          float64         `json:"temperatureHigh"`
	Low           float64         `json:"temperatureLow"`
	UVIndex       *float64        `json:"uvIndex,omitempty"`
	Precipitation float64         `json:"precipitationSum"`
	WeatherCode   int             `json:"weatherCode"`
	Condition     rules.Condition `json:"condition"`
}

// Forecast is a normalized daily forecast for one destination.
type Forecast struct {
	Location  Location  `json:"location"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
	Days      []Day     `json:"daily"`
}

// Config wires runtime settings for the forecast domain.
type Config struct {
	CacheTTL time.Duration
}
