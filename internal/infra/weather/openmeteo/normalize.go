package openmeteo

import "github.com/yanqian/packing-advisor/internal/domain/forecast"

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

type forecastResponse struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Daily     dailyBlock `json:"daily"`
}

// Open-Meteo returns parallel arrays; any entry may be null.
type dailyBlock struct {
	Time             []string   `json:"time"`
	WeatherCode      []*int     `json:"weather_code"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	UVIndexMax       []*float64 `json:"uv_index_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

// unknownWeatherCode classifies as mixed.
const unknownWeatherCode = -1

// normalizeDaily zips the parallel arrays into days. Days without both temperatures are dropped.
func normalizeDaily(block dailyBlock) []forecast.Day {
	days := make([]forecast.Day, 0, len(block.Time))
	for i, date := range block.Time {
		high := at(block.TemperatureMax, i)
		low := at(block.TemperatureMin, i)
		if high == nil || low == nil {
			continue
		}
		code := unknownWeatherCode
		if i < len(block.WeatherCode) && block.WeatherCode[i] != nil {
			code = *block.WeatherCode[i]
		}
		precipitation := 0.0
		if p := at(block.PrecipitationSum, i); p != nil && *p > 0 {
			precipitation = *p
		}
		var uv *float64
		if v := at(block.UVIndexMax, i); v != nil {
			value := *v
			uv = &value
		}
		days = append(days, forecast.Day{
			Date:          date,
			High:          *high,
			Low:           *low,
			WeatherCode:   code,
			UVIndex:       uv,
			Precipitation: precipitation,
		})
	}
	return days
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
