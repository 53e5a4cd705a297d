package packing

import (
	"math"
	"strings"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

const (
	weatherBonusScale  = 2.0
	activityBonusScale = 1.5

	uvBonusThreshold = 6.0
	uvBonus          = 3.0

	heavyRainMM    = 5.0
	heavyRainBonus = 4.0
	lightRainBonus = 2.0
)

var (
	coldGearKeywords = []string{"gloves", "thermal", "winter coat", "scarf"}
	winterKeywords   = []string{"thermal", "winter"}
	sunGearKeywords  = []string{"sunscreen", "sunglasses", "hat"}
	rainGearKeywords = []string{"rain", "waterproof", "umbrella"}
)

// Average-temperature and overnight-low limits above which cold gear is never suggested.
const (
	coldGearMaxAvgF   = 80.0
	winterGearMaxAvgF = 70.0
	coldGearMaxLowF   = 65.0
)

// Score computes an item's relevance for a single day.
//
// Cold-weather exclusions run first and force a zero score so no later bonus can bring the
// item back. Otherwise:
//
//	score = baseWeight
//	      + 2·weather[bucket] + 2·weather[condition] + weather[all]
//	      + Σ 1.5·activity[category] + activity[all]
//	      + Σ activity[tripType]
//	      + UV and precipitation bonuses for sun and rain gear
//
// The result is clamped at zero.
func Score(item CatalogItem, day DayWeatherActivity, categories []rules.Category, tripTypes []TripType) float64 {
	name := strings.ToLower(item.Name)
	if excluded(name, day.Temp) {
		return 0
	}

	score := item.BaseWeight

	if v, ok := item.WeatherAffinity[string(rules.BucketFor(day.Temp.High))]; ok {
		score += v * weatherBonusScale
	}
	if v, ok := item.WeatherAffinity[string(day.Condition)]; ok {
		score += v * weatherBonusScale
	}
	if v, ok := item.WeatherAffinity[AffinityAll]; ok {
		score += v
	}

	for _, category := range categories {
		if v, ok := item.ActivityAffinity[string(category)]; ok {
			score += v * activityBonusScale
		}
	}
	if v, ok := item.ActivityAffinity[AffinityAll]; ok {
		score += v
	}

	for _, tripType := range tripTypes {
		if v, ok := item.ActivityAffinity[string(tripType)]; ok {
			score += v
		}
	}

	if day.UVIndex != nil && *day.UVIndex > uvBonusThreshold && rules.ContainsAny(name, sunGearKeywords...) {
		score += uvBonus
	}

	if day.Precipitation > 0 && rules.ContainsAny(name, rainGearKeywords...) {
		if day.Precipitation > heavyRainMM {
			score += heavyRainBonus
		} else {
			score += lightRainBonus
		}
	}

	return math.Max(0, score)
}

func excluded(lowerName string, temp Temperature) bool {
	avg := (temp.High + temp.Low) / 2
	switch {
	case avg > coldGearMaxAvgF && rules.ContainsAny(lowerName, coldGearKeywords...):
		return true
	case avg > winterGearMaxAvgF && rules.ContainsAny(lowerName, winterKeywords...):
		return true
	case temp.Low > coldGearMaxLowF && rules.ContainsAny(lowerName, coldGearKeywords...):
		return true
	}
	return false
}
