package packing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

// reasonSignals records which affinities fired on an item's relevant days, in first-seen order.
type reasonSignals struct {
	weather    []string
	activities []string
	trips      []string
}

func (r *reasonSignals) collect(item CatalogItem, day DayWeatherActivity, categories []rules.Category, tripTypes []TripType) {
	bucket := string(rules.BucketFor(day.Temp.High))
	if item.WeatherAffinity[bucket] > 0 {
		r.weather = appendUnique(r.weather, bucket)
	}
	if item.WeatherAffinity[string(day.Condition)] > 0 {
		r.weather = appendUnique(r.weather, string(day.Condition))
	}
	for _, category := range categories {
		if item.ActivityAffinity[string(category)] > 0 {
			r.activities = appendUnique(r.activities, string(category))
		}
	}
	for _, tripType := range tripTypes {
		if item.ActivityAffinity[string(tripType)] > 0 {
			r.trips = appendUnique(r.trips, string(tripType))
		}
	}
}

func (r reasonSignals) reason(priority Priority) string {
	var parts []string
	if len(r.weather) > 0 {
		parts = append(parts, "suited to "+joinWords(r.weather)+" weather")
	}
	if len(r.activities) > 0 {
		parts = append(parts, "useful for "+joinWords(r.activities)+" activities")
	}
	if len(r.trips) > 0 {
		parts = append(parts, "fits "+joinWords(r.trips)+" trips")
	}
	if len(parts) == 0 {
		switch priority {
		case PriorityEssential:
			return "Essential for every trip"
		case PriorityRecommended:
			return "Recommended for most trips"
		default:
			return "Handy to have on this trip"
		}
	}
	return capitalize(strings.Join(parts, "; "))
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
