package rules

// Condition is the coarse weather label shared by the packing engine and the forecast layer.
type Condition string

const (
	ConditionSunny  Condition = "sunny"
	ConditionCloudy Condition = "cloudy"
	ConditionRainy  Condition = "rainy"
	ConditionSnowy  Condition = "snowy"
	ConditionMixed  Condition = "mixed"
)

// Bucket is a temperature band derived from the daily high.
type Bucket string

const (
	BucketHot  Bucket = "hot"
	BucketMild Bucket = "mild"
	BucketCold Bucket = "cold"
)

// Temperature thresholds in °F.
const (
	HotHighF  = 80.0
	MildHighF = 65.0
	ColdHighF = 50.0

	// Trace drizzle at or below this amount reads as sun for packing purposes.
	DrizzleSunnyMaxMM = 1.0
)

// Classify maps a WMO weather code and the day's precipitation to a Condition.
func Classify(code int, precipitationMM float64) Condition {
	switch {
	case code == 0:
		return ConditionSunny
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code >= 45 && code <= 48:
		return ConditionCloudy
	case code == 51 || code == 53:
		if precipitationMM <= DrizzleSunnyMaxMM {
			return ConditionSunny
		}
		return ConditionMixed
	case code >= 55 && code <= 67:
		return ConditionRainy
	case code >= 71 && code <= 77:
		return ConditionSnowy
	case code >= 80 && code <= 82:
		return ConditionRainy
	case code >= 95 && code <= 99:
		return ConditionRainy
	default:
		return ConditionMixed
	}
}

// BucketFor returns the temperature bucket for a daily high.
// Highs between ColdHighF and MildHighF fall back to mild.
func BucketFor(highF float64) Bucket {
	switch {
	case highF >= HotHighF:
		return BucketHot
	case highF >= MildHighF:
		return BucketMild
	case highF < ColdHighF:
		return BucketCold
	default:
		return BucketMild
	}
}

// ParseCondition reports whether s names a known condition.
func ParseCondition(s string) (Condition, bool) {
	switch c := Condition(s); c {
	case ConditionSunny, ConditionCloudy, ConditionRainy, ConditionSnowy, ConditionMixed:
		return c, true
	}
	return "", false
}
