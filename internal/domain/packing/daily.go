package packing

import (
	"fmt"
	"strings"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

// Day-card thresholds in °F, mm and UV index units.
const (
	coldMorningLowF  = 50.0
	mildMorningLowF  = 65.0
	warmDaytimeHighF = 75.0
	coldDaytimeHighF = 50.0
	coolEveningLowF  = 65.0
	coldEveningLowF  = 50.0

	priorityUV       = 7.0
	priorityRainMM   = 5.0
	priorityHotHighF = 85.0
	priorityColdLowF = 45.0
	layeringSwingF   = 20.0
	middayUVLimit    = 8.0
	humidRainHighF   = 70.0
)

var (
	swimBundle     = []string{"Swimsuit", "Beach towel", "Water-resistant sunscreen", "Flip-flops"}
	businessBundle = []string{"Business attire", "Dress shoes", "Laptop bag"}
	hikingBundle   = []string{"Hiking boots", "Moisture-wicking socks", "Daypack", "Reusable water bottle"}
	runningBundle  = []string{"Athletic wear", "Running shoes", "Reusable water bottle"}
)

// GenerateDaily builds the per-day clothing suggestions. It does not consult the catalog.
func GenerateDaily(days []DayWeatherActivity, _ TripContext) []DailyRecommendation {
	out := make([]DailyRecommendation, 0, len(days))
	for _, day := range days {
		out = append(out, dailyRecommendation(day))
	}
	return out
}

func dailyRecommendation(day DayWeatherActivity) DailyRecommendation {
	categories := rules.CategorizeAll(day.Activities)

	recs := TimeOfDayRecommendations{
		Morning:          morningRecommendations(day.Temp),
		Daytime:          daytimeRecommendations(day.Temp),
		Evening:          eveningRecommendations(day),
		ActivitySpecific: activityRecommendations(categories),
	}
	if day.Precipitation > 0 {
		wet := "Waterproof layer or compact umbrella; prefer quick-dry fabrics"
		recs.Morning = append(recs.Morning, wet)
		recs.Daytime = append(recs.Daytime, wet)
		recs.Evening = append(recs.Evening, wet)
	}

	return DailyRecommendation{
		Date: day.Date,
		WeatherDetails: WeatherDetails{
			Condition:     day.Condition,
			High:          day.Temp.High,
			Low:           day.Temp.Low,
			UVIndex:       day.UVIndex,
			Precipitation: day.Precipitation,
			Tips:          weatherTips(day),
		},
		Recommendations: recs,
		Priorities:      dayPriorities(day, categories),
	}
}

func morningRecommendations(temp Temperature) []string {
	switch {
	case temp.Low < coldMorningLowF:
		return []string{"Warm base layer under an insulated jacket", "Long pants and closed shoes"}
	case temp.Low < mildMorningLowF:
		return []string{"Long-sleeve top or light sweater", "Light jacket you can take off later"}
	default:
		return []string{"Breathable short-sleeve top", "Light pants or shorts"}
	}
}

func daytimeRecommendations(temp Temperature) []string {
	switch {
	case temp.High > warmDaytimeHighF:
		return []string{"Breathable, moisture-wicking clothing", "Sunglasses and a wide-brimmed hat", "Reapply sunscreen every two hours"}
	case temp.High < coldDaytimeHighF:
		return []string{"Keep the insulated jacket on", "Gloves and a warm hat"}
	default:
		return []string{"Comfortable layers you can adjust through the day"}
	}
}

func eveningRecommendations(day DayWeatherActivity) []string {
	var out []string
	switch {
	case day.Temp.Low < coldEveningLowF:
		out = append(out, "Warm coat for the cold evening")
	case day.Temp.Low < coolEveningLowF:
		out = append(out, "Add a light jacket or cardigan as it cools down")
	default:
		out = append(out, "Light, comfortable evening outfit")
	}
	for _, activity := range day.Activities {
		if strings.Contains(strings.ToLower(activity), "din") {
			out = append(out, "Smart-casual outfit for dinner")
			break
		}
	}
	return out
}

func activityRecommendations(categories []rules.Category) []string {
	var out []string
	if rules.HasCategory(categories, rules.CategorySwimming) {
		out = append(out, swimBundle...)
	}
	if rules.HasCategory(categories, rules.CategoryBusiness) {
		out = append(out, businessBundle...)
	}
	if rules.HasCategory(categories, rules.CategoryHiking) {
		out = append(out, hikingBundle...)
	}
	if rules.HasCategory(categories, rules.CategoryRunning) {
		out = append(out, runningBundle...)
	}
	return normalizeList(out)
}

func dayPriorities(day DayWeatherActivity, categories []rules.Category) []string {
	var out []string
	if day.UVIndex != nil && *day.UVIndex > priorityUV {
		out = append(out, fmt.Sprintf("High-SPF sunscreen (UV index %.0f)", *day.UVIndex))
	}
	if day.Precipitation > priorityRainMM {
		out = append(out, "Waterproof rain jacket")
	}
	if day.Temp.High > priorityHotHighF {
		out = append(out, "Extra water and cooling layers for the heat")
	}
	if day.Temp.Low < priorityColdLowF {
		out = append(out, "Insulated layers for the cold")
	}
	if rules.HasCategory(categories, rules.CategorySwimming) {
		out = append(out, "Swimwear")
	}
	if rules.HasCategory(categories, rules.CategoryBusiness) {
		out = append(out, "Professional attire")
	}
	if rules.HasCategory(categories, rules.CategoryHiking) {
		out = append(out, "Sturdy hiking footwear")
	}
	return normalizeList(out)
}

func weatherTips(day DayWeatherActivity) []string {
	tips := make([]string, 0, 3)
	if day.Temp.High-day.Temp.Low > layeringSwingF {
		tips = append(tips, "Large temperature swing today, dress in layers")
	}
	if day.UVIndex != nil && *day.UVIndex > middayUVLimit {
		tips = append(tips, "Very high UV, limit sun exposure between 10am and 4pm")
	}
	if day.Precipitation > 0 && day.Temp.High > humidRainHighF {
		tips = append(tips, "Warm and wet conditions, quick-dry fabrics will stay comfortable")
	}
	return tips
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
