package packing

import "math"

var luggageCapacity = map[LuggageSize]int{
	LuggageCarryOn:  25,
	LuggageStandard: 40,
	LuggageChecked:  60,
}

const (
	defaultLuggageCapacity = 40

	tightUtilization = 85.0
	overUtilization  = 90.0
)

// EstimateLuggage reports how much of the luggage the list fills, with packing tips.
func EstimateLuggage(list PackingList, trip TripContext) LuggageOptimization {
	capacity, ok := luggageCapacity[trip.LuggageSize]
	if !ok {
		capacity = defaultLuggageCapacity
	}
	utilization := math.Min(100, float64(list.TotalItems())/float64(capacity)*100)

	tips := make([]string, 0, 5)
	if utilization > tightUtilization {
		tips = append(tips,
			"Roll clothes instead of folding them to save space",
			"Use packing cubes to compress and organise items",
			"Pack heavy items at the bottom, close to the wheels",
		)
	}
	if trip.IsCarryOn() {
		tips = append(tips,
			"Keep liquids in containers of 100ml or less inside a clear bag",
			"Wear your heaviest shoes and jacket while travelling",
		)
	}

	alternatives := make([]string, 0, 2)
	if utilization > overUtilization {
		alternatives = append(alternatives,
			"Consider checking a bag for this trip",
			"Buy bulky consumables such as toiletries at your destination",
		)
	}

	return LuggageOptimization{
		SpaceUtilization: math.Round(utilization*10) / 10,
		PackingTips:      tips,
		Alternatives:     alternatives,
	}
}
