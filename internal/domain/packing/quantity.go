package packing

import (
	"math"
	"strings"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

// Score cut-offs for doubling an item. Carry-on packs tighter than checked luggage.
const (
	carryOnDoubleAbove = 18.0
	checkedDoubleAbove = 15.0
	layerDoubleAbove   = 25.0

	carryOnEssentialTopsMax = 3
	checkedEssentialTopsMax = 4
	carryOnBottomsMax       = 2
	checkedBottomsMax       = 3
)

var dailyChangeKeywords = []string{"underwear", "undergarment", "socks"}

// Allocate converts an item's average score into a quantity for the trip.
func Allocate(item CatalogItem, score float64, trip TripContext, category ItemCategory) int {
	duration := trip.Duration
	if duration < 1 {
		duration = 1
	}
	carryOn := trip.IsCarryOn()

	switch category {
	case CategoryEssentials:
		if rules.ContainsAny(strings.ToLower(item.Name), dailyChangeKeywords...) {
			return duration + 1
		}
		return 1
	case CategoryFootwear:
		if carryOn {
			return doubleAbove(score, carryOnDoubleAbove)
		}
		return doubleAbove(score, checkedDoubleAbove)
	case CategoryTops:
		essential := item.Priority == PriorityEssential
		switch {
		case carryOn && essential:
			return min(int(math.Ceil(float64(duration)*0.8)), carryOnEssentialTopsMax)
		case carryOn:
			return doubleAbove(score, carryOnDoubleAbove)
		case essential:
			return min(duration, checkedEssentialTopsMax)
		default:
			return doubleAbove(score, checkedDoubleAbove)
		}
	case CategoryBottoms:
		half := int(math.Ceil(float64(duration) / 2))
		if carryOn {
			return min(carryOnBottomsMax, half)
		}
		return min(checkedBottomsMax, half+1)
	case CategoryOuterwear, CategoryAccessories:
		return doubleAbove(score, layerDoubleAbove)
	default:
		return 1
	}
}

func doubleAbove(score, threshold float64) int {
	if score > threshold {
		return 2
	}
	return 1
}
