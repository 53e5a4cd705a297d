package packing

import (
	"math"
	"sort"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
)

const (
	// A day only counts toward an item's average when the item scores above this.
	relevantDayScore = 8.0
	// An item's average over relevant days must exceed this to be listed.
	inclusionScore = 10.0
)

var carryOnCaps = map[ItemCategory]int{
	CategoryTops:        4,
	CategoryBottoms:     3,
	CategoryOuterwear:   2,
	CategoryFootwear:    2,
	CategoryAccessories: 3,
	CategoryEssentials:  6,
}

const defaultCarryOnCap = 5

// CarryOnCap returns the maximum number of entries a carry-on list keeps for category.
func CarryOnCap(category ItemCategory) int {
	if limit, ok := carryOnCaps[category]; ok {
		return limit
	}
	return defaultCarryOnCap
}

// Engine builds packing lists from an immutable catalog. It is safe for concurrent use.
type Engine struct {
	catalog Catalog
}

// NewEngine validates the catalog and returns an engine over it.
func NewEngine(catalog Catalog) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "invalid packing catalog", err)
	}
	return &Engine{catalog: catalog}, nil
}

type rankedItem struct {
	item ScoredItem
	avg  float64
}

// Assemble scores every catalog item across the trip days and returns the packing list.
func (e *Engine) Assemble(days []DayWeatherActivity, trip TripContext) PackingList {
	dayCategories := make([][]rules.Category, len(days))
	for i, day := range days {
		dayCategories[i] = rules.CategorizeAll(day.Activities)
	}

	var list PackingList
	for _, category := range ItemCategories {
		ranked := make([]rankedItem, 0, len(e.catalog[category]))
		for _, item := range e.catalog[category] {
			var (
				total    float64
				relevant int
				signals  reasonSignals
			)
			for i, day := range days {
				dayScore := Score(item, day, dayCategories[i], trip.TripTypes)
				if dayScore <= relevantDayScore {
					continue
				}
				total += dayScore
				relevant++
				signals.collect(item, day, dayCategories[i], trip.TripTypes)
			}
			if relevant == 0 {
				continue
			}

			avg := total / float64(relevant)
			quantity := Allocate(item, avg, trip, category)
			if quantity <= 0 || avg <= inclusionScore {
				continue
			}
			ranked = append(ranked, rankedItem{
				item: ScoredItem{
					Name:     item.Name,
					Quantity: quantity,
					Priority: item.Priority,
					Reason:   signals.reason(item.Priority),
					Score:    math.Round(avg*100) / 100,
				},
				avg: avg,
			})
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].avg > ranked[j].avg
		})
		if trip.IsCarryOn() {
			if limit := CarryOnCap(category); len(ranked) > limit {
				ranked = ranked[:limit]
			}
		}

		items := make([]ScoredItem, 0, len(ranked))
		for _, r := range ranked {
			items = append(items, r.item)
		}
		list.set(category, items)
	}
	return list
}
