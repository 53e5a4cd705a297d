package packing

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/packing-advisor/internal/domain/rules"
	apperrors "github.com/yanqian/packing-advisor/pkg/errors"
)

// AffinityAll is the affinity key applied regardless of weather or activity.
const AffinityAll = "all"

// CatalogItem is a candidate packing item with its scoring weights.
type CatalogItem struct {
	Name             string             `yaml:"name" json:"name"`
	BaseWeight       float64            `yaml:"baseWeight" json:"baseWeight"`
	WeatherAffinity  map[string]float64 `yaml:"weatherAffinity" json:"weatherAffinity,omitempty"`
	ActivityAffinity map[string]float64 `yaml:"activityAffinity" json:"activityAffinity,omitempty"`
	Priority         Priority           `yaml:"priority" json:"priority"`
}

// Catalog maps each packing list section to its candidate items.
type Catalog map[ItemCategory][]CatalogItem

// ParseCatalogYAML decodes and validates a catalog document.
func ParseCatalogYAML(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "parse catalog", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "invalid packing catalog", err)
	}
	return catalog, nil
}

// Validate rejects malformed rows. A failure here is a programming or configuration error.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return errors.New("catalog is empty")
	}
	var errs []error
	for category, items := range c {
		if !isItemCategory(category) {
			errs = append(errs, fmt.Errorf("unknown catalog category %q", category))
			continue
		}
		seen := make(map[string]struct{}, len(items))
		for i, item := range items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: name is required", category, i))
				continue
			}
			if _, dup := seen[strings.ToLower(name)]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate item %q", category, name))
			}
			seen[strings.ToLower(name)] = struct{}{}
			if item.BaseWeight < 0 {
				errs = append(errs, fmt.Errorf("%s/%s: baseWeight must not be negative", category, name))
			}
			if !isPriority(item.Priority) {
				errs = append(errs, fmt.Errorf("%s/%s: unknown priority %q", category, name, item.Priority))
			}
			for key := range item.WeatherAffinity {
				if !isWeatherKey(key) {
					errs = append(errs, fmt.Errorf("%s/%s: unknown weather affinity %q", category, name, key))
				}
			}
			for key := range item.ActivityAffinity {
				if !isActivityKey(key) {
					errs = append(errs, fmt.Errorf("%s/%s: unknown activity affinity %q", category, name, key))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func isItemCategory(c ItemCategory) bool {
	for _, known := range ItemCategories {
		if c == known {
			return true
		}
	}
	return false
}

func isPriority(p Priority) bool {
	switch p {
	case PriorityEssential, PriorityRecommended, PriorityOptional, PriorityConditional:
		return true
	}
	return false
}

func isWeatherKey(key string) bool {
	if key == AffinityAll {
		return true
	}
	switch rules.Bucket(key) {
	case rules.BucketHot, rules.BucketMild, rules.BucketCold:
		return true
	}
	_, ok := rules.ParseCondition(key)
	return ok
}

func isActivityKey(key string) bool {
	if key == AffinityAll || rules.IsCategory(key) {
		return true
	}
	switch TripType(key) {
	case TripBusiness, TripLeisure, TripAdventure:
		return true
	}
	return false
}

type weights = map[string]float64

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		CategoryTops: {
			{Name: "T-shirts", BaseWeight: 6, WeatherAffinity: weights{"hot": 2, "mild": 1.5, "sunny": 0.5}, ActivityAffinity: weights{"casual": 2, "travel": 1, "leisure": 1}, Priority: PriorityEssential},
			{Name: "Long-sleeve shirts", BaseWeight: 5, WeatherAffinity: weights{"mild": 2, "cold": 2, "cloudy": 0.5}, ActivityAffinity: weights{"casual": 1.5, "hiking": 1.5, "outdoor": 1}, Priority: PriorityRecommended},
			{Name: "Business shirts/blouses", BaseWeight: 3, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"business": 6, "formal": 3}, Priority: PriorityConditional},
			{Name: "Athletic tops", BaseWeight: 2, WeatherAffinity: weights{"hot": 1}, ActivityAffinity: weights{"sports": 4, "running": 3, "hiking": 2}, Priority: PriorityConditional},
			{Name: "Sweaters", BaseWeight: 3, WeatherAffinity: weights{"cold": 4, "mild": 1}, ActivityAffinity: weights{"casual": 1}, Priority: PriorityRecommended},
			{Name: "Thermal base layers", BaseWeight: 2, WeatherAffinity: weights{"cold": 5, "snowy": 3}, ActivityAffinity: weights{"skiing": 4, "hiking": 1}, Priority: PriorityConditional},
			{Name: "Swimwear", BaseWeight: 1, WeatherAffinity: weights{"hot": 2}, ActivityAffinity: weights{"swimming": 6, "beach": 4, "water-sports": 4, "spa": 3}, Priority: PriorityConditional},
		},
		CategoryBottoms: {
			{Name: "Pants/trousers", BaseWeight: 7, WeatherAffinity: weights{"mild": 1.5, "cold": 2}, ActivityAffinity: weights{"casual": 1, "travel": 1, "business": 1}, Priority: PriorityEssential},
			{Name: "Shorts", BaseWeight: 3, WeatherAffinity: weights{"hot": 3.5}, ActivityAffinity: weights{"casual": 1.5, "beach": 2, "hiking": 1, "sports": 1}, Priority: PriorityRecommended},
			{Name: "Dress pants/skirts", BaseWeight: 2, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"business": 5, "formal": 3, "dining": 1}, Priority: PriorityConditional},
			{Name: "Athletic shorts/leggings", BaseWeight: 2, ActivityAffinity: weights{"sports": 3, "running": 3, "hiking": 2}, Priority: PriorityConditional},
			{Name: "Jeans", BaseWeight: 5, WeatherAffinity: weights{"mild": 1.5, "cold": 1, "cloudy": 0.5}, ActivityAffinity: weights{"casual": 2, "dining": 0.5}, Priority: PriorityRecommended},
			{Name: "Thermal leggings", BaseWeight: 1, WeatherAffinity: weights{"cold": 5}, ActivityAffinity: weights{"skiing": 4}, Priority: PriorityConditional},
		},
		CategoryOuterwear: {
			{Name: "Light jacket", BaseWeight: 4, WeatherAffinity: weights{"mild": 3, "cloudy": 1}, ActivityAffinity: weights{"outdoor": 1, "dining": 1}, Priority: PriorityRecommended},
			{Name: "Rain jacket", BaseWeight: 2, WeatherAffinity: weights{"rainy": 5, "mixed": 2}, ActivityAffinity: weights{"hiking": 1.5, "outdoor": 1}, Priority: PriorityConditional},
			{Name: "Winter coat", BaseWeight: 2, WeatherAffinity: weights{"cold": 6, "snowy": 4}, ActivityAffinity: weights{"skiing": 3}, Priority: PriorityConditional},
			{Name: "Blazer", BaseWeight: 2, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"business": 5, "formal": 2}, Priority: PriorityConditional},
			{Name: "Fleece or hoodie", BaseWeight: 3, WeatherAffinity: weights{"cold": 3, "mild": 1.5}, ActivityAffinity: weights{"hiking": 2, "outdoor": 1, "casual": 0.5}, Priority: PriorityRecommended},
			{Name: "Waterproof shell", BaseWeight: 1, WeatherAffinity: weights{"rainy": 3, "snowy": 2}, ActivityAffinity: weights{"hiking": 3, "skiing": 3, "adventure": 2}, Priority: PriorityOptional},
		},
		CategoryFootwear: {
			{Name: "Walking shoes", BaseWeight: 9, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"casual": 2, "travel": 2, "hiking": 0.5}, Priority: PriorityEssential},
			{Name: "Dress shoes", BaseWeight: 2, ActivityAffinity: weights{"business": 5, "formal": 3}, Priority: PriorityConditional},
			{Name: "Sandals", BaseWeight: 2, WeatherAffinity: weights{"hot": 3, "sunny": 1}, ActivityAffinity: weights{"beach": 3, "swimming": 2, "casual": 0.5}, Priority: PriorityOptional},
			{Name: "Hiking boots", BaseWeight: 1, ActivityAffinity: weights{"hiking": 6, "outdoor": 2, "adventure": 3}, Priority: PriorityConditional},
			{Name: "Running shoes", BaseWeight: 1, ActivityAffinity: weights{"running": 6, "sports": 3}, Priority: PriorityConditional},
			{Name: "Waterproof boots", BaseWeight: 1, WeatherAffinity: weights{"rainy": 3, "snowy": 4}, ActivityAffinity: weights{"skiing": 3, "outdoor": 1}, Priority: PriorityConditional},
		},
		CategoryAccessories: {
			{Name: "Sunglasses", BaseWeight: 3, WeatherAffinity: weights{"hot": 2, "sunny": 2}, ActivityAffinity: weights{"beach": 2, "outdoor": 1}, Priority: PriorityRecommended},
			{Name: "Wide-brimmed hat", BaseWeight: 2, WeatherAffinity: weights{"hot": 2, "sunny": 1.5}, ActivityAffinity: weights{"beach": 2, "hiking": 1.5}, Priority: PriorityOptional},
			{Name: "Compact umbrella", BaseWeight: 1, WeatherAffinity: weights{"rainy": 4, "mixed": 2}, ActivityAffinity: weights{"business": 0.5}, Priority: PriorityConditional},
			{Name: "Winter gloves", BaseWeight: 1, WeatherAffinity: weights{"cold": 5, "snowy": 3}, ActivityAffinity: weights{"skiing": 4}, Priority: PriorityConditional},
			{Name: "Scarf", BaseWeight: 1, WeatherAffinity: weights{"cold": 4}, ActivityAffinity: weights{"formal": 0.5}, Priority: PriorityOptional},
			{Name: "Day backpack", BaseWeight: 4, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"hiking": 3, "travel": 2, "outdoor": 1.5}, Priority: PriorityRecommended},
			{Name: "Beach towel", BaseWeight: 1, WeatherAffinity: weights{"hot": 1}, ActivityAffinity: weights{"beach": 5, "swimming": 4}, Priority: PriorityConditional},
			{Name: "Belt", BaseWeight: 4, WeatherAffinity: weights{"all": 1}, ActivityAffinity: weights{"business": 2, "formal": 2}, Priority: PriorityOptional},
		},
		CategoryEssentials: {
			{Name: "Undergarments", BaseWeight: 12, Priority: PriorityEssential},
			{Name: "Socks", BaseWeight: 12, Priority: PriorityEssential},
			{Name: "Travel documents", BaseWeight: 12, Priority: PriorityEssential},
			{Name: "Toiletries kit", BaseWeight: 11.5, Priority: PriorityEssential},
			{Name: "Phone charger", BaseWeight: 11, Priority: PriorityEssential},
			{Name: "Medications", BaseWeight: 10.5, Priority: PriorityRecommended},
			{Name: "Sunscreen", BaseWeight: 3, WeatherAffinity: weights{"hot": 2, "sunny": 2}, ActivityAffinity: weights{"beach": 3, "swimming": 2, "outdoor": 1.5, "hiking": 1}, Priority: PriorityRecommended},
			{Name: "Reusable water bottle", BaseWeight: 4, WeatherAffinity: weights{"hot": 1.5}, ActivityAffinity: weights{"hiking": 3, "running": 2, "sports": 1.5, "outdoor": 1}, Priority: PriorityRecommended},
			{Name: "First aid kit", BaseWeight: 2, ActivityAffinity: weights{"hiking": 3, "outdoor": 2, "adventure": 4}, Priority: PriorityOptional},
			{Name: "Laptop and charger", BaseWeight: 2, ActivityAffinity: weights{"business": 5}, Priority: PriorityConditional},
		},
	}
}
