package packing

import (
	"time"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

// TripType is the declared purpose of a trip.
type TripType string

const (
	TripBusiness  TripType = "business"
	TripLeisure   TripType = "leisure"
	TripAdventure TripType = "adventure"
)

// LuggageSize is the luggage class the traveller is packing into.
type LuggageSize string

const (
	LuggageCarryOn        LuggageSize = "carry-on"
	LuggageBackpack       LuggageSize = "backpack"
	LuggageMediumSuitcase LuggageSize = "medium-suitcase"
	LuggageLargeSuitcase  LuggageSize = "large-suitcase"
	LuggageChecked        LuggageSize = "checked"
	LuggageStandard       LuggageSize = "standard"
)

// ItemCategory is a section of the packing list.
type ItemCategory string

const (
	CategoryTops        ItemCategory = "tops"
	CategoryBottoms     ItemCategory = "bottoms"
	CategoryOuterwear   ItemCategory = "outerwear"
	CategoryFootwear    ItemCategory = "footwear"
	CategoryAccessories ItemCategory = "accessories"
	CategoryEssentials  ItemCategory = "essentials"
)

// ItemCategories lists packing list sections in display order.
var ItemCategories = []ItemCategory{
	CategoryTops,
	CategoryBottoms,
	CategoryOuterwear,
	CategoryFootwear,
	CategoryAccessories,
	CategoryEssentials,
}

// Priority ranks how strongly an item should be packed.
type Priority string

const (
	PriorityEssential   Priority = "essential"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
	PriorityConditional Priority = "conditional"
)

// Temperature is a daily range in °F.
type Temperature struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// DayWeatherActivity is one trip day: its weather and what the traveller plans to do.
type DayWeatherActivity struct {
	Date          string          `json:"date"`
	Condition     rules.Condition `json:"condition"`
	Temp          Temperature     `json:"temp"`
	UVIndex       *float64        `json:"uvIndex,omitempty"`
	Precipitation float64         `json:"precipitation"`
	Activities    []string        `json:"activities"`
}

// TripContext is everything the engine needs about a trip.
type TripContext struct {
	Destination string               `json:"destination"`
	Duration    int                  `json:"duration"`
	TripTypes   []TripType           `json:"tripTypes"`
	LuggageSize LuggageSize          `json:"luggageSize"`
	DailyData   []DayWeatherActivity `json:"dailyData"`
}

// IsCarryOn reports whether the trip packs into carry-on luggage.
func (t TripContext) IsCarryOn() bool {
	return t.LuggageSize == LuggageCarryOn
}

// ScoredItem is a catalog item selected for the packing list.
type ScoredItem struct {
	Name     string   `json:"item"`
	Quantity int      `json:"quantity"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
	Score    float64  `json:"score"`
}

// PackingList holds the six fixed sections of a packing list.
type PackingList struct {
	Tops        []ScoredItem `json:"tops"`
	Bottoms     []ScoredItem `json:"bottoms"`
	Outerwear   []ScoredItem `json:"outerwear"`
	Footwear    []ScoredItem `json:"footwear"`
	Accessories []ScoredItem `json:"accessories"`
	Essentials  []ScoredItem `json:"essentials"`
}

// Items returns the entries of one section.
func (p PackingList) Items(category ItemCategory) []ScoredItem {
	switch category {
	case CategoryTops:
		return p.Tops
	case CategoryBottoms:
		return p.Bottoms
	case CategoryOuterwear:
		return p.Outerwear
	case CategoryFootwear:
		return p.Footwear
	case CategoryAccessories:
		return p.Accessories
	case CategoryEssentials:
		return p.Essentials
	default:
		return nil
	}
}

func (p *PackingList) set(category ItemCategory, items []ScoredItem) {
	switch category {
	case CategoryTops:
		p.Tops = items
	case CategoryBottoms:
		p.Bottoms = items
	case CategoryOuterwear:
		p.Outerwear = items
	case CategoryFootwear:
		p.Footwear = items
	case CategoryAccessories:
		p.Accessories = items
	case CategoryEssentials:
		p.Essentials = items
	}
}

// TotalItems counts entries across every section.
func (p PackingList) TotalItems() int {
	total := 0
	for _, category := range ItemCategories {
		total += len(p.Items(category))
	}
	return total
}

// LuggageOptimization summarises how full the luggage will be.
type LuggageOptimization struct {
	SpaceUtilization float64  `json:"spaceUtilization"`
	PackingTips      []string `json:"packingTips"`
	Alternatives     []string `json:"alternatives"`
}

// TimeOfDayRecommendations are the text suggestions for one day.
type TimeOfDayRecommendations struct {
	Morning          []string `json:"morning"`
	Daytime          []string `json:"daytime"`
	Evening          []string `json:"evening"`
	ActivitySpecific []string `json:"activitySpecific"`
}

// WeatherDetails echoes the day's weather with advisory tips.
type WeatherDetails struct {
	Condition     rules.Condition `json:"condition"`
	High          float64         `json:"high"`
	Low           float64         `json:"low"`
	UVIndex       *float64        `json:"uvIndex,omitempty"`
	Precipitation float64         `json:"precipitation"`
	Tips          []string        `json:"tips"`
}

// DailyRecommendation is the day card shown alongside the packing list.
type DailyRecommendation struct {
	Date            string                   `json:"date"`
	WeatherDetails  WeatherDetails           `json:"weatherDetails"`
	Recommendations TimeOfDayRecommendations `json:"recommendations"`
	Priorities      []string                 `json:"priorities"`
}

// Request is the payload accepted by the packing service. Activities holds one list per trip day.
type Request struct {
	Destination string     `json:"destination" validate:"required,max=200"`
	StartDate   string     `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Duration    int        `json:"duration" validate:"required,min=1"`
	TripTypes   []string   `json:"tripTypes,omitempty"`
	LuggageSize string     `json:"luggageSize,omitempty"`
	Activities  [][]string `json:"activities,omitempty"`
}

// Response is serialized back to API consumers.
type Response struct {
	Destination   string                `json:"destination"`
	Duration      int                   `json:"duration"`
	TripTypes     []TripType            `json:"tripTypes"`
	LuggageSize   LuggageSize           `json:"luggageSize"`
	WeatherSource string                `json:"weatherSource"`
	Location      forecast.Location     `json:"location"`
	PackingList   PackingList           `json:"packingList"`
	Daily         []DailyRecommendation `json:"daily"`
	Luggage       LuggageOptimization   `json:"luggage"`
}

// Config wires runtime settings for the packing domain.
type Config struct {
	MaxDuration int
	// WeatherBudget caps the whole forecast lookup, retries included. Zero disables the cap.
	WeatherBudget time.Duration
}
