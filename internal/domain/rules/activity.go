package rules

import (
	"sort"
	"strings"
)

// Category tags an activity for scoring purposes.
type Category string

const (
	CategorySwimming    Category = "swimming"
	CategoryBeach       Category = "beach"
	CategoryWaterSports Category = "water-sports"
	CategoryBusiness    Category = "business"
	CategoryFormal      Category = "formal"
	CategoryHiking      Category = "hiking"
	CategoryOutdoor     Category = "outdoor"
	CategorySports      Category = "sports"
	CategoryRunning     Category = "running"
	CategoryDining      Category = "dining"
	CategorySpa         Category = "spa"
	CategorySkiing      Category = "skiing"
	CategoryCasual      Category = "casual"
	CategoryTravel      Category = "travel"
)

type keywordRule struct {
	keywords []string
	tags     []Category
}

// Ordered; every matching row contributes its tags.
var keywordTable = []keywordRule{
	{keywords: []string{"swim", "beach", "water"}, tags: []Category{CategorySwimming, CategoryBeach}},
	{keywords: []string{"snorkel", "surf", "kayak", "dive", "diving", "sail"}, tags: []Category{CategoryWaterSports, CategorySwimming}},
	{keywords: []string{"business", "meeting", "conference"}, tags: []Category{CategoryBusiness, CategoryFormal}},
	{keywords: []string{"hik", "outdoor", "nature"}, tags: []Category{CategoryHiking, CategoryOutdoor, CategorySports}},
	{keywords: []string{"run", "gym", "sport"}, tags: []Category{CategorySports, CategoryRunning}},
	{keywords: []string{"din", "restaurant"}, tags: []Category{CategoryDining, CategoryFormal}},
	{keywords: []string{"sight", "museum"}, tags: []Category{CategoryCasual, CategoryTravel}},
	{keywords: []string{"spa", "massage"}, tags: []Category{CategorySpa}},
	{keywords: []string{"ski", "snowboard"}, tags: []Category{CategorySkiing, CategoryOutdoor}},
}

var knownCategories = map[Category]struct{}{
	CategorySwimming: {}, CategoryBeach: {}, CategoryWaterSports: {}, CategoryBusiness: {},
	CategoryFormal: {}, CategoryHiking: {}, CategoryOutdoor: {}, CategorySports: {},
	CategoryRunning: {}, CategoryDining: {}, CategorySpa: {}, CategorySkiing: {},
	CategoryCasual: {}, CategoryTravel: {},
}

// IsCategory reports whether s is a known category tag.
func IsCategory(s string) bool {
	_, ok := knownCategories[Category(s)]
	return ok
}

// Categorize maps one free-text activity to its category tags.
// Text that matches nothing is casual.
func Categorize(activity string) []Category {
	text := strings.ToLower(strings.TrimSpace(activity))
	set := make(map[Category]struct{})
	if text != "" {
		for _, rule := range keywordTable {
			if !ContainsAny(text, rule.keywords...) {
				continue
			}
			for _, tag := range rule.tags {
				set[tag] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return []Category{CategoryCasual}
	}
	return sortedCategories(set)
}

// CategorizeAll unions the categories of every activity. No activities means casual.
func CategorizeAll(activities []string) []Category {
	set := make(map[Category]struct{})
	for _, activity := range activities {
		for _, tag := range Categorize(activity) {
			set[tag] = struct{}{}
		}
	}
	if len(set) == 0 {
		return []Category{CategoryCasual}
	}
	return sortedCategories(set)
}

// HasCategory reports whether tag is present in categories.
func HasCategory(categories []Category, tag Category) bool {
	for _, c := range categories {
		if c == tag {
			return true
		}
	}
	return false
}

// ContainsAny reports whether text contains any of the substrings. text is expected lowercase.
func ContainsAny(text string, substrings ...string) bool {
	for _, s := range substrings {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func sortedCategories(set map[Category]struct{}) []Category {
	out := make([]Category, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
