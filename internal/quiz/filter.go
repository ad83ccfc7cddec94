// Package quiz selects practice questions and tracks attempts, sessions and mastery.
package quiz

import (
	"sort"
	"strings"

	"jeopardy-trainer-go/internal/services"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

var allowedGameTypes = map[string]bool{
	"kids":    true,
	"teen":    true,
	"college": true,
}

func AllowedGameTypes() []string {
	return []string{"college", "kids", "teen"}
}

// Filter narrows the selectable question set. Empty fields mean no restriction.
type Filter struct {
	Category  string
	GameTypes []string
}

func NewFilter(category string, gameTypes []string) Filter {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	return Filter{Category: category, GameTypes: normalizeTags(gameTypes)}
}

// Key is a stable signature used for count caching.
func (f Filter) Key() string {
	return "cat=" + f.Category + "|types=" + strings.Join(f.GameTypes, ",")
}

// ParseGameTypes splits a comma-separated query value and validates every tag.
func ParseGameTypes(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return ValidateGameTypes(strings.Split(raw, ","))
}

func ValidateGameTypes(tags []string) ([]string, error) {
	out := normalizeTags(tags)
	for _, tag := range out {
		if !allowedGameTypes[tag] {
			return nil, services.ErrBadRequest("Invalid game type: " + tag)
		}
	}
	return out, nil
}

func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
