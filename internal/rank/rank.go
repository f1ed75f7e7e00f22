// Package rank scores and orders catalog components against buyer intent
// and hard filters.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/roso1102/reboard/internal/model"
)

// SortMode selects the result ordering.
type SortMode string

const (
	SortRelevance   SortMode = "relevance"
	SortPriceLow    SortMode = "price-low"
	SortPriceHigh   SortMode = "price-high"
	SortReusability SortMode = "reusability"
)

// ParseSortMode validates a sort mode string; empty defaults to relevance.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceLow, SortPriceHigh, SortReusability:
		return SortMode(s), nil
	default:
		return "", eris.Errorf("rank: unknown sort mode %q", s)
	}
}

// Filter holds optional hard filters, AND-combined. Zero values mean
// "no constraint"; PriceMax of 0 is treated as unset.
type Filter struct {
	Category       string
	Grade          model.Grade
	PriceMin       int
	PriceMax       int
	MinReusability int
	Location       string
}

func (f Filter) matches(c *model.Component) bool {
	if f.Category != "" && !strings.EqualFold(c.Category, f.Category) {
		return false
	}
	if f.Grade != "" && c.Diagnostic.Grade != f.Grade {
		return false
	}
	if f.PriceMin > 0 && c.Price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && c.Price > f.PriceMax {
		return false
	}
	if f.MinReusability > 0 && c.Diagnostic.Reusability < f.MinReusability {
		return false
	}
	if f.Location != "" && !strings.EqualFold(c.Location, f.Location) {
		return false
	}
	return true
}

// Request bundles one ranking invocation.
type Request struct {
	Query  string
	Intent model.IntentFeatures
	Filter Filter
	Sort   SortMode
}

// neutralRelevance is assigned when no intent scoring is meaningful.
const neutralRelevance = 50

// Rank filters, scores and sorts the catalog. The input slice is not
// modified; an empty result means nothing matched, which is not an error.
func Rank(catalog []model.Component, req Request) []model.RankedComponent {
	out := make([]model.RankedComponent, 0, len(catalog))

	for i := range catalog {
		c := catalog[i]
		if !req.Filter.matches(&c) {
			continue
		}

		if req.Intent.HasIntent {
			score, reason := scoreIntent(&c, req.Intent)
			out = append(out, model.RankedComponent{Component: c, Relevance: score, MatchReason: reason})
			continue
		}

		// Plain filter semantics: substring match, no scoring.
		if q := strings.TrimSpace(req.Query); q != "" && !plainMatch(&c, q) {
			continue
		}
		out = append(out, model.RankedComponent{Component: c, Relevance: neutralRelevance})
	}

	sortRanked(out, req.Sort)
	return out
}

// scoreIntent computes the additive relevance score and the human match
// reason. The reason is empty when nothing matched.
func scoreIntent(c *model.Component, intent model.IntentFeatures) (int, string) {
	score := 0
	var matchedLayers []string

	for _, l := range model.AllLayers() {
		if intent.Layers[l] && c.HasLayer(l) {
			score += 20
			matchedLayers = append(matchedLayers, string(l))
		}
	}

	categoryMatched := false
	if len(intent.Categories) > 0 {
		if intent.Categories[c.Category] {
			score += 25
			categoryMatched = true
		} else {
			score -= 15
		}
	}

	name := strings.ToLower(c.Name)
	for _, kw := range intent.Keywords {
		if strings.Contains(name, kw) {
			score += 10
		}
		for _, uc := range c.Diagnostic.UseCases {
			if strings.Contains(strings.ToLower(uc), kw) {
				score += 8
			}
		}
	}

	switch c.Diagnostic.Grade {
	case model.GradeA:
		score += 5
	case model.GradeB:
		score += 3
	case model.GradeD:
		score -= 10
	}

	score += int(math.Round(float64(c.Diagnostic.Reusability) / 20))

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, matchReason(c, matchedLayers, categoryMatched)
}

func matchReason(c *model.Component, layers []string, categoryMatched bool) string {
	var parts []string
	if len(layers) > 0 {
		parts = append(parts, "has "+strings.Join(layers, ", "))
	}
	if categoryMatched {
		parts = append(parts, c.Category+" match")
	}
	if len(parts) == 0 {
		return ""
	}
	if c.Diagnostic.Grade.AtLeast(model.GradeB) {
		parts = append(parts, fmt.Sprintf("grade %s", c.Diagnostic.Grade))
	}
	return strings.Join(parts, "; ")
}

func plainMatch(c *model.Component, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Category), q) {
		return true
	}
	for _, uc := range c.Diagnostic.UseCases {
		if strings.Contains(strings.ToLower(uc), q) {
			return true
		}
	}
	return false
}

// sortRanked orders results by the requested mode. Sorting is stable so
// ties keep catalog order.
func sortRanked(items []model.RankedComponent, mode SortMode) {
	switch mode {
	case SortPriceLow:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case SortPriceHigh:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case SortReusability:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Diagnostic.Reusability > items[j].Diagnostic.Reusability
		})
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Relevance > items[j].Relevance })
	}
}
