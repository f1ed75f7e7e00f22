package model

// IntentFeatures is the structured interpretation of a buyer's free-text
// need. Built fresh per query, never persisted.
type IntentFeatures struct {
	Layers     map[LayerName]bool `json:"layers"`
	Categories map[string]bool    `json:"categories"`
	Keywords   []string           `json:"keywords"`
	HasIntent  bool               `json:"has_intent"`
}

// NewIntentFeatures returns an empty intent with allocated sets.
func NewIntentFeatures() IntentFeatures {
	return IntentFeatures{
		Layers:     make(map[LayerName]bool),
		Categories: make(map[string]bool),
	}
}

// Merge unions other into f, additively. Existing entries are kept; the
// merge never removes or overrides anything local.
func (f *IntentFeatures) Merge(other IntentFeatures) {
	for l := range other.Layers {
		f.Layers[l] = true
	}
	for c := range other.Categories {
		f.Categories[c] = true
	}
seen:
	for _, kw := range other.Keywords {
		for _, have := range f.Keywords {
			if have == kw {
				continue seen
			}
		}
		f.Keywords = append(f.Keywords, kw)
	}
	if len(f.Keywords) > 0 {
		f.HasIntent = true
	}
}

// RankedComponent is a component annotated by the ranking engine.
// MatchReason is empty when nothing matched, which omits it from JSON.
type RankedComponent struct {
	Component
	Relevance   int    `json:"relevance"`
	MatchReason string `json:"match_reason,omitempty"`
}
