package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roso1102/reboard/internal/intent"
	"github.com/roso1102/reboard/internal/model"
)

func comp(id, name, category string, reusability, price int, workingLayers ...model.LayerName) model.Component {
	layers := make(map[model.LayerName]model.LayerResult)
	for _, l := range model.AllLayers() {
		layers[l] = model.LayerResult{Outcome: model.OutcomeNotApplicable, Notes: "Not applicable"}
	}
	for _, l := range workingLayers {
		layers[l] = model.LayerResult{Applicable: true, Outcome: model.OutcomePass, Notes: "ok"}
	}
	return model.Component{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: 1,
		Status:   model.StatusListed,
		Diagnostic: model.DiagnosticResult{
			Reusability: reusability,
			Grade:       model.GradeFor(reusability),
			Layers:      layers,
			UseCases:    []string{"IoT", "Prototyping"},
		},
	}
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, mode)

	_, err = ParseSortMode("price-low")
	require.NoError(t, err)

	_, err = ParseSortMode("alphabetical")
	assert.Error(t, err)
}

func TestRankIntentScenario(t *testing.T) {
	catalog := []model.Component{
		comp("1", "ESP32 Board", "Microcontroller", 92, 300, model.LayerWiFi),
		comp("2", "DHT22", "Sensor", 60, 80),
		comp("3", "Arduino Nano", "Microcontroller", 75, 150),
	}
	features := intent.Extract("microcontroller with wifi for iot")
	require.True(t, features.HasIntent)

	ranked := Rank(catalog, Request{Intent: features, Sort: SortRelevance})
	require.Len(t, ranked, 3)

	assert.Equal(t, "1", ranked[0].ID, "layer, category and keyword matches win")
	assert.Equal(t, "3", ranked[1].ID, "category match beats no match")
	assert.Equal(t, "2", ranked[2].ID)
	assert.Greater(t, ranked[0].Relevance, ranked[1].Relevance)
	assert.Greater(t, ranked[1].Relevance, ranked[2].Relevance)
}

func TestRankLayerMatchDominates(t *testing.T) {
	x := comp("x", "Board X", "Microcontroller", 90, 100, model.LayerUART)
	y := comp("y", "Board Y", "Microcontroller", 40, 100, model.LayerUART)
	z := comp("z", "Board Z", "Driver", 90, 100)

	features := model.NewIntentFeatures()
	features.Layers[model.LayerUART] = true
	features.Categories["Microcontroller"] = true
	features.Keywords = []string{"uart"}
	features.HasIntent = true

	ranked := Rank([]model.Component{z, y, x}, Request{Intent: features})
	require.Len(t, ranked, 3)

	byID := map[string]model.RankedComponent{}
	for _, r := range ranked {
		byID[r.ID] = r
	}
	assert.GreaterOrEqual(t, byID["x"].Relevance, byID["y"].Relevance)
	assert.Greater(t, byID["y"].Relevance, byID["z"].Relevance)
	assert.Greater(t, byID["x"].Relevance, byID["z"].Relevance)
}

func TestRankScoreClamped(t *testing.T) {
	c := comp("1", "Dead Thing", "Sensor", 10, 50)

	features := model.NewIntentFeatures()
	features.Categories["Microcontroller"] = true
	features.Keywords = []string{"mcu"}
	features.HasIntent = true

	ranked := Rank([]model.Component{c}, Request{Intent: features})
	require.Len(t, ranked, 1)
	// -15 category, -10 grade D, +1 reusability would be negative.
	assert.Equal(t, 0, ranked[0].Relevance)
	assert.Empty(t, ranked[0].MatchReason)
}

func TestMatchReason(t *testing.T) {
	c := comp("1", "ESP32 Board", "Microcontroller", 92, 300, model.LayerWiFi, model.LayerGPIO)

	features := model.NewIntentFeatures()
	features.Layers[model.LayerWiFi] = true
	features.Layers[model.LayerGPIO] = true
	features.Categories["Microcontroller"] = true
	features.HasIntent = true

	ranked := Rank([]model.Component{c}, Request{Intent: features})
	require.Len(t, ranked, 1)
	reason := ranked[0].MatchReason
	assert.Contains(t, reason, "GPIO")
	assert.Contains(t, reason, "WiFi")
	assert.Contains(t, reason, "Microcontroller match")
	assert.Contains(t, reason, "grade A")
}

func TestFilterComposition(t *testing.T) {
	catalog := []model.Component{
		comp("1", "BME280", "Sensor", 90, 120),
		comp("2", "DHT22", "Sensor", 60, 80),
		comp("3", "ESP32", "Microcontroller", 95, 300),
	}

	want := []string{"1"}
	first := Rank(catalog, Request{Filter: Filter{Category: "Sensor", Grade: model.GradeA}})
	second := Rank(catalog, Request{Filter: Filter{Grade: model.GradeA, Category: "Sensor"}})

	require.Len(t, first, 1)
	assert.Equal(t, want[0], first[0].ID)
	assert.Equal(t, first, second, "filter order must not matter")
}

func TestFilterRanges(t *testing.T) {
	catalog := []model.Component{
		comp("cheap", "A", "Sensor", 60, 50),
		comp("mid", "B", "Sensor", 80, 150),
		comp("dear", "C", "Sensor", 95, 400),
	}

	ranked := Rank(catalog, Request{Filter: Filter{PriceMin: 100, PriceMax: 200}})
	require.Len(t, ranked, 1)
	assert.Equal(t, "mid", ranked[0].ID)

	ranked = Rank(catalog, Request{Filter: Filter{MinReusability: 75}})
	assert.Len(t, ranked, 2)

	ranked = Rank(catalog, Request{Filter: Filter{Location: "Pune"}})
	assert.Empty(t, ranked)
}

func TestPlainQueryFilter(t *testing.T) {
	catalog := []model.Component{
		comp("1", "ESP32 Board", "Microcontroller", 92, 300),
		comp("2", "DHT22", "Sensor", 60, 80),
	}

	ranked := Rank(catalog, Request{Query: "esp32"})
	require.Len(t, ranked, 1)
	assert.Equal(t, "1", ranked[0].ID)
	assert.Equal(t, neutralRelevance, ranked[0].Relevance)
	assert.Empty(t, ranked[0].MatchReason)

	// Use-case text is searched too.
	ranked = Rank(catalog, Request{Query: "prototyping"})
	assert.Len(t, ranked, 2)
}

func TestNoQueryPassesThrough(t *testing.T) {
	catalog := []model.Component{
		comp("1", "ESP32", "Microcontroller", 92, 300),
		comp("2", "DHT22", "Sensor", 60, 80),
	}
	ranked := Rank(catalog, Request{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "1", ranked[0].ID, "catalog order retained")
	assert.Equal(t, "2", ranked[1].ID)
}

func TestSortModes(t *testing.T) {
	catalog := []model.Component{
		comp("a", "A", "Sensor", 60, 300),
		comp("b", "B", "Sensor", 95, 100),
		comp("c", "C", "Sensor", 80, 200),
	}

	ids := func(rs []model.RankedComponent) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, ids(Rank(catalog, Request{Sort: SortPriceLow})))
	assert.Equal(t, []string{"a", "c", "b"}, ids(Rank(catalog, Request{Sort: SortPriceHigh})))
	assert.Equal(t, []string{"b", "c", "a"}, ids(Rank(catalog, Request{Sort: SortReusability})))
}

func TestStableTieBreak(t *testing.T) {
	catalog := []model.Component{
		comp("first", "Same", "Sensor", 60, 100),
		comp("second", "Same", "Sensor", 60, 100),
	}
	ranked := Rank(catalog, Request{Sort: SortPriceLow})
	require.Len(t, ranked, 2)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
}
