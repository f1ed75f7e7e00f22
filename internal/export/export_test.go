package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/roso1102/reboard/internal/model"
)

func sampleComponent() model.Component {
	layers := make(map[model.LayerName]model.LayerResult)
	for _, l := range model.AllLayers() {
		layers[l] = model.LayerResult{Outcome: model.OutcomeNotApplicable, Notes: "Not applicable"}
	}
	layers[model.LayerGPIO] = model.LayerResult{Applicable: true, Outcome: model.OutcomePass, Notes: "30/30 pins"}
	layers[model.LayerWiFi] = model.LayerResult{Applicable: true, Outcome: model.OutcomePass, Notes: "RSSI -45"}

	return model.Component{
		ID:       "comp-1",
		Name:     "ESP32-WROOM-32",
		Category: "Microcontroller",
		Price:    300,
		Quantity: 2,
		Status:   model.StatusListed,
		Diagnostic: model.DiagnosticResult{
			Layers:      layers,
			Reusability: 92,
			Grade:       model.GradeA,
			UseCases:    []string{"IoT", "Prototyping"},
			CO2Saved:    "~0.6 kg",
		},
		TestedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestComponentsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, Components(path, []model.Component{sampleComponent()}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Components"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0]
	assert.Equal(t, "ID", header.Cells[0].String())
	assert.Equal(t, "Grade", header.Cells[4].String())

	row := sheet.Rows[1]
	assert.Equal(t, "comp-1", row.Cells[0].String())
	assert.Equal(t, "ESP32-WROOM-32", row.Cells[1].String())
	assert.Equal(t, "A", row.Cells[4].String())
	assert.Equal(t, "92", row.Cells[5].String())
	assert.Equal(t, "GPIO, WiFi", row.Cells[10].String())
	assert.Equal(t, "IoT, Prototyping", row.Cells[11].String())
}

func TestOrdersOneRowPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	orders := []model.Order{{
		ID:    "order-1",
		Buyer: "ada",
		Items: []model.OrderItem{
			{ComponentID: "c1", Name: "ESP32", Grade: model.GradeA, Price: 300, Quantity: 2},
			{ComponentID: "c2", Name: "DHT22", Grade: model.GradeC, Price: 80, Quantity: 1},
		},
		Total:    680,
		Status:   model.OrderConfirmed,
		PlacedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, Orders(path, orders))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheet["Orders"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "order-1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "ESP32", sheet.Rows[1].Cells[3].String())
	assert.Equal(t, "600", sheet.Rows[1].Cells[7].String())
	assert.Equal(t, "DHT22", sheet.Rows[2].Cells[3].String())
}

func TestEmptyExports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Components(filepath.Join(dir, "empty.xlsx"), nil))
	require.NoError(t, Orders(filepath.Join(dir, "none.xlsx"), nil))
}
