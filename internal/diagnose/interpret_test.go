package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roso1102/reboard/internal/model"
)

func TestInterpretNotJSON(t *testing.T) {
	_, ok := Interpret("GPIO ok, everything fine")
	assert.False(t, ok)

	_, ok = Interpret("")
	assert.False(t, ok)
}

func TestInterpretTopLevelAndNested(t *testing.T) {
	flat := `{"GPIO": {"tested": true, "result": "PASS"}}`
	nested := `{"layers": {"GPIO": {"tested": true, "result": "PASS"}}}`

	for _, raw := range []string{flat, nested} {
		layers, ok := Interpret(raw)
		require.True(t, ok)
		assert.Equal(t, model.OutcomePass, layers[model.LayerGPIO].Outcome)
		assert.True(t, layers[model.LayerGPIO].Applicable)
	}
}

func TestInterpretOutcomes(t *testing.T) {
	raw := `{
		"GPIO": {"tested": true, "result": "pass"},
		"ADC":  {"tested": true, "result": "DEGRADED"},
		"PWM":  {"tested": true, "result": "Partial"},
		"UART": {"tested": true, "result": "FAIL"},
		"SPI":  {"tested": true, "result": "flaky"},
		"I2C":  {"tested": false}
	}`
	layers, ok := Interpret(raw)
	require.True(t, ok)

	assert.Equal(t, model.OutcomePass, layers[model.LayerGPIO].Outcome)
	assert.Equal(t, model.OutcomeDegraded, layers[model.LayerADC].Outcome)
	assert.Equal(t, model.OutcomeDegraded, layers[model.LayerPWM].Outcome)
	assert.Equal(t, model.OutcomeFail, layers[model.LayerUART].Outcome)

	// Unknown results count as tested but neither working nor failed.
	unknown := layers[model.LayerSPI]
	assert.True(t, unknown.Applicable)
	assert.Equal(t, model.OutcomeUnknown, unknown.Outcome)
	assert.False(t, unknown.Working())
	assert.False(t, unknown.Failed())

	// tested:false and absent keys are both not applicable.
	assert.Equal(t, model.OutcomeNotApplicable, layers[model.LayerI2C].Outcome)
	assert.Equal(t, "Not applicable", layers[model.LayerI2C].Notes)
	assert.Equal(t, model.OutcomeNotApplicable, layers[model.LayerWiFi].Outcome)
}

func TestInterpretNullEntry(t *testing.T) {
	raw := `{"GPIO": {"tested": true, "result": "PASS"}, "WiFi": null}`
	layers, ok := Interpret(raw)
	require.True(t, ok)

	// A null layer entry means untested, same as an absent key. It must
	// not be counted as applicable or it would drag the score down.
	null := layers[model.LayerWiFi]
	assert.False(t, null.Applicable)
	assert.Equal(t, model.OutcomeNotApplicable, null.Outcome)
	assert.Equal(t, "Not applicable", null.Notes)
	assert.Equal(t, model.OutcomePass, layers[model.LayerGPIO].Outcome)
}

func TestInterpretNotes(t *testing.T) {
	raw := `{
		"GPIO": {"tested": true, "result": "DEGRADED", "pinsWorking": 28, "pinsTotal": 30, "pinsFailed": ["D12", "D13"]},
		"ADC":  {"tested": true, "result": "PASS", "channels": 8, "linearityError": 1.5},
		"PWM":  {"tested": true, "result": "PASS", "channelsWorking": 15, "channelsTotal": 16, "dutyCycleAcc": 99.2},
		"UART": {"tested": true, "result": "PASS", "loopback": "clean", "integrity": 100},
		"WiFi": {"tested": true, "result": "PASS", "rssi": -45, "throughputMbps": 18.5},
		"Power": {"tested": true, "result": "PASS", "idleMa": 42, "vregV": 3.3, "sleepUa": 11},
		"I2C":  {"tested": true, "result": "PASS", "devicesFound": 2},
		"SPI":  {"tested": true, "result": "PASS"},
		"BLE":  {"tested": true}
	}`
	layers, ok := Interpret(raw)
	require.True(t, ok)

	assert.Equal(t, "28/30 pins, failed: D12, D13", layers[model.LayerGPIO].Notes)
	assert.Equal(t, "8 ch, err 1.5%", layers[model.LayerADC].Notes)
	assert.Equal(t, "15/16 ch, 99.2% duty", layers[model.LayerPWM].Notes)
	assert.Equal(t, "100% integrity, loopback: clean", layers[model.LayerUART].Notes)
	assert.Equal(t, "RSSI -45, 18.5 Mbps", layers[model.LayerWiFi].Notes)
	assert.Equal(t, "42mA idle, 3.3V reg, 11µA sleep", layers[model.LayerPower].Notes)
	assert.Equal(t, "2 devices", layers[model.LayerI2C].Notes)

	// No metrics: fall back to the raw result string, then an em dash.
	assert.Equal(t, "PASS", layers[model.LayerSPI].Notes)
	assert.Equal(t, "—", layers[model.LayerBLE].Notes)
}

func TestInterpretIdempotent(t *testing.T) {
	raw := `{"GPIO": {"tested": true, "result": "PASS", "pinsWorking": 30, "pinsTotal": 30},
		"WiFi": {"tested": true, "result": "FAIL", "rssi": -90}}`

	first, ok := Interpret(raw)
	require.True(t, ok)
	second, ok := Interpret(raw)
	require.True(t, ok)
	assert.Equal(t, first, second)
}
