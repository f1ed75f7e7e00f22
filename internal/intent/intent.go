// Package intent turns free-text buyer queries into structured feature
// intent. Local substring matching does the work; an optional external
// extractor fills in only when the local pass finds nothing.
package intent

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/seed"
)

// feature binds a semantic key to the layers and categories it implies
// and the query substrings that trigger it.
type feature struct {
	key        string
	layers     []model.LayerName
	categories []string
	terms      []string
}

// Fixed slice rather than a map so keyword order is stable across runs.
var features = []feature{
	{
		key:        "wifi",
		layers:     []model.LayerName{model.LayerWiFi},
		categories: []string{seed.CategoryMicrocontroller},
		terms:      []string{"wifi", "wi-fi", "wireless", "iot", "internet"},
	},
	{
		key:        "ble",
		layers:     []model.LayerName{model.LayerBLE},
		categories: []string{seed.CategoryMicrocontroller},
		terms:      []string{"ble", "bluetooth"},
	},
	{
		key:    "gpio",
		layers: []model.LayerName{model.LayerGPIO},
		terms:  []string{"gpio", "digital pin", "led", "button", "relay"},
	},
	{
		key:    "adc",
		layers: []model.LayerName{model.LayerADC},
		terms:  []string{"adc", "analog", "analogue"},
	},
	{
		key:    "pwm",
		layers: []model.LayerName{model.LayerPWM},
		terms:  []string{"pwm", "motor", "servo", "fan speed", "dimming"},
	},
	{
		key:    "uart",
		layers: []model.LayerName{model.LayerUART},
		terms:  []string{"uart", "serial"},
	},
	{
		key:    "spi",
		layers: []model.LayerName{model.LayerSPI},
		terms:  []string{"spi"},
	},
	{
		key:    "i2c",
		layers: []model.LayerName{model.LayerI2C},
		terms:  []string{"i2c", "iic", "twi"},
	},
	{
		key:        "mcu",
		categories: []string{seed.CategoryMicrocontroller},
		terms:      []string{"mcu", "microcontroller", "arduino", "esp32", "esp8266", "stm32", "dev board"},
	},
	{
		key:        "sensor",
		categories: []string{seed.CategorySensor},
		terms:      []string{"sensor", "sensing", "temperature", "humidity", "distance", "measure"},
	},
	{
		key:        "driver",
		layers:     []model.LayerName{model.LayerPWM},
		categories: []string{seed.CategoryDriver},
		terms:      []string{"driver", "h-bridge", "stepper"},
	},
	{
		key:        "comm",
		categories: []string{seed.CategoryCommunication},
		terms:      []string{"communication", "transceiver", "radio", "lora", "gsm", "nrf24"},
	},
	{
		key:        "power",
		layers:     []model.LayerName{model.LayerPower},
		categories: []string{seed.CategoryPowerModule},
		terms:      []string{"power", "regulator", "buck", "boost", "battery", "charging"},
	},
}

// Extract runs the local pass: pure case-insensitive substring matching
// against the feature table.
func Extract(query string) model.IntentFeatures {
	out := model.NewIntentFeatures()
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return out
	}

	for _, f := range features {
		matched := false
		for _, term := range f.terms {
			if strings.Contains(q, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, l := range f.layers {
			out.Layers[l] = true
		}
		for _, c := range f.categories {
			out.Categories[c] = true
		}
		out.Keywords = append(out.Keywords, f.key)
	}
	out.HasIntent = len(out.Keywords) > 0
	return out
}

// ExternalExtractor is the optional augmentation hook. A nil result means
// the external path is unavailable or failed.
type ExternalExtractor interface {
	ExtractIntent(ctx context.Context, query string) *model.IntentFeatures
}

// Extractor combines the local pass with optional external augmentation.
// Only one external request matters at a time: a newer query supersedes
// an older in-flight one, and the stale response is discarded when it
// finally arrives.
type Extractor struct {
	external ExternalExtractor

	mu  sync.Mutex
	seq uint64
}

// NewExtractor builds an Extractor; external may be nil.
func NewExtractor(external ExternalExtractor) *Extractor {
	return &Extractor{external: external}
}

// Extract parses a query. The external extractor is consulted only when
// the local pass found no intent, and its result is merged additively so
// local findings always win.
func (e *Extractor) Extract(ctx context.Context, query string) model.IntentFeatures {
	local := Extract(query)
	if local.HasIntent || e.external == nil {
		return local
	}

	e.mu.Lock()
	e.seq++
	myTurn := e.seq
	e.mu.Unlock()

	augmented := e.external.ExtractIntent(ctx, query)

	e.mu.Lock()
	stale := myTurn != e.seq
	e.mu.Unlock()
	if stale {
		zap.L().Debug("intent: discarding superseded external result", zap.String("query", query))
		return local
	}
	if augmented == nil {
		return local
	}

	local.Merge(*augmented)
	return local
}
