// Package diagnose turns raw per-layer test data, or the absence of it,
// into a graded diagnostic result.
package diagnose

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/model"
)

// layerEntry mirrors the uploaded test-data JSON for one layer. All metric
// fields are optional; pointers distinguish absent from zero.
type layerEntry struct {
	Tested          *bool    `json:"tested"`
	Result          string   `json:"result"`
	PinsWorking     *int     `json:"pinsWorking"`
	PinsTotal       *int     `json:"pinsTotal"`
	PinsFailed      []string `json:"pinsFailed"`
	Channels        *int     `json:"channels"`
	LinearityError  *float64 `json:"linearityError"`
	ChannelsWorking *int     `json:"channelsWorking"`
	ChannelsTotal   *int     `json:"channelsTotal"`
	DutyCycleAcc    *float64 `json:"dutyCycleAcc"`
	Integrity       *float64 `json:"integrity"`
	Loopback        string   `json:"loopback"`
	RSSI            *float64 `json:"rssi"`
	ThroughputMbps  *float64 `json:"throughputMbps"`
	IdleMa          *float64 `json:"idleMa"`
	VregV           *float64 `json:"vregV"`
	SleepUa         *float64 `json:"sleepUa"`
	DevicesFound    *int     `json:"devicesFound"`
}

// Interpret parses raw uploaded test data into normalized per-layer
// results. The JSON may key layers at the top level or under "layers".
// Returns (nil, false) when the text is not parseable; the caller is
// expected to fall back to heuristic grading, never to surface an error.
func Interpret(raw string) (map[model.LayerName]model.LayerResult, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		zap.L().Debug("diagnose: test data not parsed", zap.Error(err))
		return nil, false
	}

	src := doc
	if nested, ok := doc["layers"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			src = inner
		}
	}

	results := make(map[model.LayerName]model.LayerResult, len(model.AllLayers()))
	for _, name := range model.AllLayers() {
		raw, ok := src[string(name)]
		if !ok {
			results[name] = notApplicable()
			continue
		}
		// A pointer target distinguishes a JSON null entry, which means
		// the layer was never exercised, from an empty object.
		var entry *layerEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry == nil {
			results[name] = notApplicable()
			continue
		}
		if entry.Tested != nil && !*entry.Tested {
			results[name] = notApplicable()
			continue
		}
		results[name] = model.LayerResult{
			Applicable: true,
			Outcome:    outcomeFor(entry.Result),
			Notes:      layerNotes(*entry),
		}
	}
	return results, true
}

func notApplicable() model.LayerResult {
	return model.LayerResult{Outcome: model.OutcomeNotApplicable, Notes: "Not applicable"}
}

func outcomeFor(result string) model.LayerOutcome {
	switch strings.ToUpper(result) {
	case "PASS":
		return model.OutcomePass
	case "DEGRADED", "PARTIAL":
		return model.OutcomeDegraded
	case "FAIL":
		return model.OutcomeFail
	default:
		return model.OutcomeUnknown
	}
}

// layerNotes assembles a human-readable note from whichever metric fields
// are present, each with its fixed unit suffix, joined by ", ". Falls back
// to the raw result string, then an em dash.
func layerNotes(e layerEntry) string {
	var parts []string
	if e.PinsWorking != nil && e.PinsTotal != nil {
		parts = append(parts, fmt.Sprintf("%d/%d pins", *e.PinsWorking, *e.PinsTotal))
	}
	if len(e.PinsFailed) > 0 {
		parts = append(parts, "failed: "+strings.Join(e.PinsFailed, ", "))
	}
	if e.Channels != nil {
		parts = append(parts, fmt.Sprintf("%d ch", *e.Channels))
	}
	if e.LinearityError != nil {
		parts = append(parts, "err "+trimFloat(*e.LinearityError)+"%")
	}
	if e.ChannelsWorking != nil && e.ChannelsTotal != nil {
		parts = append(parts, fmt.Sprintf("%d/%d ch", *e.ChannelsWorking, *e.ChannelsTotal))
	}
	if e.DutyCycleAcc != nil {
		parts = append(parts, trimFloat(*e.DutyCycleAcc)+"% duty")
	}
	if e.Integrity != nil {
		parts = append(parts, trimFloat(*e.Integrity)+"% integrity")
	}
	if e.Loopback != "" {
		parts = append(parts, "loopback: "+e.Loopback)
	}
	if e.RSSI != nil {
		parts = append(parts, "RSSI "+trimFloat(*e.RSSI))
	}
	if e.ThroughputMbps != nil {
		parts = append(parts, trimFloat(*e.ThroughputMbps)+" Mbps")
	}
	if e.IdleMa != nil {
		parts = append(parts, trimFloat(*e.IdleMa)+"mA idle")
	}
	if e.VregV != nil {
		parts = append(parts, trimFloat(*e.VregV)+"V reg")
	}
	if e.SleepUa != nil {
		parts = append(parts, trimFloat(*e.SleepUa)+"µA sleep")
	}
	if e.DevicesFound != nil {
		parts = append(parts, fmt.Sprintf("%d devices", *e.DevicesFound))
	}

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if e.Result != "" {
		return e.Result
	}
	return "—"
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
