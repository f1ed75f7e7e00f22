// Package model defines the shared data types of the grading and
// marketplace engine.
package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// LayerName identifies one testable capability layer of a component.
// The set is closed: every subsystem works over exactly these nine layers.
type LayerName string

const (
	LayerGPIO  LayerName = "GPIO"
	LayerADC   LayerName = "ADC"
	LayerPWM   LayerName = "PWM"
	LayerUART  LayerName = "UART"
	LayerSPI   LayerName = "SPI"
	LayerI2C   LayerName = "I2C"
	LayerWiFi  LayerName = "WiFi"
	LayerBLE   LayerName = "BLE"
	LayerPower LayerName = "Power"
)

// AllLayers returns the fixed, ordered layer set.
func AllLayers() []LayerName {
	return []LayerName{
		LayerGPIO, LayerADC, LayerPWM, LayerUART, LayerSPI,
		LayerI2C, LayerWiFi, LayerBLE, LayerPower,
	}
}

// ParseLayer resolves a layer name case-insensitively.
// Returns ("", false) for anything outside the fixed set.
func ParseLayer(s string) (LayerName, bool) {
	for _, l := range AllLayers() {
		if strings.EqualFold(string(l), s) {
			return l, true
		}
	}
	return "", false
}

// LayerOutcome is the normalized per-layer test verdict.
type LayerOutcome string

const (
	OutcomePass          LayerOutcome = "pass"
	OutcomeDegraded      LayerOutcome = "degraded"
	OutcomeFail          LayerOutcome = "fail"
	OutcomeUnknown       LayerOutcome = "unknown"
	OutcomeNotApplicable LayerOutcome = "not_applicable"
)

// LayerResult is the normalized result for a single layer.
type LayerResult struct {
	Applicable bool         `json:"applicable"`
	Outcome    LayerOutcome `json:"outcome"`
	Notes      string       `json:"notes"`
}

// Working reports whether the layer is usable (pass or degraded).
func (r LayerResult) Working() bool {
	return r.Outcome == OutcomePass || r.Outcome == OutcomeDegraded
}

// Failed reports whether the layer failed outright.
func (r LayerResult) Failed() bool {
	return r.Outcome == OutcomeFail
}

// Grade is the letter summary of overall functional health.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Grade thresholds, inclusive lower bounds on the reusability score.
const (
	GradeAMin = 85
	GradeBMin = 70
	GradeCMin = 55
)

// GradeFor maps a reusability score to its grade. This is the single
// source of truth for the score/grade invariant; no code path may set
// the two independently.
func GradeFor(reusability int) Grade {
	switch {
	case reusability >= GradeAMin:
		return GradeA
	case reusability >= GradeBMin:
		return GradeB
	case reusability >= GradeCMin:
		return GradeC
	default:
		return GradeD
	}
}

// Rank orders grades A < B < C < D for comparisons like "grade B or better".
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 0
	case GradeB:
		return 1
	case GradeC:
		return 2
	default:
		return 3
	}
}

// AtLeast reports whether g is the given grade or better.
func (g Grade) AtLeast(other Grade) bool {
	return g.Rank() <= other.Rank()
}

// ResultSource flags where a DiagnosticResult came from.
type ResultSource string

const (
	SourceFallback ResultSource = "fallback"
	SourceExternal ResultSource = "external"
)

// Disclaimer is the fixed safety sentence that terminates every
// recommendation, regardless of result source.
const Disclaimer = "Disclaimer: This assessment is generated via automated diagnostics and intelligent analysis. It should not be relied upon for safety-critical, medical, aerospace, or life-support applications. Always perform independent verification and compliance testing before deploying in production environments."

// DiagnosticResult is the canonical graded-component payload.
type DiagnosticResult struct {
	Summary        string                    `json:"summary"`
	Layers         map[LayerName]LayerResult `json:"layers"`
	Reusability    int                       `json:"reusability"`
	Grade          Grade                     `json:"grade"`
	UseCases       []string                  `json:"use_cases"`
	Risks          []string                  `json:"risks"`
	CO2Saved       string                    `json:"co2_saved"`
	EstimatedValue string                    `json:"estimated_value"`
	Recommendation string                    `json:"recommendation"`
	Source         ResultSource              `json:"source"`
}

// Validate checks the structural invariants of a diagnostic result:
// reusability in [0,100] and consistent with the grade, only known layer
// names, and the disclaimer present on the recommendation.
func (d *DiagnosticResult) Validate() error {
	var errs []string

	if d.Reusability < 0 || d.Reusability > 100 {
		errs = append(errs, fmt.Sprintf("reusability %d out of range", d.Reusability))
	}
	if want := GradeFor(d.Reusability); d.Grade != want {
		errs = append(errs, fmt.Sprintf("grade %s inconsistent with reusability %d (want %s)", d.Grade, d.Reusability, want))
	}
	for name := range d.Layers {
		if _, ok := ParseLayer(string(name)); !ok {
			errs = append(errs, fmt.Sprintf("unknown layer %q", name))
		}
	}
	if !strings.HasSuffix(d.Recommendation, Disclaimer) {
		errs = append(errs, "recommendation missing disclaimer")
	}

	if len(errs) > 0 {
		return eris.Errorf("model: invalid diagnostic result: %s", strings.Join(errs, "; "))
	}
	return nil
}

// WorkingLayers returns the names of usable layers in fixed layer order.
func (d *DiagnosticResult) WorkingLayers() []LayerName {
	var out []LayerName
	for _, name := range AllLayers() {
		if d.Layers[name].Working() {
			out = append(out, name)
		}
	}
	return out
}
