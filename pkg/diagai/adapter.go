package diagai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/roso1102/reboard/internal/model"
)

// Meta describes the component a diagnosis is requested for.
type Meta struct {
	ComponentType string
	ModelName     string
	Category      string
}

// Identification is the reply to a photo identification request.
type Identification struct {
	ModelName     string `json:"modelName"`
	ComponentType string `json:"componentType"`
	Category      string `json:"category"`
	Confidence    string `json:"confidence"`
}

// Options configures the adapter.
type Options struct {
	Model     string
	MaxTokens int64
	Timeout   time.Duration
	// RequestsPerSecond limits outbound calls; zero disables limiting.
	RequestsPerSecond float64
}

// Adapter wraps the external service behind the contract the core relies
// on: a nil result means "unavailable, use the deterministic fallback".
// There is no retry; a single failed or timed-out attempt goes straight
// to nil.
type Adapter struct {
	client  Client
	opts    Options
	limiter *rate.Limiter
}

// New creates an Adapter. A nil client yields a permanently unavailable
// adapter, which is the unconfigured (no API key) state.
func New(client Client, opts Options) *Adapter {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	a := &Adapter{client: client, opts: opts}
	if opts.RequestsPerSecond > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return a
}

// Available reports whether the external service is configured.
func (a *Adapter) Available() bool {
	return a != nil && a.client != nil
}

// Diagnose requests an external diagnosis for a component, optionally
// with a test-data preview and a photo (raw base64 or data URL). Returns
// nil whenever the service is unavailable, errors, times out, or replies
// with something that does not parse; the caller must fall back.
func (a *Adapter) Diagnose(ctx context.Context, meta Meta, testDataPreview, photo string) *model.DiagnosticResult {
	raw := a.call(ctx, diagnosticSystemPrompt,
		buildDiagnosticPrompt(meta.ComponentType, meta.ModelName, meta.Category, testDataPreview), photo)
	if raw == "" {
		return nil
	}

	var reply struct {
		Reusability    *int     `json:"reusability"`
		Grade          string   `json:"grade"`
		Summary        string   `json:"summary"`
		Layers         map[string]struct {
			Working bool   `json:"working"`
			Notes   string `json:"notes"`
		} `json:"layers"`
		UseCases       []string `json:"useCases"`
		Risks          []string `json:"risks"`
		CO2Saved       string   `json:"co2Saved"`
		EstimatedValue string   `json:"estimatedValue"`
		Recommendation string   `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &reply); err != nil {
		zap.L().Warn("diagai: diagnosis reply not parseable", zap.Error(err))
		return nil
	}

	// The external schema has no degraded/not-applicable distinction:
	// working collapses to pass, anything else to fail.
	layers := make(map[model.LayerName]model.LayerResult, len(model.AllLayers()))
	for _, name := range model.AllLayers() {
		entry, ok := reply.Layers[string(name)]
		if !ok {
			layers[name] = model.LayerResult{Outcome: model.OutcomeNotApplicable, Notes: "Not applicable"}
			continue
		}
		outcome := model.OutcomeFail
		if entry.Working {
			outcome = model.OutcomePass
		}
		notes := entry.Notes
		if notes == "" {
			if entry.Working {
				notes = "OK"
			} else {
				notes = "N/A"
			}
		}
		layers[name] = model.LayerResult{Applicable: true, Outcome: outcome, Notes: notes}
	}

	// Defaults guarantee the score/grade invariant even on a sparse
	// reply; the grade is always re-derived from the score.
	reusability := 70
	if reply.Reusability != nil {
		reusability = clampScore(*reply.Reusability)
	}

	useCases := reply.UseCases
	if len(useCases) == 0 {
		useCases = []string{"General Purpose"}
	}

	recommendation := strings.TrimSpace(reply.Recommendation)
	if !strings.HasSuffix(recommendation, model.Disclaimer) {
		if recommendation != "" {
			recommendation += " "
		}
		recommendation += model.Disclaimer
	}

	result := &model.DiagnosticResult{
		Summary:        reply.Summary,
		Layers:         layers,
		Reusability:    reusability,
		Grade:          model.GradeFor(reusability),
		UseCases:       useCases,
		Risks:          reply.Risks,
		CO2Saved:       reply.CO2Saved,
		EstimatedValue: reply.EstimatedValue,
		Recommendation: recommendation,
		Source:         model.SourceExternal,
	}

	zap.L().Info("diagai: external diagnosis accepted",
		zap.String("component", meta.ComponentType),
		zap.Int("reusability", result.Reusability),
		zap.String("grade", string(result.Grade)),
	)
	return result
}

// Identify asks the service to identify a component from a photo.
func (a *Adapter) Identify(ctx context.Context, photo string) *Identification {
	raw := a.call(ctx, "", identifyPrompt, photo)
	if raw == "" {
		return nil
	}
	var ident Identification
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &ident); err != nil {
		zap.L().Warn("diagai: identify reply not parseable", zap.Error(err))
		return nil
	}
	if ident.ComponentType == "" && ident.ModelName == "" {
		return nil
	}
	return &ident
}

// Circuit asks the service for a pin-out reference for a component type.
// Returns nil on any failure; callers fall back to the generic diagram.
func (a *Adapter) Circuit(ctx context.Context, meta Meta) *model.CircuitReference {
	raw := a.call(ctx, "", buildCircuitPrompt(meta.ComponentType, meta.ModelName), "")
	if raw == "" {
		return nil
	}

	var reply struct {
		Pinout   string `json:"pinout"`
		Pins     []struct {
			Pin      string `json:"pin"`
			Function string `json:"function"`
			Notes    string `json:"notes"`
		} `json:"pins"`
		Voltage  string   `json:"voltage"`
		KeySpecs []string `json:"keySpecs"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &reply); err != nil {
		zap.L().Warn("diagai: circuit reply not parseable", zap.Error(err))
		return nil
	}
	if reply.Pinout == "" && len(reply.Pins) == 0 {
		return nil
	}

	ref := &model.CircuitReference{
		Pinout:   reply.Pinout,
		Voltage:  reply.Voltage,
		KeySpecs: reply.KeySpecs,
		Source:   model.SourceExternal,
	}
	for _, p := range reply.Pins {
		ref.Pins = append(ref.Pins, model.CircuitPin{Pin: p.Pin, Function: p.Function, Notes: p.Notes})
	}
	return ref
}

// ExtractIntent asks the service to read structured buyer intent out of a
// free-text project description.
func (a *Adapter) ExtractIntent(ctx context.Context, query string) *model.IntentFeatures {
	raw := a.call(ctx, "", buildIntentPrompt(query), "")
	if raw == "" {
		return nil
	}

	var reply struct {
		Layers     []string `json:"layers"`
		Categories []string `json:"categories"`
		Keywords   []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &reply); err != nil {
		zap.L().Warn("diagai: intent reply not parseable", zap.Error(err))
		return nil
	}

	features := model.NewIntentFeatures()
	for _, l := range reply.Layers {
		name, ok := model.ParseLayer(l)
		if !ok {
			zap.L().Debug("diagai: dropping unknown layer from intent reply", zap.String("layer", l))
			continue
		}
		features.Layers[name] = true
	}
	for _, c := range reply.Categories {
		if c = strings.TrimSpace(c); c != "" {
			features.Categories[c] = true
		}
	}
	features.Keywords = reply.Keywords
	features.HasIntent = len(features.Keywords) > 0
	return &features
}

// call runs one bounded request and returns the raw reply text, or ""
// on any failure.
func (a *Adapter) call(ctx context.Context, system, prompt, photo string) string {
	if !a.Available() {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			zap.L().Warn("diagai: rate limit wait aborted", zap.Error(err))
			return ""
		}
	}

	msg := Message{Role: "user", Content: prompt}
	if photo != "" {
		msg.ImageMediaType, msg.ImageBase64 = parseDataURL(photo)
	}

	resp, err := a.client.CreateMessage(ctx, MessageRequest{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		System:    system,
		Messages:  []Message{msg},
	})
	if err != nil {
		zap.L().Warn("diagai: request failed", zap.Error(err))
		return ""
	}
	return extractText(resp)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
