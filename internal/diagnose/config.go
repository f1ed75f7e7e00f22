package diagnose

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/roso1102/reboard/internal/model"
)

// Config holds the tunable tables of the grading engine. The grade
// thresholds themselves are fixed in the model package and are not
// configurable.
type Config struct {
	// MaxRisks caps the risk list built from failed/degraded layers.
	MaxRisks int

	// HeuristicBase and HeuristicSpread shape the deterministic no-data
	// score: base + seed%spread.
	HeuristicBase   int
	HeuristicSpread int

	// Display tables keyed by grade.
	CO2ByGrade   map[model.Grade]string
	ValueByGrade map[model.Grade]string
}

// DefaultConfig returns the grading tables used in production.
func DefaultConfig() Config {
	return Config{
		MaxRisks:        6,
		HeuristicBase:   55,
		HeuristicSpread: 30,
		CO2ByGrade: map[model.Grade]string{
			model.GradeA: "~0.6 kg",
			model.GradeB: "~0.4 kg",
			model.GradeC: "~0.1 kg",
			model.GradeD: "~0 kg (salvage only)",
		},
		ValueByGrade: map[model.Grade]string{
			model.GradeA: "₹300–500",
			model.GradeB: "₹150–300",
			model.GradeC: "₹50–150",
			model.GradeD: "₹0–50 (parts only)",
		},
	}
}

// ValidateConfig checks that a grading config is internally consistent.
func ValidateConfig(c Config) error {
	var errs []string

	if c.MaxRisks <= 0 {
		errs = append(errs, "max_risks must be > 0")
	}
	if c.HeuristicBase < 0 || c.HeuristicBase > 100 {
		errs = append(errs, "heuristic_base must be between 0 and 100")
	}
	if c.HeuristicSpread <= 0 {
		errs = append(errs, "heuristic_spread must be > 0")
	}
	if c.HeuristicBase+c.HeuristicSpread-1 > 100 {
		errs = append(errs, "heuristic_base + heuristic_spread must stay within 100")
	}
	for _, g := range []model.Grade{model.GradeA, model.GradeB, model.GradeC, model.GradeD} {
		if c.CO2ByGrade[g] == "" {
			errs = append(errs, fmt.Sprintf("co2 table missing grade %s", g))
		}
		if c.ValueByGrade[g] == "" {
			errs = append(errs, fmt.Sprintf("value table missing grade %s", g))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("diagnose: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
