package diagnose

import (
	"fmt"
	"strings"

	"github.com/roso1102/reboard/internal/model"
)

const fallbackPinoutTemplate = `      ┌──────────┐
 VCC ─┤1       8├─ GND
  IO ─┤2       7├─ TX
  IO ─┤3       6├─ RX
 RST ─┤4       5├─ EN
      └──────────┘
        %s`

// FallbackCircuit returns a generic pin-out reference for a component
// type. It is deterministic and covers the common 8-pin module layout;
// the external service provides part-specific diagrams when configured.
func FallbackCircuit(componentType string) model.CircuitReference {
	name := strings.ToUpper(componentType)
	if name == "" {
		name = "COMPONENT"
	}
	return model.CircuitReference{
		Pinout: fmt.Sprintf(fallbackPinoutTemplate, name),
		Pins: []model.CircuitPin{
			{Pin: "VCC", Function: "Power Input", Notes: "3.3V / 5V"},
			{Pin: "GND", Function: "Ground", Notes: "Common ground"},
			{Pin: "TX", Function: "Transmit", Notes: "UART output"},
			{Pin: "RX", Function: "Receive", Notes: "UART input"},
			{Pin: "RST", Function: "Reset", Notes: "Active low"},
			{Pin: "EN", Function: "Enable", Notes: "Active high"},
		},
		Voltage: "3.3V – 5V",
		KeySpecs: []string{
			name + " module",
			"Standard pinout",
			"See datasheet for full specs",
		},
		Source: model.SourceFallback,
	}
}
