package model

// CircuitPin describes one pin in a pinout reference table.
type CircuitPin struct {
	Pin      string `json:"pin"`
	Function string `json:"function"`
	Notes    string `json:"notes"`
}

// CircuitReference is a pin-out and wiring guide for a component type.
// Pinout holds a preformatted text diagram.
type CircuitReference struct {
	Pinout   string       `json:"pinout"`
	Pins     []CircuitPin `json:"pins"`
	Voltage  string       `json:"voltage"`
	KeySpecs []string     `json:"key_specs"`
	Source   ResultSource `json:"source"`
}
