// Package seed holds the built-in known-component table used for category
// inference and the heuristic grading path. A YAML override file can
// replace the table at load time.
package seed

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// KnownComponent is one entry of the part table.
type KnownComponent struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

// Table is a loaded part table with derived lookup structures.
type Table struct {
	Components []KnownComponent
	categories map[string]string // lowercased name → category
}

// Catalog categories recognized by the platform.
const (
	CategoryMicrocontroller = "Microcontroller"
	CategorySensor          = "Sensor"
	CategoryDriver          = "Driver"
	CategoryCommunication   = "Communication"
	CategoryPowerModule     = "Power Module"
)

// Categories returns all recognized categories in display order.
func Categories() []string {
	return []string{
		CategoryMicrocontroller, CategorySensor, CategoryDriver,
		CategoryCommunication, CategoryPowerModule,
	}
}

// Default returns the compiled-in part table.
func Default() *Table {
	return newTable([]KnownComponent{
		{Name: "ESP32-WROOM-32", Label: "ESP32-WROOM-32", Category: CategoryMicrocontroller},
		{Name: "ESP8266", Label: "NodeMCU ESP8266", Category: CategoryMicrocontroller},
		{Name: "STM32F103C8", Label: "STM32F103C8 (Blue Pill)", Category: CategoryMicrocontroller},
		{Name: "Arduino Nano", Label: "Arduino Nano", Category: CategoryMicrocontroller},
		{Name: "Arduino Uno", Label: "Arduino Uno", Category: CategoryMicrocontroller},
		{Name: "ATmega328P", Label: "ATmega328P (bare)", Category: CategoryMicrocontroller},
		{Name: "Raspberry Pi Pico", Label: "Raspberry Pi Pico", Category: CategoryMicrocontroller},
		{Name: "DHT22", Label: "DHT22 Temperature & Humidity", Category: CategorySensor},
		{Name: "DHT11", Label: "DHT11 Temperature & Humidity", Category: CategorySensor},
		{Name: "MPU6050", Label: "MPU6050 IMU (Gyro + Accel)", Category: CategorySensor},
		{Name: "BME280", Label: "BME280 Environmental Sensor", Category: CategorySensor},
		{Name: "HC-SR04", Label: "HC-SR04 Ultrasonic Sensor", Category: CategorySensor},
		{Name: "L298N", Label: "L298N Dual H-Bridge Driver", Category: CategoryDriver},
		{Name: "A4988", Label: "A4988 Stepper Driver", Category: CategoryDriver},
		{Name: "DRV8825", Label: "DRV8825 Stepper Driver", Category: CategoryDriver},
		{Name: "HC-05", Label: "HC-05 Bluetooth Module", Category: CategoryCommunication},
		{Name: "NRF24L01", Label: "NRF24L01 2.4GHz Radio", Category: CategoryCommunication},
		{Name: "SIM800L", Label: "SIM800L GSM Module", Category: CategoryCommunication},
		{Name: "LM2596", Label: "LM2596 Buck Converter", Category: CategoryPowerModule},
		{Name: "AMS1117", Label: "AMS1117 3.3V Regulator", Category: CategoryPowerModule},
		{Name: "TP4056", Label: "TP4056 Li-ion Charger", Category: CategoryPowerModule},
	})
}

// LoadFile reads a part table from a YAML file shaped as
// {components: [{name, label, category}, ...]}.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read table %s", path)
	}
	var wrapper struct {
		Components []KnownComponent `yaml:"components"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "seed: parse table")
	}
	if len(wrapper.Components) == 0 {
		return nil, eris.Errorf("seed: table %s has no components", path)
	}
	return newTable(wrapper.Components), nil
}

func newTable(components []KnownComponent) *Table {
	t := &Table{
		Components: components,
		categories: make(map[string]string, len(components)),
	}
	for _, c := range components {
		t.categories[strings.ToLower(c.Name)] = c.Category
	}
	return t
}

// categoryHints maps name substrings to categories, checked in order after
// the known-part table. The microcontroller default matches the original
// platform behavior for unrecognized parts.
var categoryHints = []struct {
	category string
	terms    []string
}{
	{CategorySensor, []string{"sensor", "dht", "bme", "mpu", "hc-sr", "ldr", "pir"}},
	{CategoryDriver, []string{"driver", "motor", "h-bridge", "l298", "a4988", "drv"}},
	{CategoryCommunication, []string{"bluetooth", "wifi", "nrf", "gsm", "lora", "sim"}},
	{CategoryPowerModule, []string{"buck", "boost", "ldo", "regulator", "charger", "power", "lm25", "ams", "tp40"}},
}

// InferCategory guesses the catalog category for a component name, first
// by table lookup (either direction of substring containment, matching how
// partial entries like "ESP32" resolve), then by name hints.
func (t *Table) InferCategory(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryMicrocontroller
	}
	for key, cat := range t.categories {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return cat
		}
	}
	for _, hint := range categoryHints {
		for _, term := range hint.terms {
			if strings.Contains(lower, term) {
				return hint.category
			}
		}
	}
	return CategoryMicrocontroller
}

// Wireless part-name patterns used by the heuristic grading path.
var (
	wifiPatterns = []string{"esp32", "esp8266"}
	blePatterns  = []string{"esp32"}
)

// HasWiFi reports whether the part name matches a known WiFi-capable part.
func HasWiFi(name string) bool {
	return containsAny(strings.ToLower(name), wifiPatterns...)
}

// HasBLE reports whether the part name matches a known BLE-capable part.
func HasBLE(name string) bool {
	return containsAny(strings.ToLower(name), blePatterns...)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
