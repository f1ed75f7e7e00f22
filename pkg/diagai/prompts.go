package diagai

import "fmt"

const diagnosticSystemPrompt = `You are an electronic component diagnostic system for a circular economy platform that tests and grades electronic components for reuse. Always return ONLY valid JSON, no markdown.`

const diagnosticPromptTemplate = `Component: %s
Model: %s
Category: %s
%sGenerate a detailed diagnostic report in this exact JSON format (return ONLY valid JSON, no markdown):
{
  "reusability": <number 0-100>,
  "grade": "<A|B|C|D>",
  "summary": "<2-3 sentence summary of the component condition>",
  "layers": {
    "GPIO": { "working": <boolean>, "notes": "<brief note>" },
    "ADC": { "working": <boolean>, "notes": "<brief note>" },
    "PWM": { "working": <boolean>, "notes": "<brief note>" },
    "UART": { "working": <boolean>, "notes": "<brief note>" },
    "SPI": { "working": <boolean>, "notes": "<brief note>" },
    "I2C": { "working": <boolean>, "notes": "<brief note>" },
    "WiFi": { "working": <boolean>, "notes": "<brief note>" },
    "BLE": { "working": <boolean>, "notes": "<brief note>" },
    "Power": { "working": <boolean>, "notes": "<brief note>" }
  },
  "useCases": ["<use case 1>", "<use case 2>"],
  "risks": ["<risk 1>", "<risk 2>"],
  "co2Saved": "<estimated kg CO2 saved by reusing instead of discarding>",
  "estimatedValue": "<estimated INR value>",
  "recommendation": "<detailed 4-6 sentence recommendation covering what the component is best suited for now, limitations, and suggested testing before deployment>"
}

Be realistic based on the component type. If it is a sensor, WiFi/BLE should be false. Match the category to appropriate layer capabilities.`

func buildDiagnosticPrompt(componentType, modelName, category, testDataPreview string) string {
	if modelName == "" {
		modelName = "Unknown"
	}
	var preview string
	if testDataPreview != "" {
		preview = fmt.Sprintf("Test Data Sample:\n%s\n\n", testDataPreview)
	}
	return fmt.Sprintf(diagnosticPromptTemplate, componentType, modelName, category, preview)
}

const identifyPrompt = `Look at this electronic component image. Identify it and return ONLY valid JSON (no markdown):
{
  "modelName": "<identified model name>",
  "componentType": "<type like Microcontroller, Sensor, Driver, etc>",
  "category": "<category>",
  "confidence": "<high|medium|low>"
}`

const circuitPromptTemplate = `You are an electronics expert. For the component "%s", provide a detailed pin-out / circuit connection guide as ASCII art or structured text. Return ONLY valid JSON:
{
  "pinout": "<ASCII art or text diagram showing pin layout>",
  "pins": [
    { "pin": "<pin name>", "function": "<function>", "notes": "<notes>" }
  ],
  "voltage": "<operating voltage>",
  "keySpecs": ["<spec 1>", "<spec 2>", "<spec 3>"]
}`

func buildCircuitPrompt(componentType, modelName string) string {
	part := modelName
	if part == "" {
		part = componentType
	}
	return fmt.Sprintf(circuitPromptTemplate, part)
}

const intentPromptTemplate = `A buyer on an electronics-recovery marketplace described what they need:

"%s"

Extract their intent and return ONLY valid JSON (no markdown):
{
  "layers": ["<needed capability layers, from: GPIO, ADC, PWM, UART, SPI, I2C, WiFi, BLE, Power>"],
  "categories": ["<component categories, from: Microcontroller, Sensor, Driver, Communication, Power Module>"],
  "keywords": ["<short feature keywords>"]
}`

func buildIntentPrompt(query string) string {
	return fmt.Sprintf(intentPromptTemplate, query)
}
