// Package report renders a downloadable HTML diagnostic report for a
// graded component.
package report

import (
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/roso1102/reboard/internal/model"
)

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Diagnostic Report - {{.Component.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1a1a1a; }
h1 { margin-bottom: 0; }
.meta { color: #555; margin-bottom: 1.5rem; }
.grade { display: inline-block; padding: 0.2rem 0.8rem; border-radius: 4px; color: #fff; font-weight: bold; }
.grade-A { background: #1a7f37; }
.grade-B { background: #4f8f2f; }
.grade-C { background: #b58900; }
.grade-D { background: #b3261e; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
.fail { color: #b3261e; }
.pass { color: #1a7f37; }
.pinout { font-family: monospace; font-size: 0.8rem; background: #f6f6f6; padding: 1rem; border-radius: 4px; white-space: pre; }
.disclaimer { margin-top: 2rem; font-size: 0.85rem; color: #777; border-top: 1px solid #ccc; padding-top: 1rem; }
</style>
</head>
<body>
<h1>{{.Component.Name}}</h1>
<p class="meta">{{.Component.Category}}{{if .Component.ModelName}} &middot; {{.Component.ModelName}}{{end}} &middot; tested {{.Component.TestedAt.Format "2 Jan 2006"}}</p>

<p>
<span class="grade grade-{{.Diagnostic.Grade}}">Grade {{.Diagnostic.Grade}}</span>
&nbsp; Reusability: <strong>{{.Diagnostic.Reusability}}%</strong>
&nbsp; Source: {{.Diagnostic.Source}}
</p>

{{if .Diagnostic.Summary}}<p>{{.Diagnostic.Summary}}</p>{{end}}

<h2>Layer Results</h2>
<table>
<tr><th>Layer</th><th>Status</th><th>Notes</th></tr>
{{range .Layers}}
<tr>
<td>{{.Name}}</td>
<td class="{{if .Working}}pass{{else if .Failed}}fail{{end}}">{{.Outcome}}</td>
<td>{{.Notes}}</td>
</tr>
{{end}}
</table>

<h2>Suggested Use Cases</h2>
<ul>{{range .Diagnostic.UseCases}}<li>{{.}}</li>{{end}}</ul>

<h2>Risks</h2>
<ul>{{range .Diagnostic.Risks}}<li>{{.}}</li>{{end}}</ul>

<h2>Environmental Impact</h2>
<p>CO2 saved by reuse: {{.Diagnostic.CO2Saved}} &middot; Estimated value: {{.Diagnostic.EstimatedValue}}</p>

<h2>Recommendation</h2>
<p>{{.Diagnostic.Recommendation}}</p>

{{if .Circuit}}
<h2>Circuit / Pinout Reference</h2>
<pre class="pinout">{{.Circuit.Pinout}}</pre>
<table>
<tr><th>Pin</th><th>Function</th><th>Notes</th></tr>
{{range .Circuit.Pins}}
<tr><td>{{.Pin}}</td><td>{{.Function}}</td><td>{{.Notes}}</td></tr>
{{end}}
</table>
<p>Operating voltage: {{.Circuit.Voltage}}</p>
<ul>{{range .Circuit.KeySpecs}}<li>{{.}}</li>{{end}}</ul>
{{end}}

<p class="disclaimer">Generated by reboard.</p>
</body>
</html>
`

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

type layerRow struct {
	Name    model.LayerName
	Outcome model.LayerOutcome
	Notes   string
	Working bool
	Failed  bool
}

type reportData struct {
	Component  *model.Component
	Diagnostic *model.DiagnosticResult
	Layers     []layerRow
	Circuit    *model.CircuitReference
}

// RenderHTML writes the full diagnostic report for a component. Layers
// appear in their fixed order regardless of map iteration. A nil circuit
// omits the pinout panel.
func RenderHTML(w io.Writer, c *model.Component, circuit *model.CircuitReference) error {
	data := reportData{
		Component:  c,
		Diagnostic: &c.Diagnostic,
		Circuit:    circuit,
	}
	for _, name := range model.AllLayers() {
		lr := c.Diagnostic.Layers[name]
		data.Layers = append(data.Layers, layerRow{
			Name:    name,
			Outcome: lr.Outcome,
			Notes:   lr.Notes,
			Working: lr.Working(),
			Failed:  lr.Failed(),
		})
	}
	return eris.Wrap(tmpl.Execute(w, data), "report: render")
}
