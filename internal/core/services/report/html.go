package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// HTMLRenderer writes the report as a standalone HTML page
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		tmpl: template.Must(template.New("report").Parse(htmlReportTemplate)),
	}
}

type htmlColumn struct {
	Name         string
	UniqueValues int
	NullCount    int
	MissingCount int
	Stats        []htmlStat
}

type htmlStat struct {
	Name  string
	Value string
}

type htmlView struct {
	RunID       string
	FileName    string
	GeneratedAt string
	TotalRows   int
	ValidRows   int
	InvalidRows int
	Columns     []htmlColumn
	Errors      []domain.ValidationError
}

// Render implements Renderer
func (r *HTMLRenderer) Render(w io.Writer, rep *Report) error {
	view := htmlView{
		RunID:       rep.RunID,
		FileName:    rep.FileName,
		GeneratedAt: rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		Errors:      rep.Errors,
	}

	if rep.Summary != nil {
		view.TotalRows = rep.Summary.TotalRows
		view.ValidRows = rep.Summary.ValidRows
		view.InvalidRows = rep.Summary.InvalidRows
		for _, col := range rep.Summary.ColumnStatistics {
			hc := htmlColumn{
				Name:         col.ColumnName,
				UniqueValues: col.UniqueValues,
				NullCount:    col.NullCount,
				MissingCount: col.MissingCount,
			}
			for _, name := range statOrder {
				if value, ok := col.Statistics[name]; ok {
					hc.Stats = append(hc.Stats, htmlStat{
						Name:  string(name),
						Value: fmt.Sprintf("%g", value),
					})
				}
			}
			view.Columns = append(view.Columns, hc)
		}
	}

	return r.tmpl.Execute(w, view)
}

// Format implements Renderer
func (r *HTMLRenderer) Format() string { return "html" }

// Extension implements Renderer
func (r *HTMLRenderer) Extension() string { return ".html" }

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Analysis Report - {{.FileName}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f0f0f0; }
.invalid { color: #b00020; }
</style>
</head>
<body>
<h1>Analysis Report</h1>
<p>File: <strong>{{.FileName}}</strong><br>
Run: {{.RunID}}<br>
Generated: {{.GeneratedAt}}</p>

<h2>Rows</h2>
<table>
<tr><th>Total</th><th>Valid</th><th>Invalid</th></tr>
<tr><td>{{.TotalRows}}</td><td>{{.ValidRows}}</td><td class="invalid">{{.InvalidRows}}</td></tr>
</table>

<h2>Columns</h2>
{{range .Columns}}
<h3>{{.Name}}</h3>
<table>
<tr><th>Unique</th><th>Null</th><th>Missing</th>{{range .Stats}}<th>{{.Name}}</th>{{end}}</tr>
<tr><td>{{.UniqueValues}}</td><td>{{.NullCount}}</td><td>{{.MissingCount}}</td>{{range .Stats}}<td>{{.Value}}</td>{{end}}</tr>
</table>
{{end}}

{{if .Errors}}
<h2>Validation Errors</h2>
<table>
<tr><th>Row</th><th>Column</th><th>Value</th><th>Message</th></tr>
{{range .Errors}}
<tr><td>{{.RowNumber}}</td><td>{{.ColumnName}}</td><td>{{.Value.String}}</td><td>{{.Message}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
