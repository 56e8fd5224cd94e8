package export

import (
	"bytes"
	"html/template"
	"time"
)

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateHTML))

// TemplateData holds data for report template rendering
type TemplateData struct {
	Title       string
	Carrier     string
	GeneratedAt time.Time
	Rows        []TroubleRow
}

// RenderReportHTML renders the report template with provided data
func RenderReportHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 900px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.85em; }
    th { background: #f5f5f5; }
    .status-solved { color: #1a7f37; }
    .status-todo { color: #b35900; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{if .Carrier}}{{.Carrier}} | {{end}}{{.GeneratedAt.Format "Jan 2, 2006 15:04"}} | {{len .Rows}} codes</div>
  <table>
    <tr><th>Code</th><th>Carrier</th><th>Comment</th><th>Contributors</th><th>Result</th><th>Status</th></tr>
    {{range .Rows}}
    <tr>
      <td>{{.Code}}</td>
      <td>{{.Carrier}}</td>
      <td>{{.Comment}}</td>
      <td>{{range $i, $c := .Contributors}}{{if $i}}, {{end}}{{$c}}{{end}}</td>
      <td>{{.Result}}</td>
      <td class="{{if eq .Status "Solved"}}status-solved{{else}}status-todo{{end}}">{{.Status}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`
