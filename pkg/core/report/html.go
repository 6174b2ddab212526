package report

import (
	"bytes"
	"fmt"
	"html/template"

	"screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/thesis"
	"screener_valuation/pkg/core/utils"
)

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 72rem; color: #1f2933; }
h1, h2 { color: #002147; }
table { border-collapse: collapse; margin: 0.5rem 0 1.5rem; }
th, td { border: 1px solid #d9e2ec; padding: 0.3rem 0.6rem; }
th { background: #f0f4f8; }
td { text-align: right; }
td:first-child { text-align: left; }
.grade { display: inline-block; padding: 0.2rem 0.6rem; border-radius: 4px; background: {{.Color}}; color: #fff; }
</style>
</head>
<body>
<p class="grade">{{.Grade}}</p>
{{.Body}}
</body>
</html>
`))

// HTML renders the report as a standalone page.
func HTML(r *analysis.Report) ([]byte, error) {
	body, err := utils.MarkdownToHTML([]byte(Markdown(r)))
	if err != nil {
		return nil, fmt.Errorf("failed to render report %s: %w", r.ID, err)
	}

	color := "#c0392b"
	if r.Verdict.Score >= thesis.PassScore {
		color = "#1e8449"
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Grade string
		Color template.CSS
		Body  template.HTML
	}{
		Title: r.Company,
		Grade: r.Verdict.Grade,
		Color: template.CSS(color),
		Body:  template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.Bytes(), nil
}
