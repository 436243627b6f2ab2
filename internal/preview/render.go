// Package preview renders a notebook document to standalone HTML, close
// to what a third-party previewer shows after a sanitize pass.
package preview

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/nbtidy/internal/nbjson"
	"github.com/hpungsan/nbtidy/internal/notebook"
)

// renderedCell is one cell prepared for the page template.
type renderedCell struct {
	Type    string
	Body    template.HTML // markdown cells only
	Source  string        // code and raw cells
	Outputs []string      // textual output payloads of code cells
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 55rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.5; }
pre { background: #f6f8fa; padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
.cell { margin-bottom: 1rem; }
.cell-output pre { background: #fffbe6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Cells}}<div class="cell cell-{{.Type}}">
{{if eq .Type "markdown"}}{{.Body}}{{else}}<pre><code>{{.Source}}</code></pre>{{end}}
{{range .Outputs}}<div class="cell-output"><pre>{{.}}</pre></div>
{{end}}</div>
{{end}}</body>
</html>
`))

// Render produces the HTML page for a sanitized document and reports how
// many cells were rendered.
func Render(title string, doc *nbjson.Map) ([]byte, int, error) {
	var cells []any
	if v, ok := doc.Get("cells"); ok {
		cells, _ = v.([]any)
	}

	rendered := make([]renderedCell, 0, len(cells))
	for _, cv := range cells {
		cell, ok := cv.(*nbjson.Map)
		if !ok {
			continue
		}
		rendered = append(rendered, renderCell(cell))
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Cells []renderedCell
	}{Title: title, Cells: rendered})
	if err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(rendered), nil
}

func renderCell(cell *nbjson.Map) renderedCell {
	ctV, _ := cell.Get("cell_type")
	ct, _ := ctV.(string)

	source := ""
	if v, ok := cell.Get("source"); ok {
		source = notebook.ToString(v)
	}

	rc := renderedCell{Type: ct, Source: source}
	switch ct {
	case "markdown":
		rc.Body = renderMarkdown(source)
	case "code":
		rc.Outputs = textOutputs(cell)
	}
	return rc
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// textOutputs collects the textual payloads of a code cell's outputs.
// Rich non-text payloads (images, widgets) are skipped.
func textOutputs(cell *nbjson.Map) []string {
	outsV, ok := cell.Get("outputs")
	if !ok {
		return nil
	}
	outs, ok := outsV.([]any)
	if !ok {
		return nil
	}

	var texts []string
	for _, ov := range outs {
		out, ok := ov.(*nbjson.Map)
		if !ok {
			continue
		}
		otV, _ := out.Get("output_type")
		switch ot, _ := otV.(string); ot {
		case "stream":
			if v, ok := out.Get("text"); ok {
				texts = append(texts, notebook.ToString(v))
			}
		case "display_data", "execute_result":
			if dv, ok := out.Get("data"); ok {
				if data, ok := dv.(*nbjson.Map); ok {
					if plain, ok := data.Get("text/plain"); ok {
						texts = append(texts, notebook.ToString(plain))
					}
				}
			}
		case "error":
			if v, ok := out.Get("traceback"); ok {
				texts = append(texts, notebook.ToString(v))
			}
		}
	}
	return texts
}
