package exporttemplate

import (
	"context"
	"errors"
	"html/template"
	"io"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
)

// DefaultMaxBufferedRows bounds template buffering by default.
const DefaultMaxBufferedRows = 10000

// DefaultTemplateName names the built-in table template.
const DefaultTemplateName = "export"

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Renderer renders export rows as an HTML document.
type Renderer struct {
	Templates    TemplateExecutor
	TemplateName string
	MaxRows      int
	Now          func() time.Time
}

// TemplateData is the context passed to templates.
type TemplateData struct {
	Title     string     `json:"title"`
	Generated string     `json:"generated"`
	Landscape bool       `json:"landscape"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	RowCount  int        `json:"row_count"`
}

var defaultTemplates = template.Must(template.New(DefaultTemplateName).Parse(defaultTemplate))

// Render buffers rows, formats each cell for display and executes the template.
func (r Renderer) Render(ctx context.Context, schema export.Schema, rows export.RowIterator, w io.Writer, opts export.RenderOptions) (export.RenderStats, error) {
	formatter, err := export.NewFormatContext(opts.Format)
	if err != nil {
		return export.RenderStats{}, err
	}

	maxRows := r.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxBufferedRows
	}

	data := TemplateData{
		Title:     opts.Title,
		Generated: formatter.Display(r.now()),
		Columns:   schema.Labels(),
	}
	if opts.PDF.Landscape != nil {
		data.Landscape = *opts.PDF.Landscape
	}

	for {
		if err := ctx.Err(); err != nil {
			return export.RenderStats{}, err
		}
		row, err := rows.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return export.RenderStats{}, err
		}
		if len(data.Rows) >= maxRows {
			return export.RenderStats{}, catalog.NewError(catalog.KindValidation, "template renderer max rows exceeded", nil)
		}
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatter.Display(value)
		}
		data.Rows = append(data.Rows, cells)
	}
	data.RowCount = len(data.Rows)

	tmpl := r.Templates
	if tmpl == nil {
		tmpl = defaultTemplates
	}
	name := r.TemplateName
	if name == "" {
		name = DefaultTemplateName
	}

	cw := &countingWriter{w: w}
	if err := tmpl.ExecuteTemplate(cw, name, data); err != nil {
		var kinded *catalog.Error
		if errors.As(err, &kinded) {
			return export.RenderStats{}, err
		}
		return export.RenderStats{}, catalog.NewError(catalog.KindInternal, "execute export template", err)
	}

	return export.RenderStats{Rows: int64(data.RowCount), Bytes: cw.count}, nil
}

func (r Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{if .Landscape}}landscape{{else}}portrait{{end}}; margin: 12mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 10px; color: #1f2933; }
h1 { font-size: 16px; margin: 0 0 4px; }
p.meta { color: #616e7c; margin: 0 0 12px; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 4px 6px; border-bottom: 1px solid #e4e7eb; }
th { background: #f5f7fa; }
tr { page-break-inside: avoid; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.RowCount}} rows, generated {{.Generated}}</p>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`
