package exporttemplate

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
)

func testSchema() export.Schema {
	return export.Schema{Columns: []export.Column{
		{Name: "id", Label: "ID"},
		{Name: "customer", Label: "Customer"},
		{Name: "created_at", Label: "Created", Type: catalog.TypeDate},
	}}
}

func TestRenderer_DefaultTemplateEscapesCells(t *testing.T) {
	created := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := export.NewSliceIterator([]export.Row{
		{"1001", "<b>Ada</b>", created},
		{"1002", "Grace", created},
	})
	renderer := Renderer{Now: func() time.Time { return created }}

	buf := &bytes.Buffer{}
	stats, err := renderer.Render(context.Background(), testSchema(), rows, buf, export.RenderOptions{Title: "Orders export"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats.Rows != 2 || stats.Bytes != int64(buf.Len()) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out := buf.String()
	for _, want := range []string{"<title>Orders export</title>", "<th>Customer</th>", "&lt;b&gt;Ada&lt;/b&gt;", "<td>3/5/2024</td>", "2 rows"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderer_MaxRows(t *testing.T) {
	rows := export.NewSliceIterator([]export.Row{{"1", "a", nil}, {"2", "b", nil}})
	_, err := Renderer{MaxRows: 1}.Render(context.Background(), testSchema(), rows, &bytes.Buffer{}, export.RenderOptions{})
	if catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderer_CustomTemplates(t *testing.T) {
	tmpl := htmltemplate.Must(htmltemplate.New("compact").Parse(`{{.RowCount}}:{{range .Columns}}{{.}};{{end}}`))
	rows := export.NewSliceIterator([]export.Row{{"1", "a", nil}})

	buf := &bytes.Buffer{}
	_, err := Renderer{Templates: tmpl, TemplateName: "compact"}.Render(context.Background(), testSchema(), rows, buf, export.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "1:ID;Customer;Created;" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
