package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/google/uuid"
)

// ErrPDFUnavailable marks a PDF failure; callers should offer CSV or JSON.
var ErrPDFUnavailable = errors.New("PDF export failed, try CSV or JSON instead")

// Runner builds exports from in-memory records.
type Runner struct {
	Renderers   *RendererRegistry
	Logger      catalog.Logger
	Metrics     MetricsHook
	Options     RenderOptions
	Now         func() time.Time
	IDGenerator func() string
}

// NewRunner creates a runner with the CSV, JSON and XLSX renderers registered.
// PDF is registered by the pdf adapter.
func NewRunner() *Runner {
	renderers := NewRendererRegistry()
	_ = renderers.Register(FormatCSV, CSVRenderer{})
	_ = renderers.Register(FormatJSON, JSONRenderer{})
	_ = renderers.Register(FormatXLSX, XLSXRenderer{})

	return &Runner{
		Renderers:   renderers,
		Logger:      catalog.NopLogger{},
		Now:         time.Now,
		IDGenerator: uuid.NewString,
	}
}

// Export builds the artifact and writes it to req.Output. Nothing is written
// when the build fails.
func (r *Runner) Export(ctx context.Context, req Request) (Result, error) {
	if req.Output == nil {
		return Result{}, catalog.NewError(catalog.KindValidation, "output writer is required", nil)
	}

	artifact, err := r.Build(ctx, req)
	if err != nil {
		return Result{}, err
	}

	n, err := req.Output.Write(artifact.Data)
	if err != nil {
		return Result{}, catalog.NewError(catalog.KindInternal, "write export", err)
	}

	return Result{
		ID:          artifact.ID,
		Format:      artifact.Format,
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		Rows:        artifact.Rows,
		Bytes:       int64(n),
	}, nil
}

// Build renders the export fully into memory.
func (r *Runner) Build(ctx context.Context, req Request) (Artifact, error) {
	if r == nil || r.Renderers == nil {
		return Artifact{}, catalog.NewError(catalog.KindInternal, "runner is not configured", nil)
	}
	logger := catalog.LoggerOrNop(r.Logger)

	schema, ok := catalog.SchemaFor(req.Entity)
	if !ok {
		return Artifact{}, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unknown entity %q", req.Entity), nil)
	}

	format := NormalizeFormat(req.Format)
	columns, err := ResolveColumns(schema, req.Fields)
	if err != nil {
		return Artifact{}, err
	}

	now := req.Now
	if now.IsZero() {
		now = r.now()
	}

	id := r.newID()
	started := r.now()

	renderer, ok := r.Renderers.Resolve(format)
	if !ok {
		var err error = catalog.NewError(catalog.KindValidation, fmt.Sprintf("unsupported export format %q", format), nil)
		if format == FormatPDF {
			err = catalog.NewError(catalog.KindValidation, "pdf renderer is not registered", ErrPDFUnavailable)
		}
		r.emit(ctx, id, req.Entity, format, RenderStats{}, started, err)
		return Artifact{}, err
	}

	filename, err := Filename(schema.Entity, format, now)
	if err != nil {
		return Artifact{}, err
	}

	records := SelectRecords(req.Records, req.Selection)
	opts := r.Options
	if req.Title != "" {
		opts.Title = req.Title
	}
	if opts.Title == "" {
		opts.Title = defaultTitle(schema.Entity)
	}
	if req.Locale != "" {
		opts.Format.Locale = req.Locale
	}
	if req.Timezone != "" {
		opts.Format.Timezone = req.Timezone
	}

	var buf bytes.Buffer
	rows := NewRecordIterator(schema, columns, records)
	defer rows.Close()

	stats, err := renderer.Render(ctx, Schema{Columns: columns}, rows, &buf, opts)
	if err != nil {
		if format == FormatPDF && !errors.Is(err, ErrPDFUnavailable) {
			err = catalog.NewError(catalog.KindExternal, "pdf render", fmt.Errorf("%w: %v", ErrPDFUnavailable, err))
		}
		logger.Errorf("export %s %s failed: %v", schema.Entity, format, err)
		r.emit(ctx, id, schema.Entity, format, stats, started, err)
		return Artifact{}, err
	}

	logger.Infof("export %s %s: %d rows, %d bytes", schema.Entity, format, stats.Rows, buf.Len())
	stats.Bytes = int64(buf.Len())
	r.emit(ctx, id, schema.Entity, format, stats, started, nil)

	return Artifact{
		ID:          id,
		Entity:      schema.Entity,
		Format:      format,
		Filename:    filename,
		ContentType: ContentType(format),
		Rows:        stats.Rows,
		Data:        buf.Bytes(),
	}, nil
}

// ResolveColumns maps field names (or aliases) onto export columns. An empty
// list selects the schema's default export fields.
func ResolveColumns(schema *catalog.Schema, fields []string) ([]Column, error) {
	if len(fields) == 0 {
		fields = schema.ExportFields
	}

	columns := make([]Column, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		field, ok := schema.Field(name)
		if !ok {
			return nil, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unknown export field %q", name), nil)
		}
		if _, dup := seen[field.Name]; dup {
			continue
		}
		seen[field.Name] = struct{}{}
		columns = append(columns, Column{Name: field.Name, Label: field.Label, Type: field.Type})
	}
	if len(columns) == 0 {
		return nil, catalog.NewError(catalog.KindValidation, "at least one export field is required", nil)
	}
	return columns, nil
}

// SelectRecords keeps the records whose IDs are selected, in record order.
// An empty selection keeps everything.
func SelectRecords(records []catalog.Record, sel Selection) []catalog.Record {
	if len(sel.IDs) == 0 {
		return records
	}
	wanted := make(map[string]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		wanted[id] = struct{}{}
	}
	out := make([]catalog.Record, 0, len(sel.IDs))
	for _, rec := range records {
		if _, ok := wanted[rec.ID]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func defaultTitle(entity catalog.Entity) string {
	name := string(entity)
	if name == "" {
		return "Export"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " export"
}

func (r *Runner) emit(ctx context.Context, id string, entity catalog.Entity, format Format, stats RenderStats, started time.Time, err error) {
	if r.Metrics == nil {
		return
	}
	name := "export.completed"
	kind := catalog.ErrorKind("")
	if err != nil {
		name = "export.failed"
		kind = catalog.KindFromError(err)
	}
	now := r.now()
	_ = r.Metrics.Emit(ctx, MetricsEvent{
		Name:      name,
		ExportID:  id,
		Entity:    entity,
		Format:    format,
		Rows:      stats.Rows,
		Bytes:     stats.Bytes,
		Duration:  now.Sub(started),
		ErrorKind: kind,
		Timestamp: now,
	})
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) newID() string {
	if r.IDGenerator == nil {
		return uuid.NewString()
	}
	return r.IDGenerator()
}
