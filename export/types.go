package export

import (
	"context"
	"io"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Format is the export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Selection narrows the exported records to the given ids. An empty
// selection exports every record passed in.
type Selection struct {
	IDs []string `json:"ids,omitempty"`
}

// Request captures an export request.
type Request struct {
	Entity    catalog.Entity
	Format    Format
	Fields    []string
	Records   []catalog.Record
	Selection Selection
	Locale    string
	Timezone  string
	Title     string
	Now       time.Time
	Output    io.Writer
}

// Artifact is a fully built export.
type Artifact struct {
	ID          string
	Entity      catalog.Entity
	Format      Format
	Filename    string
	ContentType string
	Rows        int64
	Data        []byte
}

// Result captures a completed export written to Request.Output.
type Result struct {
	ID          string
	Format      Format
	Filename    string
	ContentType string
	Rows        int64
	Bytes       int64
}

// Column defines a column in the export schema.
type Column struct {
	Name  string
	Label string
	Type  catalog.FieldType
}

// Schema defines the columns of an export.
type Schema struct {
	Columns []Column
}

// Labels returns the column labels, falling back to names.
func (s Schema) Labels() []string {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = col.Label
		if out[i] == "" {
			out[i] = col.Name
		}
	}
	return out
}

// Row is a column-aligned record.
type Row []any

// RowIterator streams rows.
type RowIterator interface {
	Next(ctx context.Context) (Row, error)
	Close() error
}

// Renderer writes rows to the destination.
type Renderer interface {
	Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error)
}

// RenderStats capture renderer output.
type RenderStats struct {
	Rows  int64
	Bytes int64
}

// XLSXOptions configures XLSX output.
type XLSXOptions struct {
	SheetName string
	MaxRows   int
}

// PDFOptions configures PDF output.
type PDFOptions struct {
	PageSize  string
	Landscape *bool
}

// FormatOptions configures locale/timezone formatting.
type FormatOptions struct {
	Locale   string
	Timezone string
}

// RenderOptions configures renderer behavior.
type RenderOptions struct {
	Title  string
	XLSX   XLSXOptions
	PDF    PDFOptions
	Format FormatOptions
}

// MetricsEvent describes an export outcome.
type MetricsEvent struct {
	Name      string
	ExportID  string
	Entity    catalog.Entity
	Format    Format
	Rows      int64
	Bytes     int64
	Duration  time.Duration
	ErrorKind catalog.ErrorKind
	Timestamp time.Time
}

// MetricsHook emits metrics-friendly export observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}
