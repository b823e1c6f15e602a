package exportpdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	exporttemplate "github.com/goliatone/go-shopadmin/adapters/template"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
)

// DefaultMaxHTMLBytes guards in-memory HTML buffering before PDF conversion.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// ErrEngineUnavailable reports that an engine cannot run here, for example
// because no browser binary is installed. The renderer falls back to the
// text layout when it sees it.
var ErrEngineUnavailable = errors.New("pdf engine unavailable")

// RenderRequest contains HTML input and render options for PDF engines.
type RenderRequest struct {
	HTML    []byte
	Options export.RenderOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, ErrEngineUnavailable
	}
	return f(ctx, req)
}

// Renderer produces PDF exports. With an Engine it renders the HTML table
// through the browser; without one, or when the engine is unavailable, it
// lays the rows out as paginated text.
type Renderer struct {
	HTMLRenderer export.Renderer
	Engine       Engine
	Layout       TextLayout
	MaxHTMLBytes int64
	Logger       catalog.Logger
}

// Register installs the renderer for the PDF format.
func Register(registry *export.RendererRegistry, renderer Renderer) {
	registry.Replace(export.FormatPDF, renderer)
}

// Render implements export.Renderer.
func (r Renderer) Render(ctx context.Context, schema export.Schema, rows export.RowIterator, w io.Writer, opts export.RenderOptions) (export.RenderStats, error) {
	collected, err := export.Collect(ctx, rows)
	if err != nil {
		return export.RenderStats{}, err
	}

	var pdf []byte
	if r.Engine != nil {
		pdf, err = r.renderEngine(ctx, schema, collected, opts)
		if errors.Is(err, ErrEngineUnavailable) {
			catalog.LoggerOrNop(r.Logger).Infof("pdf engine unavailable, using text layout: %v", err)
			pdf, err = nil, nil
		}
		if err != nil {
			return export.RenderStats{}, err
		}
	}

	if pdf == nil {
		pdf, err = r.Layout.Render(schema, collected, opts)
		if err != nil {
			return export.RenderStats{}, err
		}
	}

	cw := &countingWriter{w: w}
	if _, err := cw.Write(pdf); err != nil {
		return export.RenderStats{Rows: int64(len(collected)), Bytes: cw.count}, err
	}
	return export.RenderStats{Rows: int64(len(collected)), Bytes: cw.count}, nil
}

func (r Renderer) renderEngine(ctx context.Context, schema export.Schema, rows []export.Row, opts export.RenderOptions) ([]byte, error) {
	htmlRenderer := r.HTMLRenderer
	if htmlRenderer == nil {
		htmlRenderer = exporttemplate.Renderer{}
	}

	buffer := newLimitedBuffer(r.MaxHTMLBytes)
	if _, err := htmlRenderer.Render(ctx, schema, export.NewSliceIterator(rows), buffer, opts); err != nil {
		return nil, err
	}

	return r.Engine.Render(ctx, RenderRequest{HTML: buffer.Bytes(), Options: opts})
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxHTMLBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, catalog.NewError(catalog.KindValidation, "pdf renderer max html bytes exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
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
