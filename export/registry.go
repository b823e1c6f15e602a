package export

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-shopadmin/catalog"
)

// RendererRegistry stores renderers by format.
type RendererRegistry struct {
	mu        sync.RWMutex
	renderers map[Format]Renderer
}

// NewRendererRegistry creates a registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{renderers: make(map[Format]Renderer)}
}

// Register adds a renderer for a format.
func (r *RendererRegistry) Register(format Format, renderer Renderer) error {
	if format == "" {
		return catalog.NewError(catalog.KindValidation, "renderer format is required", nil)
	}
	if renderer == nil {
		return catalog.NewError(catalog.KindValidation, "renderer is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[format]; exists {
		return catalog.NewError(catalog.KindConflict, fmt.Sprintf("renderer for %q already registered", format), nil)
	}
	r.renderers[format] = renderer
	return nil
}

// Replace sets the renderer for a format, overriding any existing one.
func (r *RendererRegistry) Replace(format Format, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[format] = renderer
}

// Resolve returns the renderer for the format.
func (r *RendererRegistry) Resolve(format Format) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	return renderer, ok
}

// Formats lists the registered formats in name order.
func (r *RendererRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.renderers))
	for format := range r.renderers {
		out = append(out, format)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
