package workspace

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Registry holds one workspace per entity.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[catalog.Entity]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[catalog.Entity]*Workspace)}
}

// Register adds ws, replacing any workspace for the same entity.
func (r *Registry) Register(ws *Workspace) error {
	if ws == nil {
		return catalog.NewError(catalog.KindValidation, "workspace is nil", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workspaces == nil {
		r.workspaces = make(map[catalog.Entity]*Workspace)
	}
	r.workspaces[ws.Entity()] = ws
	return nil
}

// Get resolves a workspace by entity name, accepting singular forms and any case.
func (r *Registry) Get(name string) (*Workspace, error) {
	entity, ok := catalog.NormalizeEntity(name)
	if !ok {
		return nil, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("unknown entity %q", name), nil)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.workspaces[entity]
	if !ok {
		return nil, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("entity %q is not configured", entity), nil)
	}
	return ws, nil
}

// Entities lists registered entities in name order.
func (r *Registry) Entities() []catalog.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Entity, 0, len(r.workspaces))
	for entity := range r.workspaces {
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close closes every workspace.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, ws := range r.workspaces {
		if err := ws.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
