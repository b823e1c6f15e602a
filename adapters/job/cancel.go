package refreshjob

import (
	"context"
	"sync"

	"github.com/goliatone/go-shopadmin/catalog"
)

// CancelRegistry tracks in-flight refreshes by entity.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Register associates a cancel func with an entity. The returned func
// releases the entry.
func (r *CancelRegistry) Register(entity string, cancel context.CancelFunc) func() {
	if r == nil || entity == "" || cancel == nil {
		return func() {}
	}
	r.mu.Lock()
	r.cancels[entity] = cancel
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.cancels, entity)
		r.mu.Unlock()
	}
}

// Running reports whether a refresh for entity is in flight.
func (r *CancelRegistry) Running(entity string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[entity]
	return ok
}

// Cancel aborts a running refresh.
func (r *CancelRegistry) Cancel(entity string) error {
	if r == nil {
		return catalog.NewError(catalog.KindInternal, "cancel registry is nil", nil)
	}
	if entity == "" {
		return catalog.NewError(catalog.KindValidation, "entity is required", nil)
	}

	r.mu.Lock()
	cancel, ok := r.cancels[entity]
	r.mu.Unlock()
	if !ok {
		return catalog.NewError(catalog.KindNotFound, "refresh not running", nil)
	}
	cancel()
	return nil
}
