package refreshjob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/workspace"
)

func newRegistry(t *testing.T) *workspace.Registry {
	t.Helper()
	registry := workspace.NewRegistry()
	for _, entity := range []catalog.Entity{catalog.EntityOrders, catalog.EntityProducts} {
		ws, err := workspace.New(workspace.Options{Entity: entity, SampleSize: 4})
		if err != nil {
			t.Fatalf("new workspace: %v", err)
		}
		if err := registry.Register(ws); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	t.Cleanup(func() { _ = registry.Close() })
	return registry
}

type loadRecorder struct {
	mu       sync.Mutex
	calls    map[catalog.Entity]int
	failures int
}

func (r *loadRecorder) load(ctx context.Context, ws *workspace.Workspace) (workspace.LoadInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[catalog.Entity]int{}
	}
	r.calls[ws.Entity()]++
	if r.failures > 0 {
		r.failures--
		return workspace.LoadInfo{}, catalog.NewError(catalog.KindExternal, "cache unavailable", nil)
	}
	return workspace.LoadInfo{Count: 4, Source: workspace.SourceSample}, nil
}

func TestRefreshTask_ExecutesAllEntities(t *testing.T) {
	rec := &loadRecorder{}
	task := NewRefreshTask(TaskConfig{Workspaces: newRegistry(t), Load: rec.load})

	if err := task.GetHandler()(); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.calls[catalog.EntityOrders] != 1 || rec.calls[catalog.EntityProducts] != 1 {
		t.Fatalf("expected one load per entity, got %+v", rec.calls)
	}
	if task.GetID() != DefaultRefreshTaskID || task.GetPath() != DefaultRefreshTaskPath {
		t.Fatalf("unexpected task identity %q %q", task.GetID(), task.GetPath())
	}
}

func TestRefreshTask_RetriesRetryableErrors(t *testing.T) {
	rec := &loadRecorder{failures: 2}
	task := NewRefreshTask(TaskConfig{
		Workspaces: newRegistry(t),
		Load:       rec.load,
		RetryPolicy: RetryPolicy{
			MaxRetries: 2,
			Backoff:    job.BackoffConfig{Strategy: job.BackoffFixed, Interval: time.Millisecond},
		},
	})

	if err := task.Execute(context.Background(), NewMessage(DefaultRefreshTaskID, DefaultRefreshTaskPath, "orders")); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rec.calls[catalog.EntityOrders] != 3 {
		t.Fatalf("expected 3 attempts, got %d", rec.calls[catalog.EntityOrders])
	}
	if rec.calls[catalog.EntityProducts] != 0 {
		t.Fatalf("expected products untouched, got %d", rec.calls[catalog.EntityProducts])
	}
}

func TestRefreshTask_StopsAfterMaxRetries(t *testing.T) {
	rec := &loadRecorder{failures: 5}
	task := NewRefreshTask(TaskConfig{
		Workspaces:  newRegistry(t),
		Load:        rec.load,
		RetryPolicy: RetryPolicy{MaxRetries: 1},
	})

	err := task.Execute(context.Background(), NewMessage("", "", "orders"))
	if catalog.KindFromError(err) != catalog.KindExternal {
		t.Fatalf("expected external error, got %v", err)
	}
	if rec.calls[catalog.EntityOrders] != 2 {
		t.Fatalf("expected 2 attempts, got %d", rec.calls[catalog.EntityOrders])
	}
}

type flakySource struct {
	mu       sync.Mutex
	calls    int
	failures int
	raws     []any
}

func (s *flakySource) FetchTable(context.Context, string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection reset")
	}
	return s.raws, nil
}

func newCachedRegistry(t *testing.T, source *flakySource) *workspace.Registry {
	t.Helper()
	ws, err := workspace.New(workspace.Options{Entity: catalog.EntityOrders, Source: source})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	if _, err := ws.Load(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	registry := workspace.NewRegistry()
	if err := registry.Register(ws); err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(func() { _ = registry.Close() })
	return registry
}

func TestRefreshTask_DefaultLoadRetriesCacheFailures(t *testing.T) {
	source := &flakySource{raws: []any{map[string]any{"id": "real-1", "order_number": "5001"}}}
	registry := newCachedRegistry(t, source)
	source.failures = 2

	task := NewRefreshTask(TaskConfig{
		Workspaces: registry,
		RetryPolicy: RetryPolicy{
			MaxRetries: 3,
			Backoff:    job.BackoffConfig{Strategy: job.BackoffFixed, Interval: time.Millisecond},
		},
	})
	if err := task.Execute(context.Background(), NewMessage("", "", "orders")); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if source.calls != 4 {
		t.Fatalf("expected initial load plus 3 attempts, got %d fetches", source.calls)
	}

	ws, _ := registry.Get("orders")
	records, err := ws.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 || records[0].ID != "real-1" {
		t.Fatalf("expected cache records, got %d records", len(records))
	}
}

func TestRefreshTask_DefaultLoadKeepsRecordsWhenRetriesRunOut(t *testing.T) {
	source := &flakySource{raws: []any{map[string]any{"id": "real-1"}}}
	registry := newCachedRegistry(t, source)
	source.failures = 10

	task := NewRefreshTask(TaskConfig{
		Workspaces: registry,
		RetryPolicy: RetryPolicy{
			MaxRetries: 1,
			Backoff:    job.BackoffConfig{Strategy: job.BackoffFixed, Interval: time.Millisecond},
		},
	})
	err := task.Execute(context.Background(), NewMessage("", "", "orders"))
	if catalog.KindFromError(err) != catalog.KindExternal {
		t.Fatalf("expected external error, got %v", err)
	}
	if source.calls != 3 {
		t.Fatalf("expected initial load plus 2 attempts, got %d fetches", source.calls)
	}

	ws, _ := registry.Get("orders")
	records, _ := ws.Records(context.Background())
	if len(records) != 1 || records[0].ID != "real-1" {
		t.Fatalf("expected cache records kept, got %+v", records)
	}
}

func TestRefreshTask_UnknownEntity(t *testing.T) {
	task := NewRefreshTask(TaskConfig{Workspaces: newRegistry(t)})
	if err := task.Execute(context.Background(), NewMessage("", "", "customers")); catalog.KindFromError(err) != catalog.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecodePayload_Variants(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{"struct", Payload{Entity: "orders"}, "orders"},
		{"string", `{"entity":"products"}`, "products"},
		{"map", map[string]any{"entity": "orders"}, "orders"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodePayload(&job.ExecutionMessage{Parameters: map[string]any{"payload": tc.raw}})
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Entity != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.Entity)
			}
		})
	}

	if _, err := decodePayload(&job.ExecutionMessage{Parameters: map[string]any{"payload": "{"}}); err == nil {
		t.Fatalf("expected invalid payload error")
	}
}

func TestComputeBackoffDelay(t *testing.T) {
	cfg := job.BackoffConfig{Strategy: job.BackoffExponential, Interval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}
	if got := computeBackoffDelay(1, cfg); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: %s", got)
	}
	if got := computeBackoffDelay(2, cfg); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: %s", got)
	}
	if got := computeBackoffDelay(5, cfg); got != 300*time.Millisecond {
		t.Fatalf("attempt 5: %s", got)
	}
	if got := computeBackoffDelay(1, job.BackoffConfig{}); got != 0 {
		t.Fatalf("no strategy should not wait, got %s", got)
	}
}

func TestDefaultRetryable(t *testing.T) {
	if !defaultRetryable(context.DeadlineExceeded) {
		t.Fatalf("deadline should retry")
	}
	if defaultRetryable(catalog.NewError(catalog.KindValidation, "bad", nil)) {
		t.Fatalf("validation should not retry")
	}
	if (RetryPolicy{MaxRetries: 3}).shouldRetry(context.Canceled) {
		t.Fatalf("canceled should not retry")
	}
	if !(RetryPolicy{MaxRetries: 1, Retryable: func(error) bool { return true }}).shouldRetry(errors.New("x")) {
		t.Fatalf("custom retryable should win")
	}
}

func TestCancelRegistry(t *testing.T) {
	registry := NewCancelRegistry()
	canceled := false
	release := registry.Register("orders", func() { canceled = true })

	if !registry.Running("orders") {
		t.Fatalf("expected orders running")
	}
	if err := registry.Cancel("orders"); err != nil || !canceled {
		t.Fatalf("cancel: %v canceled=%v", err, canceled)
	}
	release()
	if err := registry.Cancel("orders"); catalog.KindFromError(err) != catalog.KindNotFound {
		t.Fatalf("expected not found after release, got %v", err)
	}
	if err := registry.Cancel(""); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
}
