package refreshjob

import (
	"context"
	"testing"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-shopadmin/catalog"
)

func TestScheduler_RequestRefreshBuildsDedupMessage(t *testing.T) {
	var got *job.ExecutionMessage
	scheduler := NewScheduler(Config{
		Enqueuer: EnqueuerFunc(func(_ context.Context, msg *job.ExecutionMessage) error {
			got = msg
			return nil
		}),
	})

	ok, err := scheduler.RequestRefresh(context.Background(), "orders")
	if err != nil || !ok {
		t.Fatalf("request: ok=%v err=%v", ok, err)
	}
	if got == nil || got.JobID != DefaultRefreshTaskID {
		t.Fatalf("unexpected message %+v", got)
	}
	if got.IdempotencyKey != "refresh:orders" || got.DedupPolicy != job.DedupPolicyMerge {
		t.Fatalf("unexpected dedup settings %q %v", got.IdempotencyKey, got.DedupPolicy)
	}
	payload, err := decodePayload(got)
	if err != nil || payload.Entity != "orders" {
		t.Fatalf("unexpected payload %+v %v", payload, err)
	}
}

func TestScheduler_SkipsRunningEntity(t *testing.T) {
	registry := NewCancelRegistry()
	release := registry.Register("orders", func() {})
	defer release()

	enqueued := 0
	scheduler := NewScheduler(Config{
		CancelRegistry: registry,
		Enqueuer: EnqueuerFunc(func(context.Context, *job.ExecutionMessage) error {
			enqueued++
			return nil
		}),
	})

	ok, err := scheduler.RequestRefresh(context.Background(), "orders")
	if err != nil || ok || enqueued != 0 {
		t.Fatalf("expected skip, got ok=%v err=%v enqueued=%d", ok, err, enqueued)
	}
	if ok, _ := scheduler.RequestRefresh(context.Background(), "products"); !ok || enqueued != 1 {
		t.Fatalf("expected products to enqueue")
	}
}

func TestScheduler_Unconfigured(t *testing.T) {
	_, err := NewScheduler(Config{}).RequestRefresh(context.Background(), "")
	if catalog.KindFromError(err) != catalog.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAsyncEnqueuer_RunsTask(t *testing.T) {
	rec := &loadRecorder{}
	task := NewRefreshTask(TaskConfig{Workspaces: newRegistry(t), Load: rec.load})
	enqueuer := &AsyncEnqueuer{Task: task}
	scheduler := NewScheduler(Config{Enqueuer: enqueuer})

	if _, err := scheduler.RequestRefresh(context.Background(), ""); err != nil {
		t.Fatalf("request: %v", err)
	}
	enqueuer.Wait()
	if rec.calls[catalog.EntityOrders] != 1 || rec.calls[catalog.EntityProducts] != 1 {
		t.Fatalf("expected both entities refreshed, got %+v", rec.calls)
	}
}
