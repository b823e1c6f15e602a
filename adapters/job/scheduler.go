package refreshjob

import (
	"context"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-shopadmin/catalog"
)

// Enqueuer delivers execution messages to go-job.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *job.ExecutionMessage) error
}

// EnqueuerFunc adapts a function to an Enqueuer.
type EnqueuerFunc func(ctx context.Context, msg *job.ExecutionMessage) error

func (f EnqueuerFunc) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if f == nil {
		return catalog.NewError(catalog.KindInternal, "enqueuer is nil", nil)
	}
	return f(ctx, msg)
}

// AsyncEnqueuer runs each message on its own goroutine, bounded by timeout.
// Wait blocks until every started run returns.
type AsyncEnqueuer struct {
	Task    *RefreshTask
	Timeout time.Duration
	Logger  catalog.Logger

	wg sync.WaitGroup
}

func (e *AsyncEnqueuer) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if e == nil || e.Task == nil {
		return catalog.NewError(catalog.KindInternal, "async enqueuer has no task", nil)
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := catalog.LoggerOrNop(e.Logger)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := e.Task.Execute(execCtx, msg); err != nil {
			logger.Errorf("refresh task failed: %v", err)
		}
	}()
	return nil
}

func (e *AsyncEnqueuer) Wait() {
	if e != nil {
		e.wg.Wait()
	}
}

// Config configures the refresh scheduler.
type Config struct {
	Enqueuer       Enqueuer
	CancelRegistry *CancelRegistry
	TaskID         string
	TaskPath       string
	Logger         catalog.Logger
}

// Scheduler enqueues refresh jobs, merging duplicates for the same entity.
type Scheduler struct {
	enqueuer       Enqueuer
	cancelRegistry *CancelRegistry
	taskID         string
	taskPath       string
	logger         catalog.Logger
}

func NewScheduler(cfg Config) *Scheduler {
	taskID := cfg.TaskID
	if taskID == "" {
		taskID = DefaultRefreshTaskID
	}
	taskPath := cfg.TaskPath
	if taskPath == "" {
		taskPath = DefaultRefreshTaskPath
	}
	return &Scheduler{
		enqueuer:       cfg.Enqueuer,
		cancelRegistry: cfg.CancelRegistry,
		taskID:         taskID,
		taskPath:       taskPath,
		logger:         catalog.LoggerOrNop(cfg.Logger),
	}
}

// RequestRefresh enqueues a refresh of entity, or of all entities when
// entity is empty. It reports false when that entity is already refreshing.
func (s *Scheduler) RequestRefresh(ctx context.Context, entity string) (bool, error) {
	if s == nil || s.enqueuer == nil {
		return false, catalog.NewError(catalog.KindInternal, "refresh scheduler is not configured", nil)
	}
	if entity != "" && s.cancelRegistry.Running(entity) {
		s.logger.Debugf("refresh %s already running, skipped", entity)
		return false, nil
	}

	msg := NewMessage(s.taskID, s.taskPath, entity)
	key := "refresh:" + entity
	if entity == "" {
		key = "refresh:*"
	}
	msg.IdempotencyKey = key
	msg.DedupPolicy = job.DedupPolicyMerge

	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}
