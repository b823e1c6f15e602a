package refreshjob

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	errorslib "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/workspace"
)

const (
	DefaultRefreshTaskID   = "catalog:refresh"
	DefaultRefreshTaskPath = "catalog:refresh"
)

var (
	backoffRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	backoffRandMu sync.Mutex
)

// Payload captures the job execution input. An empty Entity refreshes every
// configured entity.
type Payload struct {
	Entity string `json:"entity,omitempty"`
}

// Workspaces resolves and lists the workspaces a refresh touches.
type Workspaces interface {
	Get(name string) (*workspace.Workspace, error)
	Entities() []catalog.Entity
}

// LoadFunc reloads a single workspace. The default is Workspace.Reload,
// which reports fetch failures instead of falling back to sample data.
type LoadFunc func(ctx context.Context, ws *workspace.Workspace) (workspace.LoadInfo, error)

// TaskConfig configures the refresh task.
type TaskConfig struct {
	ID             string
	Path           string
	Config         job.Config
	HandlerOptions job.HandlerOptions
	RetryPolicy    RetryPolicy
	CancelRegistry *CancelRegistry
	Workspaces     Workspaces
	Load           LoadFunc
	Logger         catalog.Logger
}

// RefreshTask reloads catalog workspaces from the remote cache.
type RefreshTask struct {
	id             string
	path           string
	config         job.Config
	handlerOptions job.HandlerOptions
	retryPolicy    RetryPolicy
	cancelRegistry *CancelRegistry
	workspaces     Workspaces
	load           LoadFunc
	logger         catalog.Logger
}

// NewRefreshTask creates a new refresh task.
func NewRefreshTask(cfg TaskConfig) *RefreshTask {
	id := cfg.ID
	if id == "" {
		id = DefaultRefreshTaskID
	}
	path := cfg.Path
	if path == "" {
		path = DefaultRefreshTaskPath
	}
	load := cfg.Load
	if load == nil {
		load = func(ctx context.Context, ws *workspace.Workspace) (workspace.LoadInfo, error) {
			return ws.Reload(ctx)
		}
	}
	return &RefreshTask{
		id:             id,
		path:           path,
		config:         cfg.Config,
		handlerOptions: cfg.HandlerOptions,
		retryPolicy:    cfg.RetryPolicy,
		cancelRegistry: cfg.CancelRegistry,
		workspaces:     cfg.Workspaces,
		load:           load,
		logger:         catalog.LoggerOrNop(cfg.Logger),
	}
}

// GetID returns the task identifier.
func (t *RefreshTask) GetID() string { return t.id }

// GetHandler refreshes every entity; used by non-queue schedulers.
func (t *RefreshTask) GetHandler() func() error {
	return func() error {
		if t == nil {
			return catalog.NewError(catalog.KindInternal, "task is nil", nil)
		}
		return t.Execute(context.Background(), NewMessage(t.id, t.path, ""))
	}
}

// GetHandlerConfig returns scheduler options for the task.
func (t *RefreshTask) GetHandlerConfig() job.HandlerOptions { return t.handlerOptions }

// GetConfig returns task config defaults.
func (t *RefreshTask) GetConfig() job.Config { return t.config }

// GetPath returns the task path.
func (t *RefreshTask) GetPath() string { return t.path }

// GetEngine returns nil because this task is code-driven.
func (t *RefreshTask) GetEngine() job.Engine { return nil }

// Execute reloads the entity named in the payload, or all of them. Each
// entity is retried on its own; the first failure is returned after every
// entity had its turn.
func (t *RefreshTask) Execute(ctx context.Context, msg *job.ExecutionMessage) error {
	if t == nil {
		return catalog.NewError(catalog.KindInternal, "task is nil", nil)
	}
	if t.workspaces == nil {
		return catalog.NewError(catalog.KindInternal, "refresh task has no workspaces", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	entities := t.workspaces.Entities()
	if payload.Entity != "" {
		entities = []catalog.Entity{catalog.Entity(payload.Entity)}
	}

	var firstErr error
	for _, entity := range entities {
		if err := t.refresh(ctx, entity); err != nil {
			t.logger.Errorf("refresh %s: %v", entity, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (t *RefreshTask) refresh(ctx context.Context, entity catalog.Entity) error {
	ws, err := t.workspaces.Get(string(entity))
	if err != nil {
		return err
	}

	execCtx := ctx
	if t.cancelRegistry != nil {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithCancel(ctx)
		release := t.cancelRegistry.Register(string(entity), cancel)
		defer func() {
			release()
			cancel()
		}()
	}

	policy := t.retryPolicy
	attempt := 0
	for {
		if err := execCtx.Err(); err != nil {
			return err
		}
		info, err := t.load(execCtx, ws)
		if err == nil {
			t.logger.Infof("refreshed %s: %d records from %s", entity, info.Count, info.Source)
			return nil
		}
		if !policy.shouldRetry(err) || attempt >= policy.MaxRetries {
			return err
		}
		attempt++
		delay := policy.backoffDelay(attempt)
		t.logger.Debugf("refresh %s attempt %d failed, retrying in %s: %v", entity, attempt, delay, err)
		if delay > 0 {
			if serr := sleepWithContext(execCtx, delay); serr != nil {
				return serr
			}
		}
	}
}

// NewMessage builds the execution message for a refresh of entity, or of
// every entity when entity is empty.
func NewMessage(taskID, taskPath, entity string) *job.ExecutionMessage {
	raw, _ := json.Marshal(Payload{Entity: entity})
	return &job.ExecutionMessage{
		JobID:      taskID,
		ScriptPath: taskPath,
		Parameters: map[string]any{"payload": json.RawMessage(raw)},
	}
}

func decodePayload(msg *job.ExecutionMessage) (Payload, error) {
	if msg == nil || msg.Parameters == nil {
		return Payload{}, nil
	}
	raw, ok := msg.Parameters["payload"]
	if !ok {
		return Payload{}, nil
	}

	switch value := raw.(type) {
	case Payload:
		return value, nil
	case *Payload:
		if value == nil {
			return Payload{}, nil
		}
		return *value, nil
	case json.RawMessage:
		return unmarshalPayload(value)
	case []byte:
		return unmarshalPayload(value)
	case string:
		return unmarshalPayload([]byte(value))
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return Payload{}, catalog.NewError(catalog.KindValidation, "job payload is invalid", err)
		}
		return unmarshalPayload(data)
	}
}

func unmarshalPayload(data []byte) (Payload, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Payload{}, nil
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, catalog.NewError(catalog.KindValidation, "job payload is invalid", err)
	}
	return payload, nil
}

// RetryPolicy determines retry behavior for retryable errors.
type RetryPolicy struct {
	MaxRetries int
	Backoff    job.BackoffConfig
	Retryable  func(error) bool
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if err == nil || p.MaxRetries <= 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return defaultRetryable(err)
}

func (p RetryPolicy) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return computeBackoffDelay(attempt, p.Backoff)
}

func defaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errorslib.IsRetryableError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	switch catalog.KindFromError(err) {
	case catalog.KindExternal, catalog.KindTimeout:
		return true
	}
	return false
}

func computeBackoffDelay(attempt int, cfg job.BackoffConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	maxInterval := cfg.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 5 * time.Second
	}

	switch cfg.Strategy {
	case job.BackoffFixed:
		return applyJitter(interval, cfg.Jitter)
	case job.BackoffExponential:
		delay := interval
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxInterval {
				delay = maxInterval
				break
			}
		}
		return applyJitter(delay, cfg.Jitter)
	default:
		return 0
	}
}

func applyJitter(delay time.Duration, jitter bool) time.Duration {
	if !jitter || delay <= 0 {
		return delay
	}
	// +/-50%
	half := float64(delay) * 0.5
	backoffRandMu.Lock()
	offset := (backoffRand.Float64()*2 - 1) * half
	backoffRandMu.Unlock()
	jittered := float64(delay) + offset
	if jittered < 0 {
		return 0
	}
	return time.Duration(jittered)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
