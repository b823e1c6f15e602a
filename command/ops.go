package command

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/workspace"
)

// Lister lists configured entities.
type Lister interface {
	Entities() []catalog.Entity
}

// RefreshCommand reloads every configured entity from the cache.
type RefreshCommand struct {
	workspaces Workspaces
	lister     Lister
	logger     catalog.Logger
}

// RefreshOption customizes refresh commands.
type RefreshOption func(*RefreshCommand)

// WithRefreshLogger sets the logger used for per-entity failures.
func WithRefreshLogger(logger catalog.Logger) RefreshOption {
	return func(cmd *RefreshCommand) {
		cmd.logger = logger
	}
}

// RegistryWorkspaces is satisfied by workspace.Registry.
type RegistryWorkspaces interface {
	Workspaces
	Lister
}

// NewRefreshCommand creates a catalog refresh command.
func NewRefreshCommand(workspaces RegistryWorkspaces, opts ...RefreshOption) *RefreshCommand {
	cmd := &RefreshCommand{
		workspaces: workspaces,
		lister:     workspaces,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	cmd.logger = catalog.LoggerOrNop(cmd.logger)
	return cmd
}

// Run reloads every entity and returns the load outcome per entity. Cache
// failures are reported rather than replaced by sample data. A failing
// entity does not stop the others; the first error is returned.
func (c *RefreshCommand) Run(ctx context.Context) (map[catalog.Entity]workspace.LoadInfo, error) {
	if c == nil || c.workspaces == nil || c.lister == nil {
		return nil, errors.New("refresh command is not configured", errors.CategoryInternal).
			WithTextCode("REFRESH_CMD_NIL")
	}
	out := make(map[catalog.Entity]workspace.LoadInfo)
	var firstErr error
	for _, entity := range c.lister.Entities() {
		ws, err := c.workspaces.Get(string(entity))
		if err == nil {
			var info workspace.LoadInfo
			info, err = ws.Reload(ctx)
			if err == nil {
				out[entity] = info
				continue
			}
		}
		c.logger.Errorf("refresh %s: %v", entity, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}

// BatchExport describes one export written to disk by a batch run.
type BatchExport struct {
	Entity    string           `json:"entity"`
	Format    export.Format    `json:"format"`
	Fields    []string         `json:"fields,omitempty"`
	View      workspace.View   `json:"view"`
	Selection export.Selection `json:"selection"`
	Locale    string           `json:"locale,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
}

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchExportCommand writes a list of exports into a directory.
type BatchExportCommand struct {
	workspaces Workspaces
	dir        string
	limits     BatchLimits
	sleep      func(time.Duration)
}

// NewBatchExportCommand creates a batch export command writing into dir.
func NewBatchExportCommand(workspaces Workspaces, dir string, limits BatchLimits) *BatchExportCommand {
	return &BatchExportCommand{
		workspaces: workspaces,
		dir:        dir,
		limits:     limits,
		sleep:      time.Sleep,
	}
}

// Run executes batch and returns the written file paths.
func (c *BatchExportCommand) Run(ctx context.Context, batch []BatchExport) ([]string, error) {
	if c == nil || c.workspaces == nil {
		return nil, errors.New("batch export command is not configured", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if strings.TrimSpace(c.dir) == "" {
		return nil, errors.New("output directory is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_DIR_REQUIRED")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "create output directory failed").
			WithTextCode("OUTPUT_DIR_CREATE")
	}

	written := make([]string, 0, len(batch))
	for i, item := range batch {
		if c.limits.MaxRequests > 0 && i >= c.limits.MaxRequests {
			break
		}
		path, err := c.runOne(ctx, item)
		if err != nil {
			return written, err
		}
		written = append(written, path)
		if c.limits.MinInterval > 0 && c.sleep != nil && i < len(batch)-1 {
			c.sleep(c.limits.MinInterval)
		}
	}
	return written, nil
}

func (c *BatchExportCommand) runOne(ctx context.Context, item BatchExport) (string, error) {
	ws, err := c.workspaces.Get(item.Entity)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(c.dir, ".export-*")
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryExternal, "create export file failed").
			WithTextCode("EXPORT_FILE_CREATE")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	result, err := ws.Export(ctx, workspace.ExportRequest{
		View:      item.View,
		Format:    item.Format,
		Fields:    item.Fields,
		Selection: item.Selection,
		Locale:    item.Locale,
		Timezone:  item.Timezone,
		Output:    tmp,
	})
	if err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, errors.CategoryExternal, "close export file failed").
			WithTextCode("EXPORT_FILE_CLOSE")
	}

	target := filepath.Join(c.dir, result.Filename)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", errors.Wrap(err, errors.CategoryExternal, "move export file failed").
			WithTextCode("EXPORT_FILE_MOVE")
	}
	return target, nil
}

// LoadBatchFile reads a JSON array of BatchExport.
func LoadBatchFile(path string) ([]BatchExport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var batch []BatchExport
	if err := json.Unmarshal(content, &batch); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return batch, nil
}
