package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/suggest"
	"github.com/goliatone/go-shopadmin/workspace"
)

// Workspaces resolves an entity workspace by name.
type Workspaces interface {
	Get(name string) (*workspace.Workspace, error)
}

func resolve(workspaces Workspaces, entity string) (*workspace.Workspace, error) {
	if workspaces == nil {
		return nil, errors.New("workspace registry is required", errors.CategoryInternal).
			WithTextCode("WORKSPACES_REQUIRED")
	}
	return workspaces.Get(entity)
}

// LoadCatalogHandler reloads entity records.
type LoadCatalogHandler struct {
	Workspaces Workspaces
}

func NewLoadCatalogHandler(workspaces Workspaces) *LoadCatalogHandler {
	return &LoadCatalogHandler{Workspaces: workspaces}
}

func (h *LoadCatalogHandler) Execute(ctx context.Context, msg LoadCatalog) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	info, err := ws.Load(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = info
	}
	if res := gcmd.ResultFromContext[workspace.LoadInfo](ctx); res != nil {
		res.Store(info)
	}
	return nil
}

// RunExportHandler exports entity records.
type RunExportHandler struct {
	Workspaces Workspaces
}

func NewRunExportHandler(workspaces Workspaces) *RunExportHandler {
	return &RunExportHandler{Workspaces: workspaces}
}

func (h *RunExportHandler) Execute(ctx context.Context, msg RunExport) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	result, err := ws.Export(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.Result](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

// BulkDeleteHandler removes records from the session.
type BulkDeleteHandler struct {
	Workspaces Workspaces
}

func NewBulkDeleteHandler(workspaces Workspaces) *BulkDeleteHandler {
	return &BulkDeleteHandler{Workspaces: workspaces}
}

func (h *BulkDeleteHandler) Execute(ctx context.Context, msg BulkDelete) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	removed, err := ws.BulkDelete(ctx, msg.IDs)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = removed
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(removed)
	}
	return nil
}

// RemoteSearchHandler runs a remote search and reports whether results applied.
type RemoteSearchHandler struct {
	Workspaces Workspaces
}

func NewRemoteSearchHandler(workspaces Workspaces) *RemoteSearchHandler {
	return &RemoteSearchHandler{Workspaces: workspaces}
}

func (h *RemoteSearchHandler) Execute(ctx context.Context, msg RemoteSearch) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	applied := ws.RunRemoteSearch(ctx, msg.Query)
	if msg.Result != nil {
		*msg.Result = applied
	}
	if res := gcmd.ResultFromContext[bool](ctx); res != nil {
		res.Store(applied)
	}
	return nil
}

// RecordSearchHandler appends to the search history.
type RecordSearchHandler struct {
	Workspaces Workspaces
}

func NewRecordSearchHandler(workspaces Workspaces) *RecordSearchHandler {
	return &RecordSearchHandler{Workspaces: workspaces}
}

func (h *RecordSearchHandler) Execute(ctx context.Context, msg RecordSearch) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	history, err := ws.RecordSearch(ctx, msg.Query, msg.ResultCount)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = history
	}
	if res := gcmd.ResultFromContext[[]suggest.Entry](ctx); res != nil {
		res.Store(history)
	}
	return nil
}

// ClearHistoryHandler clears the search history.
type ClearHistoryHandler struct {
	Workspaces Workspaces
}

func NewClearHistoryHandler(workspaces Workspaces) *ClearHistoryHandler {
	return &ClearHistoryHandler{Workspaces: workspaces}
}

func (h *ClearHistoryHandler) Execute(ctx context.Context, msg ClearHistory) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	return ws.ClearHistory(ctx)
}

// SaveSettingsHandler stores display settings.
type SaveSettingsHandler struct {
	Workspaces Workspaces
}

func NewSaveSettingsHandler(workspaces Workspaces) *SaveSettingsHandler {
	return &SaveSettingsHandler{Workspaces: workspaces}
}

func (h *SaveSettingsHandler) Execute(ctx context.Context, msg SaveSettings) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	settings := msg.Settings
	if settings.DefaultExportFormat != "" {
		settings.DefaultExportFormat = string(export.NormalizeFormat(export.Format(settings.DefaultExportFormat)))
	}
	saved, err := ws.SaveSettings(ctx, settings)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = saved
	}
	if res := gcmd.ResultFromContext[prefs.Settings](ctx); res != nil {
		res.Store(saved)
	}
	return nil
}

// ClearSavedFiltersHandler removes saved filters.
type ClearSavedFiltersHandler struct {
	Workspaces Workspaces
}

func NewClearSavedFiltersHandler(workspaces Workspaces) *ClearSavedFiltersHandler {
	return &ClearSavedFiltersHandler{Workspaces: workspaces}
}

func (h *ClearSavedFiltersHandler) Execute(ctx context.Context, msg ClearSavedFilters) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	return ws.ClearSavedFilters(ctx)
}

// SetCardsPerRowHandler stores the card grid width.
type SetCardsPerRowHandler struct {
	Workspaces Workspaces
}

func NewSetCardsPerRowHandler(workspaces Workspaces) *SetCardsPerRowHandler {
	return &SetCardsPerRowHandler{Workspaces: workspaces}
}

func (h *SetCardsPerRowHandler) Execute(ctx context.Context, msg SetCardsPerRow) error {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return err
	}
	return ws.Preferences().SetCardsPerRow(ctx, msg.Count)
}
