package command

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/suggest"
	"github.com/goliatone/go-shopadmin/workspace"
)

func requireEntity(entity string) error {
	if strings.TrimSpace(entity) == "" {
		return errors.New("entity is required", errors.CategoryValidation).
			WithTextCode("ENTITY_REQUIRED")
	}
	return nil
}

// LoadCatalog reloads an entity from the cache.
type LoadCatalog struct {
	Entity string
	Result *workspace.LoadInfo
}

func (LoadCatalog) Type() string { return "catalog:load" }

func (msg LoadCatalog) Validate() error { return requireEntity(msg.Entity) }

// RunExport exports the current view or a selection of an entity.
type RunExport struct {
	Entity  string
	Request workspace.ExportRequest
	Result  *export.Result
}

func (RunExport) Type() string { return "catalog:export" }

func (msg RunExport) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if msg.Request.Output == nil {
		return errors.New("export output is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_REQUIRED")
	}
	return nil
}

// BulkDelete removes records from the session.
type BulkDelete struct {
	Entity string
	IDs    []string
	Result *int
}

func (BulkDelete) Type() string { return "catalog:bulk-delete" }

func (msg BulkDelete) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if len(msg.IDs) == 0 {
		return errors.New("at least one record ID is required", errors.CategoryValidation).
			WithTextCode("IDS_REQUIRED")
	}
	return nil
}

// RemoteSearch runs a remote search immediately.
type RemoteSearch struct {
	Entity string
	Query  string
	Result *bool
}

func (RemoteSearch) Type() string { return "catalog:remote-search" }

func (msg RemoteSearch) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if strings.TrimSpace(msg.Query) == "" {
		return errors.New("query is required", errors.CategoryValidation).
			WithTextCode("QUERY_REQUIRED")
	}
	return nil
}

// RecordSearch appends a query to the search history.
type RecordSearch struct {
	Entity      string
	Query       string
	ResultCount int
	Result      *[]suggest.Entry
}

func (RecordSearch) Type() string { return "catalog:history:record" }

func (msg RecordSearch) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if strings.TrimSpace(msg.Query) == "" {
		return errors.New("query is required", errors.CategoryValidation).
			WithTextCode("QUERY_REQUIRED")
	}
	return nil
}

// ClearHistory removes the search history of an entity.
type ClearHistory struct {
	Entity string
}

func (ClearHistory) Type() string { return "catalog:history:clear" }

func (msg ClearHistory) Validate() error { return requireEntity(msg.Entity) }

// SaveSettings stores the display settings of an entity.
type SaveSettings struct {
	Entity   string
	Settings prefs.Settings
	Result   *prefs.Settings
}

func (SaveSettings) Type() string { return "catalog:settings:save" }

func (msg SaveSettings) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if msg.Settings.DefaultExportFormat != "" {
		if !export.IsKnownFormat(export.Format(msg.Settings.DefaultExportFormat)) {
			return errors.New("default export format is invalid", errors.CategoryValidation).
				WithTextCode("FORMAT_INVALID")
		}
	}
	return nil
}

// ClearSavedFilters removes the saved filters of an entity.
type ClearSavedFilters struct {
	Entity string
}

func (ClearSavedFilters) Type() string { return "catalog:filters:clear" }

func (msg ClearSavedFilters) Validate() error { return requireEntity(msg.Entity) }

// SetCardsPerRow stores the card grid width of an entity.
type SetCardsPerRow struct {
	Entity string
	Count  int
}

func (SetCardsPerRow) Type() string { return "catalog:cards-per-row" }

func (msg SetCardsPerRow) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if msg.Count < 1 {
		return errors.New("cards per row must be positive", errors.CategoryValidation).
			WithTextCode("CARDS_PER_ROW_INVALID")
	}
	return nil
}
