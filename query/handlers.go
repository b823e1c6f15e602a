package query

import (
	"context"
	"sort"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/catalog"
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

// ListRecordsHandler returns a filtered page.
type ListRecordsHandler struct {
	Workspaces Workspaces
}

func NewListRecordsHandler(workspaces Workspaces) *ListRecordsHandler {
	return &ListRecordsHandler{Workspaces: workspaces}
}

func (h *ListRecordsHandler) Query(ctx context.Context, msg ListRecords) (workspace.Result, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return workspace.Result{}, err
	}
	return ws.Query(ctx, msg.View)
}

// SuggestionsHandler returns typeahead suggestions.
type SuggestionsHandler struct {
	Workspaces Workspaces
}

func NewSuggestionsHandler(workspaces Workspaces) *SuggestionsHandler {
	return &SuggestionsHandler{Workspaces: workspaces}
}

func (h *SuggestionsHandler) Query(ctx context.Context, msg Suggestions) ([]suggest.Suggestion, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return nil, err
	}
	return ws.Suggest(ctx, msg.Query)
}

// SearchHistoryHandler returns the search history.
type SearchHistoryHandler struct {
	Workspaces Workspaces
}

func NewSearchHistoryHandler(workspaces Workspaces) *SearchHistoryHandler {
	return &SearchHistoryHandler{Workspaces: workspaces}
}

func (h *SearchHistoryHandler) Query(ctx context.Context, msg SearchHistory) ([]suggest.Entry, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return nil, err
	}
	history, err := ws.History(ctx)
	if history == nil {
		history = []suggest.Entry{}
	}
	return history, err
}

// SettingsView is the settings of an entity plus its card grid width.
type SettingsView struct {
	prefs.Settings
	CardsPerRow int `json:"cardsPerRow"`
}

// GetSettingsHandler returns display settings.
type GetSettingsHandler struct {
	Workspaces Workspaces
}

func NewGetSettingsHandler(workspaces Workspaces) *GetSettingsHandler {
	return &GetSettingsHandler{Workspaces: workspaces}
}

func (h *GetSettingsHandler) Query(ctx context.Context, msg GetSettings) (SettingsView, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return SettingsView{}, err
	}
	settings, err := ws.Settings(ctx)
	if err != nil {
		return SettingsView{}, err
	}
	cards, err := ws.Preferences().CardsPerRow(ctx)
	if err != nil {
		return SettingsView{}, err
	}
	return SettingsView{Settings: settings, CardsPerRow: cards}, nil
}

// SavedView is the saved filter view, if one exists.
type SavedView struct {
	Found bool           `json:"found"`
	View  workspace.View `json:"view"`
}

// GetSavedFiltersHandler returns saved filters.
type GetSavedFiltersHandler struct {
	Workspaces Workspaces
}

func NewGetSavedFiltersHandler(workspaces Workspaces) *GetSavedFiltersHandler {
	return &GetSavedFiltersHandler{Workspaces: workspaces}
}

func (h *GetSavedFiltersHandler) Query(ctx context.Context, msg GetSavedFilters) (SavedView, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return SavedView{}, err
	}
	view, found, err := ws.SavedFilters(ctx)
	if err != nil {
		return SavedView{}, err
	}
	return SavedView{Found: found, View: view}, nil
}

// FieldInfo describes a field for column headers and filter widgets.
type FieldInfo struct {
	Name    string             `json:"name"`
	Label   string             `json:"label"`
	Type    catalog.FieldType  `json:"type"`
	Filter  catalog.FilterKind `json:"filter"`
	Options []string           `json:"options,omitempty"`
}

// PresetInfo names a quick filter or metric.
type PresetInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// SchemaInfo describes an entity page.
type SchemaInfo struct {
	Entity       catalog.Entity  `json:"entity"`
	Fields       []FieldInfo     `json:"fields"`
	QuickFilters []PresetInfo    `json:"quick_filters"`
	Metrics      []PresetInfo    `json:"metrics"`
	ExportFields []string        `json:"export_fields"`
	Formats      []export.Format `json:"formats"`
}

// DescribeSchemaHandler returns the entity layout. Select filters list the
// distinct values present in the loaded records.
type DescribeSchemaHandler struct {
	Workspaces Workspaces
	Formats    []export.Format
}

func NewDescribeSchemaHandler(workspaces Workspaces, formats []export.Format) *DescribeSchemaHandler {
	return &DescribeSchemaHandler{Workspaces: workspaces, Formats: formats}
}

func (h *DescribeSchemaHandler) Query(ctx context.Context, msg DescribeSchema) (SchemaInfo, error) {
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return SchemaInfo{}, err
	}
	records, err := ws.Records(ctx)
	if err != nil {
		return SchemaInfo{}, err
	}

	schema := ws.Schema()
	info := SchemaInfo{
		Entity:       schema.Entity,
		Fields:       make([]FieldInfo, 0, len(schema.Fields)),
		QuickFilters: make([]PresetInfo, 0, len(schema.QuickFilters)),
		Metrics:      make([]PresetInfo, 0, len(schema.Metrics)),
		ExportFields: append([]string(nil), schema.ExportFields...),
		Formats:      h.Formats,
	}
	for _, field := range schema.Fields {
		fi := FieldInfo{Name: field.Name, Label: field.Label, Type: field.Type, Filter: field.Filter}
		if field.Filter == catalog.FilterSelect || field.Filter == catalog.FilterMultiSelect {
			fi.Options = distinctValues(field, records)
		}
		info.Fields = append(info.Fields, fi)
	}
	for _, qf := range schema.QuickFilters {
		info.QuickFilters = append(info.QuickFilters, PresetInfo{Name: qf.Name, Label: qf.Label})
	}
	for _, m := range schema.Metrics {
		info.Metrics = append(info.Metrics, PresetInfo{Name: m.Name, Label: m.Label})
	}
	return info, nil
}

func distinctValues(field catalog.Field, records []catalog.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		v := field.Get(rec)
		values := v.List
		if v.Type != catalog.TypeList {
			values = []string{v.Text()}
		}
		for _, value := range values {
			if value != "" {
				seen[value] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// RemoteInfo summarizes remote search state.
type RemoteInfo struct {
	Active   bool   `json:"active"`
	Query    string `json:"query"`
	Results  int    `json:"results"`
	InFlight bool   `json:"in_flight"`
	Dropped  int64  `json:"dropped"`
}

// RemoteStatusHandler returns remote search state.
type RemoteStatusHandler struct {
	Workspaces Workspaces
}

func NewRemoteStatusHandler(workspaces Workspaces) *RemoteStatusHandler {
	return &RemoteStatusHandler{Workspaces: workspaces}
}

func (h *RemoteStatusHandler) Query(ctx context.Context, msg RemoteStatus) (RemoteInfo, error) {
	_ = ctx
	ws, err := resolve(h.Workspaces, msg.Entity)
	if err != nil {
		return RemoteInfo{}, err
	}
	state := ws.RemoteState()
	return RemoteInfo{
		Active:   state.Active,
		Query:    state.Query,
		Results:  len(state.Results),
		InFlight: ws.RemoteInFlight(),
		Dropped:  ws.RemoteDropped(),
	}, nil
}
