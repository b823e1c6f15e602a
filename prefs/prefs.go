package prefs

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/filter"
	"github.com/goliatone/go-shopadmin/paging"
	"github.com/goliatone/go-shopadmin/suggest"
)

// Key suffixes per entity.
const (
	SettingsSuffix      = "settings"
	SavedFiltersSuffix  = "saved-filters"
	SearchHistorySuffix = "search-history"
	CardsPerRowSuffix   = "cards-per-row"
)

const (
	ViewTable = "table"
	ViewCards = "cards"

	DefaultCardsPerRow = 3
	MaxCardsPerRow     = 6
)

// Key builds the storage key for an entity preference, e.g. "orders-settings".
func Key(entity catalog.Entity, suffix string) string {
	return string(entity) + "-" + suffix
}

// Settings are per-entity display preferences.
type Settings struct {
	AutoSaveFilters     bool     `json:"autoSaveFilters"`
	PageSize            int      `json:"pageSize"`
	ViewMode            string   `json:"viewMode"`
	VisibleColumns      []string `json:"visibleColumns,omitempty"`
	DefaultExportFormat string   `json:"defaultExportFormat"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		AutoSaveFilters:     true,
		PageSize:            paging.DefaultPageSize,
		ViewMode:            ViewTable,
		DefaultExportFormat: "csv",
	}
}

// Normalized fills unset or out-of-range settings with defaults.
func (s Settings) Normalized() Settings {
	defaults := DefaultSettings()
	if s.PageSize <= 0 || s.PageSize > paging.MaxPageSize {
		s.PageSize = defaults.PageSize
	}
	if s.ViewMode != ViewTable && s.ViewMode != ViewCards {
		s.ViewMode = defaults.ViewMode
	}
	if s.DefaultExportFormat == "" {
		s.DefaultExportFormat = defaults.DefaultExportFormat
	}
	return s
}

// SavedFilters is the persisted filter state of a page.
type SavedFilters struct {
	QuickFilter string                `json:"activeFilter,omitempty"`
	Query       string                `json:"searchQuery,omitempty"`
	Columns     filter.ColumnFilters  `json:"columnFilters,omitempty"`
	Custom      []filter.CustomFilter `json:"customFilters,omitempty"`
	Advanced    string                `json:"advancedQuery,omitempty"`
}

// Empty reports whether no filter is set.
func (f SavedFilters) Empty() bool {
	return (f.QuickFilter == "" || f.QuickFilter == "all") && f.Query == "" && len(f.Columns) == 0 && len(f.Custom) == 0 && f.Advanced == ""
}

// Preferences reads and writes typed preferences for one entity. Reads are
// defensive: malformed stored JSON is logged and treated as absent.
type Preferences struct {
	Store  Store
	Entity catalog.Entity
	Logger catalog.Logger
}

// New creates preferences for entity backed by store.
func New(store Store, entity catalog.Entity, logger catalog.Logger) *Preferences {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Preferences{Store: store, Entity: entity, Logger: catalog.LoggerOrNop(logger)}
}

// Settings returns stored settings or defaults.
func (p *Preferences) Settings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	found, err := p.readJSON(ctx, SettingsSuffix, &settings)
	if err != nil || !found {
		return DefaultSettings(), err
	}
	return settings.Normalized(), nil
}

// SaveSettings persists settings.
func (p *Preferences) SaveSettings(ctx context.Context, settings Settings) (Settings, error) {
	settings = settings.Normalized()
	return settings, p.writeJSON(ctx, SettingsSuffix, settings)
}

// SavedFilters returns the saved filter state, if any.
func (p *Preferences) SavedFilters(ctx context.Context) (SavedFilters, bool, error) {
	var saved SavedFilters
	found, err := p.readJSON(ctx, SavedFiltersSuffix, &saved)
	if err != nil || !found {
		return SavedFilters{}, false, err
	}
	return saved, true, nil
}

// SaveFilters persists filter state. Empty state removes the key.
func (p *Preferences) SaveFilters(ctx context.Context, saved SavedFilters) error {
	if saved.Empty() {
		return p.ClearSavedFilters(ctx)
	}
	return p.writeJSON(ctx, SavedFiltersSuffix, saved)
}

// ClearSavedFilters removes saved filters.
func (p *Preferences) ClearSavedFilters(ctx context.Context) error {
	return p.remove(ctx, SavedFiltersSuffix)
}

// History returns the search history, newest first.
func (p *Preferences) History(ctx context.Context) ([]suggest.Entry, error) {
	var history []suggest.Entry
	found, err := p.readJSON(ctx, SearchHistorySuffix, &history)
	if err != nil || !found {
		return nil, err
	}
	return suggest.Normalize(history), nil
}

// SaveHistory persists the search history.
func (p *Preferences) SaveHistory(ctx context.Context, history []suggest.Entry) error {
	return p.writeJSON(ctx, SearchHistorySuffix, suggest.Normalize(history))
}

// ClearHistory removes the search history.
func (p *Preferences) ClearHistory(ctx context.Context) error {
	return p.remove(ctx, SearchHistorySuffix)
}

// CardsPerRow returns the card grid width, DefaultCardsPerRow when unset.
func (p *Preferences) CardsPerRow(ctx context.Context) (int, error) {
	raw, ok, err := p.Store.Get(ctx, Key(p.Entity, CardsPerRowSuffix))
	if err != nil {
		return DefaultCardsPerRow, catalog.NewError(catalog.KindInternal, "read cards per row", err)
	}
	if !ok {
		return DefaultCardsPerRow, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxCardsPerRow {
		p.logger().Errorf("ignoring malformed %s: %q", Key(p.Entity, CardsPerRowSuffix), raw)
		return DefaultCardsPerRow, nil
	}
	return n, nil
}

// SetCardsPerRow stores the card grid width clamped to [1, MaxCardsPerRow].
func (p *Preferences) SetCardsPerRow(ctx context.Context, n int) error {
	n = max(1, min(n, MaxCardsPerRow))
	if err := p.Store.Set(ctx, Key(p.Entity, CardsPerRowSuffix), strconv.Itoa(n)); err != nil {
		return catalog.NewError(catalog.KindInternal, "write cards per row", err)
	}
	return nil
}

func (p *Preferences) readJSON(ctx context.Context, suffix string, out any) (bool, error) {
	key := Key(p.Entity, suffix)
	raw, ok, err := p.Store.Get(ctx, key)
	if err != nil {
		return false, catalog.NewError(catalog.KindInternal, "read "+key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		p.logger().Errorf("ignoring malformed %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (p *Preferences) writeJSON(ctx context.Context, suffix string, value any) error {
	key := Key(p.Entity, suffix)
	payload, err := json.Marshal(value)
	if err != nil {
		return catalog.NewError(catalog.KindInternal, "encode "+key, err)
	}
	if err := p.Store.Set(ctx, key, string(payload)); err != nil {
		return catalog.NewError(catalog.KindInternal, "write "+key, err)
	}
	return nil
}

func (p *Preferences) remove(ctx context.Context, suffix string) error {
	key := Key(p.Entity, suffix)
	if err := p.Store.Remove(ctx, key); err != nil {
		return catalog.NewError(catalog.KindInternal, "remove "+key, err)
	}
	return nil
}

func (p *Preferences) logger() catalog.Logger {
	return catalog.LoggerOrNop(p.Logger)
}
