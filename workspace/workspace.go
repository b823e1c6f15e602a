package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/filter"
	"github.com/goliatone/go-shopadmin/paging"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/remote"
	"github.com/goliatone/go-shopadmin/suggest"
)

// DefaultSampleSize is the number of sample records used when the cache
// cannot be read.
const DefaultSampleSize = 50

// Source values reported by Load.
const (
	SourceCache  = "cache"
	SourceSample = "sample"
)

// TableSource reads every raw record of a cached table.
type TableSource interface {
	FetchTable(ctx context.Context, table string) ([]any, error)
}

// RemoteSearcher runs a remote search and reconciles hits with local records.
type RemoteSearcher interface {
	Search(ctx context.Context, query string, local []catalog.Record) []catalog.Record
}

// Options configure a Workspace.
type Options struct {
	Entity     catalog.Entity
	Table      string
	Source     TableSource
	Remote     RemoteSearcher
	Prefs      *prefs.Preferences
	Exporter   *export.Runner
	Observer   Observer
	Logger     catalog.Logger
	Debounce   time.Duration
	SampleSize int
	Location   *time.Location
	Now        func() time.Time
}

// View is everything a page sends when it asks for records.
type View struct {
	QuickFilter string                `json:"filter,omitempty"`
	Query       string                `json:"q,omitempty"`
	Columns     filter.ColumnFilters  `json:"columns,omitempty"`
	Custom      []filter.CustomFilter `json:"custom,omitempty"`
	Advanced    string                `json:"adv,omitempty"`
	Remote      bool                  `json:"remote,omitempty"`
	Page        int                   `json:"page,omitempty"`
	PageSize    int                   `json:"page_size,omitempty"`
}

// Result is one page of filtered records plus the figures around it.
type Result struct {
	Entity        catalog.Entity     `json:"entity"`
	Records       []catalog.Record   `json:"records"`
	Page          paging.Info        `json:"page"`
	KPIs          []paging.KPI       `json:"kpis"`
	Conditions    []filter.Condition `json:"conditions,omitempty"`
	AdvancedValid bool               `json:"advanced_valid"`
	RemoteApplied bool               `json:"remote_applied"`
	RemotePending bool               `json:"remote_pending"`
	Source        string             `json:"source"`
	Notice        string             `json:"notice,omitempty"`
}

// LoadInfo describes the outcome of Load.
type LoadInfo struct {
	Count  int    `json:"count"`
	Source string `json:"source"`
	Notice string `json:"notice,omitempty"`
}

// ExportRequest asks for an export of the current view or of selected ids.
type ExportRequest struct {
	View      View
	Format    export.Format
	Fields    []string
	Selection export.Selection
	Locale    string
	Timezone  string
	Output    io.Writer
}

// Workspace owns the records and UI state of one entity page.
type Workspace struct {
	schema   *catalog.Schema
	opts     Options
	logger   catalog.Logger
	observer Observer
	memo     *filter.Memo
	engine   suggest.Engine

	latch     remote.Latch
	seq       remote.Sequencer
	debouncer *remote.Debouncer
	baseCtx   context.Context
	cancel    context.CancelFunc

	mu      sync.RWMutex
	loaded  bool
	records []catalog.Record
	version uint64
	source  string
	notice  string
	remote  filter.RemoteState
	closed  bool
}

// New creates a workspace for opts.Entity.
func New(opts Options) (*Workspace, error) {
	schema, ok := catalog.SchemaFor(opts.Entity)
	if !ok {
		return nil, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unknown entity %q", opts.Entity), nil)
	}
	if opts.Table == "" {
		opts.Table = string(schema.Entity)
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := catalog.LoggerOrNop(opts.Logger)
	if opts.Prefs == nil {
		opts.Prefs = prefs.New(prefs.NewMemoryStore(), schema.Entity, logger)
	}
	if opts.Exporter == nil {
		opts.Exporter = export.NewRunner()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Workspace{
		schema:   schema,
		opts:     opts,
		logger:   logger,
		observer: observer,
		memo: &filter.Memo{Pipeline: filter.Pipeline{Evaluator: filter.Evaluator{
			Now:      opts.Now,
			Location: opts.Location,
		}}},
		debouncer: remote.NewDebouncer(opts.Debounce),
		baseCtx:   ctx,
		cancel:    cancel,
	}, nil
}

// Entity returns the workspace entity.
func (w *Workspace) Entity() catalog.Entity { return w.schema.Entity }

// Schema returns the entity schema.
func (w *Workspace) Schema() *catalog.Schema { return w.schema }

// Load reads the cached table. When the cache cannot be read the workspace
// falls back to deterministic sample data and records a notice.
func (w *Workspace) Load(ctx context.Context) (LoadInfo, error) {
	started := w.opts.Now()
	if w.opts.Source == nil {
		return w.replace(catalog.Generate(w.schema.Entity, w.opts.SampleSize), SourceSample, "", started), nil
	}

	raws, err := w.opts.Source.FetchTable(ctx, w.opts.Table)
	if err != nil {
		if ctx.Err() != nil {
			return LoadInfo{}, catalog.NewError(catalog.KindCanceled, "load canceled", ctx.Err())
		}
		w.logger.Errorf("load %s from cache failed: %v", w.schema.Entity, err)
		notice := fmt.Sprintf("Could not load %s from the cache (%v). Showing sample data.", w.schema.Entity, err)
		return w.replace(catalog.Generate(w.schema.Entity, w.opts.SampleSize), SourceSample, notice, started), nil
	}
	return w.replace(catalog.MapRecords(w.schema.Entity, raws, w.opts.Now()), SourceCache, "", started), nil
}

// Reload re-reads the cached table without the sample fallback. A failed
// fetch returns an external error and leaves the current records in place.
// Without a cache source it behaves like Load.
func (w *Workspace) Reload(ctx context.Context) (LoadInfo, error) {
	if w.opts.Source == nil {
		return w.Load(ctx)
	}
	started := w.opts.Now()
	raws, err := w.opts.Source.FetchTable(ctx, w.opts.Table)
	if err != nil {
		if ctx.Err() != nil {
			return LoadInfo{}, catalog.NewError(catalog.KindCanceled, "reload canceled", ctx.Err())
		}
		return LoadInfo{}, catalog.NewError(catalog.KindExternal, fmt.Sprintf("reload %s from cache", w.schema.Entity), err)
	}
	return w.replace(catalog.MapRecords(w.schema.Entity, raws, w.opts.Now()), SourceCache, "", started), nil
}

func (w *Workspace) replace(records []catalog.Record, source, notice string, started time.Time) LoadInfo {
	w.mu.Lock()
	w.records = records
	w.version++
	w.loaded = true
	w.source = source
	w.notice = notice
	w.remote = filter.RemoteState{}
	w.mu.Unlock()
	w.memo.Reset()

	w.logger.Infof("loaded %d %s from %s", len(records), w.schema.Entity, source)
	w.observer.ObserveLoad(w.schema.Entity, source, len(records), w.opts.Now().Sub(started))
	return LoadInfo{Count: len(records), Source: source, Notice: notice}
}

func (w *Workspace) ensureLoaded(ctx context.Context) error {
	w.mu.RLock()
	loaded := w.loaded
	w.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err := w.Load(ctx)
	return err
}

// Records returns a copy of the loaded records.
func (w *Workspace) Records(ctx context.Context) ([]catalog.Record, error) {
	if err := w.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]catalog.Record, len(w.records))
	copy(out, w.records)
	return out, nil
}

// Filter runs the pipeline for view and returns the full filtered set.
func (w *Workspace) Filter(ctx context.Context, view View) ([]catalog.Record, filter.ParseResult, bool, error) {
	if err := w.ensureLoaded(ctx); err != nil {
		return nil, filter.ParseResult{}, false, err
	}

	parsed := filter.Parse(w.schema, view.Advanced)

	w.mu.RLock()
	records := w.records
	version := w.version
	state := filter.State{
		QuickFilter: view.QuickFilter,
		Query:       view.Query,
		Columns:     view.Columns,
		Custom:      view.Custom,
		Advanced:    parsed.Conditions,
	}
	if view.Remote {
		state.Remote = filter.RemoteState{Active: true, Query: w.remote.Query, Results: w.remote.Results}
	}
	w.mu.RUnlock()

	out := w.memo.Apply(w.schema, records, version, state)
	return out, parsed, state.RemoteApplies(), nil
}

// Query filters, pages and summarizes the records for view.
func (w *Workspace) Query(ctx context.Context, view View) (Result, error) {
	started := w.opts.Now()
	filtered, parsed, remoteApplied, err := w.Filter(ctx, view)
	if err != nil {
		return Result{}, err
	}

	settings, err := w.opts.Prefs.Settings(ctx)
	if err != nil {
		w.logger.Errorf("read %s settings: %v", w.schema.Entity, err)
	}
	pageSize := view.PageSize
	if pageSize <= 0 {
		pageSize = settings.PageSize
	}
	page, info := paging.Slice(filtered, view.Page, pageSize)

	if settings.AutoSaveFilters {
		if err := w.opts.Prefs.SaveFilters(ctx, savedFiltersFromView(view)); err != nil {
			w.logger.Errorf("save %s filters: %v", w.schema.Entity, err)
		}
	}

	pending := false
	if view.Remote && !remoteApplied && utf8.RuneCountInString(strings.TrimSpace(view.Query)) >= remote.MinQueryLength {
		pending = w.ScheduleRemoteSearch(view.Query)
	}

	w.mu.RLock()
	source, notice := w.source, w.notice
	w.mu.RUnlock()

	w.observer.ObserveQuery(w.schema.Entity, len(filtered), w.opts.Now().Sub(started))
	return Result{
		Entity:        w.schema.Entity,
		Records:       page,
		Page:          info,
		KPIs:          paging.Compute(w.schema, filtered),
		Conditions:    parsed.Conditions,
		AdvancedValid: parsed.IsValid,
		RemoteApplied: remoteApplied,
		RemotePending: pending,
		Source:        source,
		Notice:        notice,
	}, nil
}

func savedFiltersFromView(view View) prefs.SavedFilters {
	return prefs.SavedFilters{
		QuickFilter: view.QuickFilter,
		Query:       view.Query,
		Columns:     view.Columns,
		Custom:      view.Custom,
		Advanced:    view.Advanced,
	}
}

// Suggest returns typeahead suggestions for query.
func (w *Workspace) Suggest(ctx context.Context, query string) ([]suggest.Suggestion, error) {
	if err := w.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	history, err := w.opts.Prefs.History(ctx)
	if err != nil {
		w.logger.Errorf("read %s history: %v", w.schema.Entity, err)
	}
	w.mu.RLock()
	records := w.records
	w.mu.RUnlock()
	return w.engine.Suggest(w.schema, query, records, history), nil
}

// RecordSearch adds query to the search history.
func (w *Workspace) RecordSearch(ctx context.Context, query string, resultCount int) ([]suggest.Entry, error) {
	history, err := w.opts.Prefs.History(ctx)
	if err != nil {
		return nil, err
	}
	history = suggest.Record(history, query, resultCount, w.opts.Now())
	if err := w.opts.Prefs.SaveHistory(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

// History returns the search history, newest first.
func (w *Workspace) History(ctx context.Context) ([]suggest.Entry, error) {
	return w.opts.Prefs.History(ctx)
}

// ClearHistory removes the search history.
func (w *Workspace) ClearHistory(ctx context.Context) error {
	return w.opts.Prefs.ClearHistory(ctx)
}

// RunRemoteSearch runs a remote search now. It returns false without
// searching when another search is in flight or the workspace is closed.
// Results are applied only if no newer search was issued meanwhile.
func (w *Workspace) RunRemoteSearch(ctx context.Context, query string) bool {
	if w.opts.Remote == nil || w.isClosed() {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(query)) < remote.MinQueryLength {
		return false
	}
	if !w.latch.TryAcquire() {
		w.logger.Debugf("remote search %q dropped, another search is in flight", query)
		w.observer.ObserveRemoteSearch(w.schema.Entity, OutcomeDropped, 0, 0)
		return false
	}
	defer w.latch.Release()

	seq := w.seq.Next()
	started := w.opts.Now()

	w.mu.RLock()
	local := w.records
	w.mu.RUnlock()

	results := w.opts.Remote.Search(ctx, query, local)
	if results == nil {
		results = []catalog.Record{}
	}

	applied := w.seq.Commit(seq, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		w.remote = filter.RemoteState{Active: true, Query: strings.TrimSpace(query), Results: results}
	})

	outcome := OutcomeApplied
	if !applied || w.isClosed() {
		outcome = OutcomeStale
	}
	w.observer.ObserveRemoteSearch(w.schema.Entity, outcome, len(results), w.opts.Now().Sub(started))
	return outcome == OutcomeApplied
}

// ScheduleRemoteSearch debounces a remote search for query. It reports
// whether a search was scheduled.
func (w *Workspace) ScheduleRemoteSearch(query string) bool {
	if w.opts.Remote == nil || w.isClosed() {
		return false
	}
	w.debouncer.Trigger(func() {
		w.RunRemoteSearch(w.baseCtx, query)
	})
	return true
}

// RemoteState returns the current remote search results.
func (w *Workspace) RemoteState() filter.RemoteState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.remote
}

// RemoteInFlight reports whether a remote search is running.
func (w *Workspace) RemoteInFlight() bool { return w.latch.InFlight() }

// RemoteDropped returns how many remote searches were dropped by the latch.
func (w *Workspace) RemoteDropped() int64 { return w.latch.Dropped() }

// Export writes the filtered view, or the selected ids within it, to
// req.Output.
func (w *Workspace) Export(ctx context.Context, req ExportRequest) (export.Result, error) {
	records, _, _, err := w.Filter(ctx, req.View)
	if err != nil {
		return export.Result{}, err
	}

	format := req.Format
	if format == "" {
		settings, err := w.opts.Prefs.Settings(ctx)
		if err != nil {
			w.logger.Errorf("read %s settings: %v", w.schema.Entity, err)
		}
		format = export.Format(settings.DefaultExportFormat)
	}

	return w.opts.Exporter.Export(ctx, export.Request{
		Entity:    w.schema.Entity,
		Format:    format,
		Fields:    req.Fields,
		Records:   records,
		Selection: req.Selection,
		Locale:    req.Locale,
		Timezone:  req.Timezone,
		Now:       w.opts.Now(),
		Output:    req.Output,
	})
}

// BulkDelete removes records by id from this session only. The cache is not
// modified and a reload restores them.
func (w *Workspace) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if err := w.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	without := func(records []catalog.Record) ([]catalog.Record, int) {
		out := make([]catalog.Record, 0, len(records))
		for _, rec := range records {
			if _, ok := drop[rec.ID]; ok {
				continue
			}
			out = append(out, rec)
		}
		return out, len(records) - len(out)
	}

	w.mu.Lock()
	var removed int
	w.records, removed = without(w.records)
	if w.remote.Results != nil {
		w.remote.Results, _ = without(w.remote.Results)
	}
	w.version++
	w.mu.Unlock()
	w.memo.Reset()

	w.logger.Infof("removed %d %s from session", removed, w.schema.Entity)
	return removed, nil
}

// Settings returns the stored settings.
func (w *Workspace) Settings(ctx context.Context) (prefs.Settings, error) {
	return w.opts.Prefs.Settings(ctx)
}

// SaveSettings stores settings. Turning auto-save off clears saved filters.
func (w *Workspace) SaveSettings(ctx context.Context, settings prefs.Settings) (prefs.Settings, error) {
	saved, err := w.opts.Prefs.SaveSettings(ctx, settings)
	if err != nil {
		return saved, err
	}
	if !saved.AutoSaveFilters {
		if err := w.opts.Prefs.ClearSavedFilters(ctx); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// SavedFilters returns the saved view when auto-save is enabled.
func (w *Workspace) SavedFilters(ctx context.Context) (View, bool, error) {
	saved, ok, err := w.opts.Prefs.SavedFilters(ctx)
	if err != nil || !ok {
		return View{}, false, err
	}
	return View{
		QuickFilter: saved.QuickFilter,
		Query:       saved.Query,
		Columns:     saved.Columns,
		Custom:      saved.Custom,
		Advanced:    saved.Advanced,
	}, true, nil
}

// ClearSavedFilters removes saved filters.
func (w *Workspace) ClearSavedFilters(ctx context.Context) error {
	return w.opts.Prefs.ClearSavedFilters(ctx)
}

// Preferences exposes the typed preference accessors.
func (w *Workspace) Preferences() *prefs.Preferences { return w.opts.Prefs }

// MemoStats returns pipeline cache hits and misses.
func (w *Workspace) MemoStats() (hits, misses int64) {
	return w.memo.Hits(), w.memo.Misses()
}

// Close stops pending remote searches. Results that arrive later are ignored.
func (w *Workspace) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.debouncer.Stop()
	w.cancel()
	return nil
}

func (w *Workspace) isClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}
