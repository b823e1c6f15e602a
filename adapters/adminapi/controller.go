package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/command"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/query"
	"github.com/goliatone/go-shopadmin/suggest"
	"github.com/goliatone/go-shopadmin/workspace"
)

// DefaultBasePath is used when Config.BasePath is empty.
const DefaultBasePath = "/admin/catalog"

// DefaultMaxBufferBytes bounds an export response body.
const DefaultMaxBufferBytes int64 = 32 * 1024 * 1024

// Workspaces resolves and lists entity workspaces.
type Workspaces interface {
	Get(name string) (*workspace.Workspace, error)
	Entities() []catalog.Entity
}

// Config configures the shared admin API controller.
type Config struct {
	Workspaces     Workspaces
	BasePath       string
	Formats        []export.Format
	Logger         catalog.Logger
	MaxBufferBytes int64
}

// Controller exposes catalog handlers for multiple transports.
type Controller struct {
	workspaces     Workspaces
	basePath       string
	logger         catalog.Logger
	maxBufferBytes int64

	load         *command.LoadCatalogHandler
	runExport    *command.RunExportHandler
	bulkDelete   *command.BulkDeleteHandler
	remoteSearch *command.RemoteSearchHandler
	recordSearch *command.RecordSearchHandler
	clearHistory *command.ClearHistoryHandler
	saveSettings *command.SaveSettingsHandler
	clearFilters *command.ClearSavedFiltersHandler
	setCards     *command.SetCardsPerRowHandler

	list         *query.ListRecordsHandler
	suggestions  *query.SuggestionsHandler
	history      *query.SearchHistoryHandler
	settings     *query.GetSettingsHandler
	savedFilters *query.GetSavedFiltersHandler
	schema       *query.DescribeSchemaHandler
	remoteStatus *query.RemoteStatusHandler
}

// NewController creates a shared admin API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	formats := cfg.Formats
	if len(formats) == 0 {
		formats = []export.Format{export.FormatCSV, export.FormatJSON, export.FormatXLSX, export.FormatPDF}
	}
	ws := cfg.Workspaces
	return &Controller{
		workspaces:     ws,
		basePath:       basePath,
		logger:         catalog.LoggerOrNop(cfg.Logger),
		maxBufferBytes: maxBuffer,

		load:         command.NewLoadCatalogHandler(ws),
		runExport:    command.NewRunExportHandler(ws),
		bulkDelete:   command.NewBulkDeleteHandler(ws),
		remoteSearch: command.NewRemoteSearchHandler(ws),
		recordSearch: command.NewRecordSearchHandler(ws),
		clearHistory: command.NewClearHistoryHandler(ws),
		saveSettings: command.NewSaveSettingsHandler(ws),
		clearFilters: command.NewClearSavedFiltersHandler(ws),
		setCards:     command.NewSetCardsPerRowHandler(ws),

		list:         query.NewListRecordsHandler(ws),
		suggestions:  query.NewSuggestionsHandler(ws),
		history:      query.NewSearchHistoryHandler(ws),
		settings:     query.NewGetSettingsHandler(ws),
		savedFilters: query.NewGetSavedFiltersHandler(ws),
		schema:       query.NewDescribeSchemaHandler(ws, formats),
		remoteStatus: query.NewRemoteStatusHandler(ws),
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes catalog endpoints.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil || c.workspaces == nil {
		WriteError(res, catalog.NewError(catalog.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, catalog.NewError(catalog.KindInternal, "request is nil", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}

	suffix := strings.Trim(strings.TrimPrefix(req.Path(), c.basePath), "/")
	parts := []string{}
	if suffix != "" {
		parts = strings.Split(suffix, "/")
	}

	switch len(parts) {
	case 0:
		if req.Method() != http.MethodGet {
			writeMethodNotAllowed(res, http.MethodGet)
			return
		}
		c.handleEntities(res)
	case 1:
		if req.Method() != http.MethodGet {
			writeMethodNotAllowed(res, http.MethodGet)
			return
		}
		c.handleList(req, res, parts[0])
	case 2:
		c.routeAction(req, res, parts[0], parts[1])
	default:
		writeNotFound(res)
	}
}

func (c *Controller) routeAction(req Request, res Response, entity, action string) {
	method := req.Method()
	switch action {
	case "query":
		if method != http.MethodPost {
			writeMethodNotAllowed(res, http.MethodPost)
			return
		}
		c.handleQuery(req, res, entity)
	case "schema":
		if method != http.MethodGet {
			writeMethodNotAllowed(res, http.MethodGet)
			return
		}
		c.handleSchema(req, res, entity)
	case "suggestions":
		if method != http.MethodGet {
			writeMethodNotAllowed(res, http.MethodGet)
			return
		}
		c.handleSuggestions(req, res, entity)
	case "history":
		switch method {
		case http.MethodGet:
			c.handleHistory(req, res, entity)
		case http.MethodPost:
			c.handleRecordSearch(req, res, entity)
		case http.MethodDelete:
			c.handleClearHistory(req, res, entity)
		default:
			writeMethodNotAllowed(res, "GET,POST,DELETE")
		}
	case "export":
		if method != http.MethodPost {
			writeMethodNotAllowed(res, http.MethodPost)
			return
		}
		c.handleExport(req, res, entity)
	case "bulk-delete":
		if method != http.MethodPost {
			writeMethodNotAllowed(res, http.MethodPost)
			return
		}
		c.handleBulkDelete(req, res, entity)
	case "reload":
		if method != http.MethodPost {
			writeMethodNotAllowed(res, http.MethodPost)
			return
		}
		c.handleReload(req, res, entity)
	case "settings":
		switch method {
		case http.MethodGet:
			c.handleSettings(req, res, entity)
		case http.MethodPut:
			c.handleSaveSettings(req, res, entity)
		default:
			writeMethodNotAllowed(res, "GET,PUT")
		}
	case "filters":
		switch method {
		case http.MethodGet:
			c.handleSavedFilters(req, res, entity)
		case http.MethodDelete:
			c.handleClearFilters(req, res, entity)
		default:
			writeMethodNotAllowed(res, "GET,DELETE")
		}
	case "remote-search":
		if method != http.MethodPost {
			writeMethodNotAllowed(res, http.MethodPost)
			return
		}
		c.handleRemoteSearch(req, res, entity)
	case "remote":
		switch method {
		case http.MethodGet:
			c.handleRemoteStatus(req, res, entity)
		case http.MethodPost:
			c.handleRemoteSearch(req, res, entity)
		default:
			writeMethodNotAllowed(res, "GET,POST")
		}
	default:
		writeNotFound(res)
	}
}

func (c *Controller) handleEntities(res Response) {
	entities := c.workspaces.Entities()
	out := make([]EntityInfo, 0, len(entities))
	for _, entity := range entities {
		out = append(out, EntityInfo{Entity: string(entity), Path: c.basePath + "/" + string(entity)})
	}
	writeJSON(res, http.StatusOK, out)
}

func (c *Controller) handleList(req Request, res Response, entity string) {
	view, err := ViewFromValues(req.Values())
	if err != nil {
		WriteError(res, err)
		return
	}
	c.writeQuery(req, res, entity, view)
}

func (c *Controller) handleQuery(req Request, res Response, entity string) {
	var payload viewPayload
	if err := decodeJSON(req, &payload, true); err != nil {
		WriteError(res, err)
		return
	}
	c.writeQuery(req, res, entity, payload.toView())
}

func (c *Controller) writeQuery(req Request, res Response, entity string, view workspace.View) {
	msg := query.ListRecords{Entity: entity, View: view}
	if err := msg.Validate(); err != nil {
		WriteError(res, err)
		return
	}
	result, err := c.list.Query(req.Context(), msg)
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, result)
}

func (c *Controller) handleSchema(req Request, res Response, entity string) {
	info, err := c.schema.Query(req.Context(), query.DescribeSchema{Entity: entity})
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, info)
}

func (c *Controller) handleSuggestions(req Request, res Response, entity string) {
	suggestions, err := c.suggestions.Query(req.Context(), query.Suggestions{Entity: entity, Query: req.Values().Get(ParamQuery)})
	if err != nil {
		WriteError(res, err)
		return
	}
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	writeJSON(res, http.StatusOK, suggestions)
}

func (c *Controller) handleHistory(req Request, res Response, entity string) {
	history, err := c.history.Query(req.Context(), query.SearchHistory{Entity: entity})
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, history)
}

func (c *Controller) handleRecordSearch(req Request, res Response, entity string) {
	var payload historyPayload
	if err := decodeJSON(req, &payload, false); err != nil {
		WriteError(res, err)
		return
	}
	var history []suggest.Entry
	msg := command.RecordSearch{Entity: entity, Query: payload.Query, ResultCount: payload.ResultCount, Result: &history}
	if err := c.execute(msg, func() error { return c.recordSearch.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, history)
}

func (c *Controller) handleClearHistory(req Request, res Response, entity string) {
	msg := command.ClearHistory{Entity: entity}
	if err := c.execute(msg, func() error { return c.clearHistory.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleExport(req Request, res Response, entity string) {
	var payload exportPayload
	if err := decodeJSON(req, &payload, true); err != nil {
		WriteError(res, err)
		return
	}

	buf := newLimitedBuffer(c.maxBufferBytes)
	var result export.Result
	msg := command.RunExport{
		Entity: entity,
		Request: workspace.ExportRequest{
			View:      payload.View.toView(),
			Format:    payload.Format,
			Fields:    payload.Fields,
			Selection: export.Selection{IDs: payload.Selection.IDs},
			Locale:    payload.Locale,
			Timezone:  payload.Timezone,
			Output:    buf,
		},
		Result: &result,
	}
	if err := c.execute(msg, func() error { return c.runExport.Execute(req.Context(), msg) }); err != nil {
		c.logger.Errorf("export %s failed: %v", entity, err)
		WriteError(res, err)
		return
	}

	setDownloadHeaders(res, result.ID, result.Filename, result.ContentType)
	res.SetHeader("Content-Length", fmt.Sprintf("%d", buf.Len()))
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(buf.Bytes())
}

func (c *Controller) handleBulkDelete(req Request, res Response, entity string) {
	var payload idsPayload
	if err := decodeJSON(req, &payload, false); err != nil {
		WriteError(res, err)
		return
	}
	var removed int
	msg := command.BulkDelete{Entity: entity, IDs: payload.IDs, Result: &removed}
	if err := c.execute(msg, func() error { return c.bulkDelete.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, DeleteResponse{Removed: removed})
}

func (c *Controller) handleReload(req Request, res Response, entity string) {
	var info workspace.LoadInfo
	msg := command.LoadCatalog{Entity: entity, Result: &info}
	if err := c.execute(msg, func() error { return c.load.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, info)
}

func (c *Controller) handleSettings(req Request, res Response, entity string) {
	view, err := c.settings.Query(req.Context(), query.GetSettings{Entity: entity})
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, view)
}

func (c *Controller) handleSaveSettings(req Request, res Response, entity string) {
	var payload settingsPayload
	if err := decodeJSON(req, &payload, false); err != nil {
		WriteError(res, err)
		return
	}
	var saved prefs.Settings
	msg := command.SaveSettings{Entity: entity, Settings: payload.Settings, Result: &saved}
	if err := c.execute(msg, func() error { return c.saveSettings.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	if payload.CardsPerRow > 0 {
		cards := command.SetCardsPerRow{Entity: entity, Count: payload.CardsPerRow}
		if err := c.execute(cards, func() error { return c.setCards.Execute(req.Context(), cards) }); err != nil {
			WriteError(res, err)
			return
		}
	}
	c.handleSettings(req, res, entity)
}

func (c *Controller) handleSavedFilters(req Request, res Response, entity string) {
	saved, err := c.savedFilters.Query(req.Context(), query.GetSavedFilters{Entity: entity})
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, saved)
}

func (c *Controller) handleClearFilters(req Request, res Response, entity string) {
	msg := command.ClearSavedFilters{Entity: entity}
	if err := c.execute(msg, func() error { return c.clearFilters.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleRemoteStatus(req Request, res Response, entity string) {
	info, err := c.remoteStatus.Query(req.Context(), query.RemoteStatus{Entity: entity})
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, info)
}

func (c *Controller) handleRemoteSearch(req Request, res Response, entity string) {
	var payload remoteSearchPayload
	if err := decodeJSON(req, &payload, false); err != nil {
		WriteError(res, err)
		return
	}
	var applied bool
	msg := command.RemoteSearch{Entity: entity, Query: payload.Query, Result: &applied}
	if err := c.execute(msg, func() error { return c.remoteSearch.Execute(req.Context(), msg) }); err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, RemoteSearchResponse{Applied: applied})
}

type validator interface {
	Validate() error
}

func (c *Controller) execute(msg validator, run func() error) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return run()
}

// WriteError writes a JSON error body with a status derived from err.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := catalog.AsGoError(err)
	writeJSON(res, statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func writeNotFound(res Response) {
	WriteError(res, catalog.NewError(catalog.KindNotFound, "route not found", nil))
}

func writeMethodNotAllowed(res Response, allow string) {
	res.SetHeader("Allow", allow)
	res.WriteHeader(http.StatusMethodNotAllowed)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	case errorslib.CategoryOperation:
		switch err.TextCode {
		case "conflict", "canceled":
			return http.StatusConflict
		default:
			return http.StatusRequestTimeout
		}
	default:
		return http.StatusInternalServerError
	}
}

func setDownloadHeaders(res Response, exportID, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if exportID != "" {
		res.SetHeader("X-Export-Id", exportID)
	}
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.maxSize > 0 && int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, catalog.NewError(catalog.KindValidation, "export exceeds response size limit", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte { return b.buf.Bytes() }

func (b *limitedBuffer) Len() int { return b.buf.Len() }
