package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/workspace"
)

var fixedNow = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

type stubRequest struct {
	method string
	parsed *url.URL
	body   string
}

func newStubRequest(t *testing.T, method, raw, body string) stubRequest {
	t.Helper()
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return stubRequest{method: method, parsed: parsed, body: body}
}

func (s stubRequest) Context() context.Context { return context.Background() }
func (s stubRequest) Method() string           { return s.method }
func (s stubRequest) Path() string             { return s.parsed.Path }
func (s stubRequest) Values() url.Values       { return s.parsed.Query() }
func (s stubRequest) Body() io.ReadCloser {
	if s.body == "" {
		return nil
	}
	return io.NopCloser(strings.NewReader(s.body))
}

type stubResponse struct {
	status  int
	headers http.Header
	body    bytes.Buffer
}

func newStubResponse() *stubResponse {
	return &stubResponse{headers: http.Header{}}
}

func (s *stubResponse) SetHeader(name, value string) { s.headers.Set(name, value) }
func (s *stubResponse) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
}
func (s *stubResponse) Write(data []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.body.Write(data)
}
func (s *stubResponse) WriteJSON(status int, payload any) error {
	s.SetHeader("Content-Type", "application/json")
	s.WriteHeader(status)
	return json.NewEncoder(&s.body).Encode(payload)
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	registry := workspace.NewRegistry()
	for _, entity := range []catalog.Entity{catalog.EntityOrders, catalog.EntityProducts} {
		ws, err := workspace.New(workspace.Options{
			Entity:     entity,
			SampleSize: 12,
			Now:        func() time.Time { return fixedNow },
		})
		if err != nil {
			t.Fatalf("new workspace: %v", err)
		}
		if err := registry.Register(ws); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	t.Cleanup(func() { _ = registry.Close() })
	return NewController(Config{Workspaces: registry})
}

func serve(t *testing.T, c *Controller, method, raw, body string) *stubResponse {
	t.Helper()
	res := newStubResponse()
	c.Serve(newStubRequest(t, method, raw, body), res)
	return res
}

func TestController_ListEntities(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodGet, "/admin/catalog", "")
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	var entities []EntityInfo
	if err := json.Unmarshal(res.body.Bytes(), &entities); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entities) != 2 || entities[0].Path != "/admin/catalog/orders" {
		t.Fatalf("unexpected entities %+v", entities)
	}
}

func TestController_ListRecordsPaged(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodGet, "/admin/catalog/orders?page=2&page_size=5", "")
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	var out struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
		Page struct {
			Page  int `json:"page"`
			Total int `json:"total"`
		} `json:"page"`
	}
	if err := json.Unmarshal(res.body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Records) != 5 || out.Page.Total != 12 {
		t.Fatalf("unexpected page %+v", out)
	}
}

func TestController_InvalidQueryParam(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodGet, "/admin/catalog/orders?page=abc", "")
	if res.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}
	var body ErrorResponse
	if err := json.Unmarshal(res.body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation" {
		t.Fatalf("expected validation code, got %+v", body.Error)
	}
}

func TestController_UnknownEntity(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodGet, "/admin/catalog/customers", "")
	if res.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.status)
	}
}

func TestController_MethodNotAllowed(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodDelete, "/admin/catalog/orders/export", "")
	if res.status != http.StatusMethodNotAllowed || res.headers.Get("Allow") != http.MethodPost {
		t.Fatalf("expected 405 with Allow, got %d %q", res.status, res.headers.Get("Allow"))
	}
}

func TestController_ExportDownload(t *testing.T) {
	body := `{"format":"csv","fields":["id","title"],"selection":{"ids":["product-1","product-2"]}}`
	res := serve(t, newTestController(t), http.MethodPost, "/admin/catalog/products/export", body)
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	if got := res.headers.Get("Content-Disposition"); got != `attachment; filename="products_export_2024-03-05.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if res.headers.Get("X-Export-Id") == "" {
		t.Fatalf("expected export id header")
	}
	lines := strings.Split(strings.TrimSpace(res.body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", res.body.String())
	}
}

func TestController_ExportRejectsUnknownFields(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodPost, "/admin/catalog/products/export", `{"nope":true}`)
	if res.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}
}

func TestController_BulkDeleteThenReload(t *testing.T) {
	c := newTestController(t)
	res := serve(t, c, http.MethodPost, "/admin/catalog/orders/bulk-delete", `{"ids":["order-1","order-2","missing"]}`)
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	var deleted DeleteResponse
	if err := json.Unmarshal(res.body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if deleted.Removed != 2 {
		t.Fatalf("expected 2 removed, got %d", deleted.Removed)
	}

	res = serve(t, c, http.MethodPost, "/admin/catalog/orders/reload", "")
	var info workspace.LoadInfo
	if err := json.Unmarshal(res.body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Count != 12 {
		t.Fatalf("expected reload to restore 12 records, got %+v", info)
	}
}

func TestController_SettingsRoundTrip(t *testing.T) {
	c := newTestController(t)
	body := `{"autoSaveFilters":false,"pageSize":50,"viewMode":"cards","defaultExportFormat":"Excel","cardsPerRow":4}`
	res := serve(t, c, http.MethodPut, "/admin/catalog/products/settings", body)
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	var got struct {
		PageSize            int    `json:"pageSize"`
		DefaultExportFormat string `json:"defaultExportFormat"`
		CardsPerRow         int    `json:"cardsPerRow"`
	}
	if err := json.Unmarshal(res.body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PageSize != 50 || got.DefaultExportFormat != "xlsx" || got.CardsPerRow != 4 {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestController_HistoryLifecycle(t *testing.T) {
	c := newTestController(t)
	res := serve(t, c, http.MethodPost, "/admin/catalog/orders/history", `{"query":"ada","resultCount":3}`)
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	res = serve(t, c, http.MethodDelete, "/admin/catalog/orders/history", "")
	if res.status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.status)
	}
	res = serve(t, c, http.MethodGet, "/admin/catalog/orders/history", "")
	if strings.TrimSpace(res.body.String()) != "[]" {
		t.Fatalf("expected empty history, got %q", res.body.String())
	}
}

func TestController_RemoteStatusIdle(t *testing.T) {
	res := serve(t, newTestController(t), http.MethodGet, "/admin/catalog/orders/remote", "")
	if res.status != http.StatusOK || !strings.Contains(res.body.String(), `"active":false`) {
		t.Fatalf("unexpected remote status %d %s", res.status, res.body.String())
	}
}

func TestViewFromValues_Columns(t *testing.T) {
	values := url.Values{
		"col.status":    {"paid", "pending"},
		"col.customer":  {"ada"},
		"col.total.min": {"10"},
		"col.total.max": {"99.5"},
		ParamAdvanced:   {"total:>5"},
		ParamRemote:     {"true"},
	}
	view, err := ViewFromValues(values)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := view.Columns["status"].Values; len(got) != 2 {
		t.Fatalf("expected multi values, got %+v", view.Columns["status"])
	}
	if view.Columns["customer"].Text != "ada" {
		t.Fatalf("expected text filter, got %+v", view.Columns["customer"])
	}
	r := view.Columns["total"].Range
	if r == nil || r.Min == nil || r.Max == nil || *r.Min != 10 || *r.Max != 99.5 {
		t.Fatalf("unexpected range %+v", r)
	}
	if !view.Remote || view.Advanced != "total:>5" {
		t.Fatalf("unexpected view %+v", view)
	}

	if _, err := ViewFromValues(url.Values{"col.total.min": {"lots"}}); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
