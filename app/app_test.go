package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-shopadmin/command"
	"github.com/goliatone/go-shopadmin/config"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/query"
	"github.com/goliatone/go-shopadmin/workspace"
)

func newCacheServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/cache/data" || q.Get("table") != "orders" {
			http.Error(w, "missing", http.StatusNotFound)
			return
		}
		switch q.Get("key") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{"keys": []string{"shopify:orders:chunk:0"}})
		case "chunk:0":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{
				map[string]any{"id": 1, "customer_name": "Ada", "total_price": "12.50"},
				map[string]any{"id": 2, "customer_name": "Grace", "total_price": "40"},
			}})
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Export.PDF.Engine = PDFEngineText
	cfg.Backend.SampleSize = 5
	return cfg
}

func TestNew_LoadsFromCacheAndFallsBack(t *testing.T) {
	server := newCacheServer(t)
	cfg := testConfig(t)
	cfg.Backend.URL = server.URL

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	orders, err := a.Workspaces.Get("orders")
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	got, err := orders.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != 2 || got[0].Party != "Ada" {
		t.Fatalf("expected cached orders, got %+v", got)
	}

	products, err := a.Workspaces.Get("products")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	result, err := products.Query(context.Background(), workspace.View{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.Source != workspace.SourceSample || result.Page.Total != 5 {
		t.Fatalf("expected sample fallback, got %+v", result)
	}
}

func TestNew_OfflineSQLitePrefs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Offline = true
	cfg.Prefs.Driver = config.DriverSQLite
	cfg.Prefs.DSN = "file:" + filepath.Join(t.TempDir(), "prefs.db")

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ws, err := a.Workspaces.Get("orders")
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	settings, err := ws.Settings(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settings.PageSize = 50
	if _, err := ws.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	ws, _ = reopened.Workspaces.Get("orders")
	settings, err = ws.Settings(context.Background())
	if err != nil || settings.PageSize != 50 {
		t.Fatalf("expected persisted page size, got %+v %v", settings, err)
	}
}

func TestNew_TextPDFExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Offline = true

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	ws, _ := a.Workspaces.Get("products")
	buf := &bytes.Buffer{}
	if _, err := ws.Export(context.Background(), workspace.ExportRequest{Format: export.FormatPDF, Output: buf}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Fatalf("expected pdf output")
	}
}

func TestRegisterHandlers_DispatchAndQuery(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Offline = true
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	subs, err := RegisterHandlers(a.Workspaces, a.Runner.Renderers.Formats())
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	defer Unsubscribe(subs)

	info, err := dispatcher.DispatchWithResult[command.LoadCatalog, workspace.LoadInfo](
		context.Background(),
		command.LoadCatalog{Entity: "orders"},
	)
	if err != nil {
		t.Fatalf("dispatch load: %v", err)
	}
	if info.Count != 5 {
		t.Fatalf("expected 5 records, got %+v", info)
	}

	result, err := dispatcher.Query[query.ListRecords, workspace.Result](
		context.Background(),
		query.ListRecords{Entity: "orders", View: workspace.View{PageSize: 2}},
	)
	if err != nil {
		t.Fatalf("query records: %v", err)
	}
	if len(result.Records) != 2 || result.Page.TotalPages != 3 {
		t.Fatalf("unexpected result %+v", result.Page)
	}
}

func TestRegisterHandlers_RequiresWorkspaces(t *testing.T) {
	if _, err := RegisterHandlers(nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSlogLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogLogger(buf, "info")
	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}
