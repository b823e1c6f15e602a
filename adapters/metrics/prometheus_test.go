package metrics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/workspace"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_WorkspaceActivity(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	ws, err := workspace.New(workspace.Options{
		Entity:     catalog.EntityOrders,
		SampleSize: 6,
		Observer:   c,
	})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	defer ws.Close()

	ctx := context.Background()
	if _, err := ws.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := ws.Query(ctx, workspace.View{}); err != nil {
		t.Fatalf("query: %v", err)
	}

	if got := testutil.ToFloat64(c.loads.WithLabelValues("orders", workspace.SourceSample)); got != 1 {
		t.Fatalf("expected 1 sample load, got %v", got)
	}
	if got := testutil.ToFloat64(c.loadedRecords.WithLabelValues("orders")); got != 6 {
		t.Fatalf("expected 6 records, got %v", got)
	}
	if got := testutil.ToFloat64(c.queries.WithLabelValues("orders")); got != 1 {
		t.Fatalf("expected 1 query, got %v", got)
	}
}

func TestCollector_RemoteOutcomes(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	c.ObserveRemoteSearch(catalog.EntityProducts, workspace.OutcomeApplied, 3, 20*time.Millisecond)
	c.ObserveRemoteSearch(catalog.EntityProducts, workspace.OutcomeDropped, 0, 0)
	c.ObserveRemoteSearch(catalog.EntityProducts, workspace.OutcomeDropped, 0, 0)

	if got := testutil.ToFloat64(c.searches.WithLabelValues("products", workspace.OutcomeDropped)); got != 2 {
		t.Fatalf("expected 2 dropped, got %v", got)
	}
	if got := testutil.CollectAndCount(c.searchLatency); got != 1 {
		t.Fatalf("expected one latency series, got %d", got)
	}
}

func TestCollector_ExportHook(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	runner := export.NewRunner()
	runner.Metrics = c

	records := catalog.Generate(catalog.EntityProducts, 4)
	buf := &bytes.Buffer{}
	if _, err := runner.Export(context.Background(), export.Request{
		Entity:  catalog.EntityProducts,
		Format:  export.FormatCSV,
		Records: records,
		Output:  buf,
	}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := c.Emit(context.Background(), export.MetricsEvent{
		Entity:    catalog.EntityProducts,
		Format:    export.FormatPDF,
		ErrorKind: catalog.KindExternal,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if got := testutil.ToFloat64(c.exports.WithLabelValues("products", "csv", "ok")); got != 1 {
		t.Fatalf("expected 1 csv export, got %v", got)
	}
	if got := testutil.ToFloat64(c.exportRows.WithLabelValues("products", "csv")); got != 4 {
		t.Fatalf("expected 4 rows, got %v", got)
	}
	if got := testutil.ToFloat64(c.exports.WithLabelValues("products", "pdf", "external")); got != 1 {
		t.Fatalf("expected 1 failed pdf export, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c, err := NewCollector(nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	c.ObserveQuery(catalog.EntityOrders, 3, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `shopadmin_catalog_queries_total{entity="orders"} 1`) {
		t.Fatalf("expected query counter in output, got %q", rec.Body.String())
	}
}
