package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopadmin"

// Collector records workspace and export activity.
type Collector struct {
	registry *prometheus.Registry

	loads         *prometheus.CounterVec
	loadedRecords *prometheus.GaugeVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	matched       *prometheus.GaugeVec
	searches      *prometheus.CounterVec
	searchLatency *prometheus.HistogramVec
	exports       *prometheus.CounterVec
	exportRows    *prometheus.CounterVec
	exportBytes   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
}

// NewCollector registers the catalog metrics on reg. A nil reg gets a fresh
// registry.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: reg,
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "catalog_loads_total",
			Help: "Catalog loads by entity and data source.",
		}, []string{"entity", "source"}),
		loadedRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "catalog_records",
			Help: "Records held by the workspace after the last load.",
		}, []string{"entity"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "catalog_queries_total",
			Help: "Filtered list queries by entity.",
		}, []string{"entity"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "catalog_query_duration_seconds",
			Help:    "Filter pipeline latency.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"entity"}),
		matched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "catalog_query_matched",
			Help: "Records matched by the most recent query.",
		}, []string{"entity"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "remote_searches_total",
			Help: "Remote searches by entity and outcome.",
		}, []string{"entity", "outcome"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "remote_search_duration_seconds",
			Help:    "Remote search latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "exports_total",
			Help: "Exports by entity, format and result.",
		}, []string{"entity", "format", "result"}),
		exportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "export_rows_total",
			Help: "Rows written by successful exports.",
		}, []string{"entity", "format"}),
		exportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "export_bytes_total",
			Help: "Bytes written by successful exports.",
		}, []string{"entity", "format"}),
		exportLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "export_duration_seconds",
			Help:    "Export render latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}

	for _, collector := range []prometheus.Collector{
		c.loads, c.loadedRecords, c.queries, c.queryDuration, c.matched,
		c.searches, c.searchLatency,
		c.exports, c.exportRows, c.exportBytes, c.exportLatency,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, catalog.NewError(catalog.KindInternal, "register metrics", err)
		}
	}
	return c, nil
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveLoad(entity catalog.Entity, source string, records int, _ time.Duration) {
	c.loads.WithLabelValues(string(entity), source).Inc()
	c.loadedRecords.WithLabelValues(string(entity)).Set(float64(records))
}

func (c *Collector) ObserveQuery(entity catalog.Entity, matched int, took time.Duration) {
	c.queries.WithLabelValues(string(entity)).Inc()
	c.queryDuration.WithLabelValues(string(entity)).Observe(took.Seconds())
	c.matched.WithLabelValues(string(entity)).Set(float64(matched))
}

func (c *Collector) ObserveRemoteSearch(entity catalog.Entity, outcome string, _ int, took time.Duration) {
	c.searches.WithLabelValues(string(entity), outcome).Inc()
	if outcome != workspace.OutcomeDropped {
		c.searchLatency.WithLabelValues(string(entity)).Observe(took.Seconds())
	}
}

// Emit implements export.MetricsHook.
func (c *Collector) Emit(_ context.Context, evt export.MetricsEvent) error {
	result := "ok"
	if evt.ErrorKind != "" {
		result = string(evt.ErrorKind)
	}
	entity, format := string(evt.Entity), string(evt.Format)
	c.exports.WithLabelValues(entity, format, result).Inc()
	c.exportLatency.WithLabelValues(format).Observe(evt.Duration.Seconds())
	if evt.ErrorKind == "" {
		c.exportRows.WithLabelValues(entity, format).Add(float64(evt.Rows))
		c.exportBytes.WithLabelValues(entity, format).Add(float64(evt.Bytes))
	}
	return nil
}

var (
	_ workspace.Observer = (*Collector)(nil)
	_ export.MetricsHook = (*Collector)(nil)
)
