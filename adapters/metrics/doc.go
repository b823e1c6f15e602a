// Package metrics exposes catalog activity as Prometheus metrics.
//
// A Collector implements both workspace.Observer and export.MetricsHook, so a
// single instance can be shared by every workspace and the export runner.
package metrics
