// Package exportpdf renders PDF exports.
//
// Renderer converts rows to an HTML table (see adapters/template) and hands
// it to an Engine such as ChromiumEngine. When no engine is configured or
// the engine reports ErrEngineUnavailable, rows are laid out as paginated
// monospace text by a built-in PDF writer.
package exportpdf
