// Package exporttemplate renders export rows into a self-contained HTML
// table. The PDF adapter feeds its output to a browser engine.
//
// Renderer uses a built-in html/template named "export" unless Templates is
// set. Rows are buffered up to MaxRows (DefaultMaxBufferedRows by default).
package exporttemplate
