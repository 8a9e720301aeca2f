// Package metrics exposes Prometheus collectors for the editor, the export
// pipeline and the HTTP API. Each Registry owns its own prometheus.Registry
// so tests can create isolated instances.
package metrics
