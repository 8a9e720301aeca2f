// Package flowturi provides a minimal public façade for editing diagrams and
// generating their synthetic historical series without importing internal
// packages. It re-exports the core diagram types and wraps the editor and the
// tick-series generator.
package flowturi
