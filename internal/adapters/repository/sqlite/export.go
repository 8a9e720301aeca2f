// Package sqlite stores export artifacts as rows in a SQLite database, one
// row per connection per tick.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	_ "modernc.org/sqlite"
)

// Sink implements export.Sink for SQLite
type Sink struct {
	db          *sql.DB
	exportTable string
	valuesTable string
}

// Open opens (or creates) a SQLite database at path, e.g. "exports.db" or
// ":memory:", and ensures the tables exist.
func Open(ctx context.Context, path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := NewSink(db)
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSink creates a new SQLite export sink on an open database
func NewSink(db *sql.DB) *Sink {
	return &Sink{
		db:          db,
		exportTable: "exports",
		valuesTable: "tick_values",
	}
}

// WithTablePrefix prefixes both table names. Only alphanumeric and
// underscore are permitted to prevent SQL injection via identifiers.
func (s *Sink) WithTablePrefix(prefix string) *Sink {
	if isSafeIdent(prefix) {
		s.exportTable = prefix + "_exports"
		s.valuesTable = prefix + "_tick_values"
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Name implements export.Sink
func (s *Sink) Name() string { return "sqlite" }

// Write stores the export header and every tick value in one transaction.
// Writing the same artifact ID again replaces the earlier rows.
func (s *Sink) Write(ctx context.Context, a *export.Artifact) error {
	if a == nil {
		return export.ErrNilArtifact
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", export.ErrWriteFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE export_id = ?", s.valuesTable), a.ID); err != nil {
		return fmt.Errorf("%w: clearing previous rows: %w", export.ErrWriteFailed, err)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, title, filename, generated_at, total_duration, interval_seconds, ticks, row_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.exportTable)
	_, err = tx.ExecContext(ctx, query,
		a.ID, a.Title, a.Filename, a.GeneratedAt.Unix(),
		a.Settings.TotalDuration, a.Settings.Interval, len(a.Records), a.Rows())
	if err != nil {
		return fmt.Errorf("%w: saving export: %w", export.ErrWriteFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (export_id, tick, tick_time, source, target, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.valuesTable))
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", export.ErrWriteFailed, err)
	}
	defer stmt.Close()

	for _, rec := range a.Records {
		ts := rec.Timestamp.Format(simulation.TimestampLayout)
		for _, l := range rec.Links {
			if _, err := stmt.ExecContext(ctx, a.ID, rec.Tick, ts, l.Source, l.Target, l.Value); err != nil {
				return fmt.Errorf("%w: saving tick %d: %w", export.ErrWriteFailed, rec.Tick, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", export.ErrWriteFailed, err)
	}
	return nil
}

// Summary is one row of the exports table
type Summary struct {
	ID            string
	Title         string
	Filename      string
	GeneratedAt   int64
	TotalDuration int
	Interval      int
	Ticks         int
	Rows          int
}

// List returns stored exports, newest first
func (s *Sink) List(ctx context.Context) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT id, title, filename, generated_at, total_duration, interval_seconds, ticks, row_count
		FROM %s
		ORDER BY generated_at DESC, id
	`, s.exportTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var e Summary
		if err := rows.Scan(&e.ID, &e.Title, &e.Filename, &e.GeneratedAt, &e.TotalDuration, &e.Interval, &e.Ticks, &e.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Values returns the stored tick values of one export in CSV row order
func (s *Sink) Values(ctx context.Context, exportID string) ([]simulation.Link, error) {
	if exportID == "" {
		return nil, export.ErrInvalidArtifactID
	}

	query := fmt.Sprintf(`
		SELECT source, target, value FROM %s
		WHERE export_id = ?
		ORDER BY rowid
	`, s.valuesTable)

	rows, err := s.db.QueryContext(ctx, query, exportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tick values: %w", err)
	}
	defer rows.Close()

	var out []simulation.Link
	for rows.Next() {
		var l simulation.Link
		if err := rows.Scan(&l.Source, &l.Target, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan tick value: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		var n int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", s.exportTable), exportID).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("failed to check export: %w", err)
		}
		if n == 0 {
			return nil, export.ErrArtifactNotFound
		}
	}
	return out, nil
}

// CreateTables creates the necessary database tables
func (s *Sink) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			filename TEXT NOT NULL,
			generated_at INTEGER NOT NULL,
			total_duration INTEGER NOT NULL,
			interval_seconds INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			row_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS %s (
			export_id TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			tick_time TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			value INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_export_id ON %s (export_id);
		CREATE INDEX IF NOT EXISTS idx_%s_generated_at ON %s (generated_at);
	`, s.exportTable, s.valuesTable, s.exportTable, s.valuesTable, s.valuesTable, s.exportTable, s.exportTable)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
