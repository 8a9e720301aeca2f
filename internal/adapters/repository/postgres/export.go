// Package postgres stores export artifacts in PostgreSQL. Tick values are
// bulk loaded with COPY.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoPool is returned when the sink has no connection pool
var ErrNoPool = errors.New("postgres pool is not configured")

// Sink implements export.Sink for PostgreSQL
type Sink struct {
	pool        *pgxpool.Pool
	exportTable string
	valuesTable string
}

// Open connects to dsn and ensures the tables exist
func Open(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s := NewSink(pool)
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewSink creates a new PostgreSQL export sink
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{
		pool:        pool,
		exportTable: "exports",
		valuesTable: "tick_values",
	}
}

// WithTablePrefix prefixes both table names. Unsafe prefixes are ignored.
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
func (s *Sink) Name() string { return "postgres" }

// Write upserts the export header and replaces its tick values in one
// transaction.
func (s *Sink) Write(ctx context.Context, a *export.Artifact) error {
	if a == nil {
		return export.ErrNilArtifact
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}
	if s.pool == nil {
		return ErrNoPool
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", export.ErrWriteFailed, err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, filename, generated_at, total_duration, interval_seconds, ticks, row_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			filename = EXCLUDED.filename,
			generated_at = EXCLUDED.generated_at,
			total_duration = EXCLUDED.total_duration,
			interval_seconds = EXCLUDED.interval_seconds,
			ticks = EXCLUDED.ticks,
			row_count = EXCLUDED.row_count
	`, s.exportTable)
	_, err = tx.Exec(ctx, query,
		a.ID, a.Title, a.Filename, a.GeneratedAt,
		a.Settings.TotalDuration, a.Settings.Interval, len(a.Records), a.Rows())
	if err != nil {
		return fmt.Errorf("%w: saving export: %w", export.ErrWriteFailed, err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE export_id = $1", s.valuesTable), a.ID); err != nil {
		return fmt.Errorf("%w: clearing previous rows: %w", export.ErrWriteFailed, err)
	}

	rows := valueRows(a)
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{s.valuesTable},
		[]string{"export_id", "tick", "tick_time", "source", "target", "value"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{a.ID, r.tick, r.at, r.link.Source, r.link.Target, r.link.Value}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: copying tick values: %w", export.ErrWriteFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", export.ErrWriteFailed, err)
	}
	return nil
}

// valueRow is one link at one tick
type valueRow struct {
	tick int
	at   time.Time
	link simulation.Link
}

func valueRows(a *export.Artifact) []valueRow {
	rows := make([]valueRow, 0, a.Rows())
	for _, rec := range a.Records {
		for _, l := range rec.Links {
			rows = append(rows, valueRow{tick: rec.Tick, at: rec.Timestamp, link: l})
		}
	}
	return rows
}

// Summary is one row of the exports table
type Summary struct {
	ID            string
	Title         string
	Filename      string
	TotalDuration int
	Interval      int
	Ticks         int
	Rows          int
}

// Get loads one export header
func (s *Sink) Get(ctx context.Context, id string) (*Summary, error) {
	if id == "" {
		return nil, export.ErrInvalidArtifactID
	}
	if s.pool == nil {
		return nil, ErrNoPool
	}

	query := fmt.Sprintf(`
		SELECT id, title, filename, total_duration, interval_seconds, ticks, row_count
		FROM %s
		WHERE id = $1
	`, s.exportTable)

	var e Summary
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Filename, &e.TotalDuration, &e.Interval, &e.Ticks, &e.Rows,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, export.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to load export: %w", err)
	}
	return &e, nil
}

// Delete removes an export and its tick values
func (s *Sink) Delete(ctx context.Context, id string) error {
	if id == "" {
		return export.ErrInvalidArtifactID
	}
	if s.pool == nil {
		return ErrNoPool
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.exportTable), id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return export.ErrArtifactNotFound
	}
	return nil
}

// CreateTables creates the necessary database tables
func (s *Sink) CreateTables(ctx context.Context) error {
	if s.pool == nil {
		return ErrNoPool
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			title TEXT NOT NULL,
			filename TEXT NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			total_duration INTEGER NOT NULL,
			interval_seconds INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			row_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS %s (
			export_id VARCHAR(255) NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			tick_time TIMESTAMPTZ NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			value INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_export_id ON %s (export_id);
		CREATE INDEX IF NOT EXISTS idx_%s_generated_at ON %s (generated_at);
	`, s.exportTable, s.valuesTable, s.exportTable, s.valuesTable, s.valuesTable, s.exportTable, s.exportTable)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Close releases the pool
func (s *Sink) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
