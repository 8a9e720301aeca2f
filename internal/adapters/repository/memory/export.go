// Package memory keeps export artifacts in process memory so the HTTP API
// can serve a download after generating it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
)

// Store implements export.Sink with bounded in-memory storage
// PRINCIPLES:
// - KISS: Map guarded by one mutex
// - SRP: Single responsibility for holding recent artifacts
// - DIP: Implements export.Sink interface
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	currentSize int64

	ttl      time.Duration
	maxBytes int64
	now      func() time.Time

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupOnce   sync.Once
}

// Config holds configuration for Store
type Config struct {
	TTL             time.Duration    // How long an artifact stays downloadable
	MaxBytes        int64            // Upper bound on stored CSV bytes
	CleanupInterval time.Duration    // Sweep interval for expired artifacts; negative disables
	Now             func() time.Time // Clock override for tests
}

type entry struct {
	artifact   *export.Artifact
	size       int64
	expiresAt  time.Time
	accessedAt time.Time
}

// Summary describes a stored artifact without its payload
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	Rows        int       `json:"rows"`
	Bytes       int64     `json:"bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewStore creates a new in-memory artifact store
func NewStore(config Config) *Store {
	if config.TTL == 0 {
		config.TTL = time.Hour
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 64 << 20
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Store{
		entries:     make(map[string]*entry),
		ttl:         config.TTL,
		maxBytes:    config.MaxBytes,
		now:         config.Now,
		stopCleanup: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		s.startCleanup(config.CleanupInterval)
	}

	return s
}

// DefaultStore creates a Store with default configuration
func DefaultStore() *Store {
	return NewStore(Config{})
}

// Name implements export.Sink
func (s *Store) Name() string { return "memory" }

// Write stores the artifact, evicting least recently used artifacts when
// the byte budget would be exceeded.
func (s *Store) Write(_ context.Context, a *export.Artifact) error {
	if a == nil {
		return export.ErrNilArtifact
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	size := int64(len(a.CSV))
	if size > s.maxBytes {
		return fmt.Errorf("%w: artifact is %d bytes, limit %d", export.ErrStoreFull, size, s.maxBytes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(a.ID)
	if over := s.currentSize + size - s.maxBytes; over > 0 {
		s.evictLRULocked(over)
	}

	now := s.now()
	s.entries[a.ID] = &entry{
		artifact:   a,
		size:       size,
		expiresAt:  now.Add(s.ttl),
		accessedAt: now,
	}
	s.currentSize += size
	return nil
}

// Get returns a stored artifact
func (s *Store) Get(_ context.Context, id string) (*export.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, export.ErrArtifactNotFound
	}

	now := s.now()
	if now.After(e.expiresAt) {
		s.removeLocked(id)
		return nil, export.ErrArtifactNotFound
	}

	e.accessedAt = now
	return e.artifact, nil
}

// List returns unexpired artifacts, newest first
func (s *Store) List(_ context.Context) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]Summary, 0, len(s.entries))
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			s.removeLocked(id)
			continue
		}
		out = append(out, Summary{
			ID:          id,
			Title:       e.artifact.Title,
			Filename:    e.artifact.Filename,
			Rows:        e.artifact.Rows(),
			Bytes:       e.size,
			GeneratedAt: e.artifact.GeneratedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}

// Delete removes an artifact
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return export.ErrArtifactNotFound
	}
	s.removeLocked(id)
	return nil
}

// Stats reports memory usage
type Stats struct {
	Count              int     `json:"count"`
	Bytes              int64   `json:"bytes"`
	MaxBytes           int64   `json:"max_bytes"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// GetStats returns memory usage statistics
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Count:              len(s.entries),
		Bytes:              s.currentSize,
		MaxBytes:           s.maxBytes,
		UtilizationPercent: float64(s.currentSize) / float64(s.maxBytes) * 100,
	}
}

// Close stops the cleanup goroutine
func (s *Store) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
	})
	return nil
}

func (s *Store) startCleanup(interval time.Duration) {
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.cleanupExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

// cleanupExpired removes expired artifacts
func (s *Store) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			s.removeLocked(id)
		}
	}
}

func (s *Store) removeLocked(id string) {
	if e, ok := s.entries[id]; ok {
		s.currentSize -= e.size
		delete(s.entries, id)
	}
}

// evictLRULocked frees at least target bytes, oldest access first.
func (s *Store) evictLRULocked(target int64) {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.entries[ids[i]].accessedAt.Before(s.entries[ids[j]].accessedAt)
	})

	var freed int64
	for _, id := range ids {
		if freed >= target {
			return
		}
		freed += s.entries[id].size
		s.removeLocked(id)
	}
}
