package sessionrepo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

// Session is one live editor with its identity
type Session struct {
	ID        string
	CreatedAt time.Time
	Editor    *editor.Editor
}

// Tracker observes the number of live sessions
type Tracker interface {
	SessionOpened()
	SessionClosed()
}

// InMemoryRepository holds editing sessions for the lifetime of the process.
// PRINCIPLES:
// - KISS: Simple map-based storage
// - SRP: Only responsible for session lookup, never for editing
// - Thread-safe
type InMemoryRepository struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	baseOptions []editor.Option
	tracker     Tracker
	now         func() time.Time
}

// Option configures the repository
type Option func(*InMemoryRepository)

// WithMaxSessions caps the number of live sessions. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(r *InMemoryRepository) { r.maxSessions = n }
}

// WithEditorOptions are applied to every editor the repository creates,
// before the per-call options.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(r *InMemoryRepository) { r.baseOptions = append(r.baseOptions, opts...) }
}

// WithTracker reports session opens and closes
func WithTracker(t Tracker) Option {
	return func(r *InMemoryRepository) { r.tracker = t }
}

func NewInMemoryRepository(opts ...Option) *InMemoryRepository {
	r := &InMemoryRepository{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new session with a fresh editor
func (r *InMemoryRepository) Create(ctx context.Context, opts ...editor.Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]editor.Option, 0, len(r.baseOptions)+len(opts))
	all = append(all, r.baseOptions...)
	all = append(all, opts...)
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now(),
		Editor:    editor.New(all...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID] = s
	if r.tracker != nil {
		r.tracker.SessionOpened()
	}
	return s, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	if r.tracker != nil {
		r.tracker.SessionClosed()
	}
	return nil
}

// List returns all sessions, oldest first
func (r *InMemoryRepository) List(ctx context.Context) ([]*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Len is the number of live sessions
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
