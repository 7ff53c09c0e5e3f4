package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/domain"
)

// SessionManager owns the viewer sessions of the running server. All
// sessions share the catalog and the single local progress store.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	catalog  *catalog.Catalog
	progress *ProgressStore
	idle     time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager whose sessions expire after idle
// without activity. A zero idle keeps sessions forever.
func NewSessionManager(c *catalog.Catalog, progress *ProgressStore, idle time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		catalog:  c,
		progress: progress,
		idle:     idle,
		now:      time.Now,
	}
}

// Catalog returns the shared lesson catalog.
func (m *SessionManager) Catalog() *catalog.Catalog { return m.catalog }

// Progress returns the shared progress store.
func (m *SessionManager) Progress() *ProgressStore { return m.progress }

// Create starts a new session on the Home view.
func (m *SessionManager) Create() *Session {
	s := newSession(uuid.NewString(), m.catalog, m.progress, m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Debug("session created", "session_id", s.ID)
	return s
}

// Get returns the session with the given id and marks it active.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNoSession)
	}
	s.touch(m.now())
	return s, nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune removes sessions idle for longer than the configured timeout and
// returns how many were removed.
func (m *SessionManager) Prune() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle sessions periodically until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Prune(); n > 0 {
				slog.Info("pruned idle sessions", "count", n)
			}
		}
	}
}
