// Package registry holds the viewer sessions of the widget server.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/osa030/versionbox/internal/domain/viewer"
)

var ErrUnknownViewer = errors.New("unknown viewer")

// ViewerRegistry manages viewer sessions with thread-safe access.
type ViewerRegistry struct {
	mu      sync.RWMutex
	viewers map[string]*viewer.Session
	now     func() time.Time
}

// NewViewerRegistry creates a new viewer registry.
func NewViewerRegistry(now func() time.Time) *ViewerRegistry {
	if now == nil {
		now = time.Now
	}
	return &ViewerRegistry{
		viewers: make(map[string]*viewer.Session),
		now:     now,
	}
}

// Open adds a new viewer and returns its session ID.
func (r *ViewerRegistry) Open(client string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.viewers[id] = viewer.NewSession(id, client, r.now())
	return id
}

// Get returns a copy of a viewer session.
func (r *ViewerRegistry) Get(id string) (viewer.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.viewers[id]
	if !ok {
		return viewer.Session{}, ErrUnknownViewer
	}
	return *s, nil
}

// Touch records activity on a viewer session.
func (r *ViewerRegistry) Touch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.viewers[id]
	if !ok {
		return ErrUnknownViewer
	}
	s.Touch(r.now())
	return nil
}

// Remove deletes a viewer session and reports whether it existed.
func (r *ViewerRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.viewers[id]
	delete(r.viewers, id)
	return ok
}

// Idle returns the IDs of sessions silent for longer than maxIdle.
func (r *ViewerRegistry) Idle(maxIdle time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var ids []string
	for id, s := range r.viewers {
		if s.IdleFor(now) > maxIdle {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of viewer sessions.
func (r *ViewerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

// All returns copies of all viewer sessions, oldest first.
func (r *ViewerRegistry) All() []viewer.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]viewer.Session, 0, len(r.viewers))
	for _, s := range r.viewers {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OpenedAt.Equal(result[j].OpenedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].OpenedAt.Before(result[j].OpenedAt)
	})
	return result
}
