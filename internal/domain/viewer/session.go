// Package viewer provides the viewer session domain entity.
package viewer

import "time"

// Session represents one remote page instance driving a coordinator.
type Session struct {
	ID         string    // UUID
	Client     string    // Client description (user agent, optional)
	OpenedAt   time.Time // Open time
	LastSeenAt time.Time // Last dispatch time
	Dispatches int       // Total dispatch count
}

// NewSession creates a new viewer session.
func NewSession(id, client string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Client:     client,
		OpenedAt:   now,
		LastSeenAt: now,
	}
}

// Touch records a dispatch at the given time.
func (s *Session) Touch(now time.Time) {
	s.Dispatches++
	if now.After(s.LastSeenAt) {
		s.LastSeenAt = now
	}
}

// IdleFor returns how long the session has been idle.
func (s *Session) IdleFor(now time.Time) time.Duration {
	idle := now.Sub(s.LastSeenAt)
	if idle < 0 {
		return 0
	}
	return idle
}
