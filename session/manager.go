package session

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/careerverse/backend/models"
)

// Session is the resolved state of one signed-in identity
type Session struct {
	UserID    string
	Email     string
	Name      string
	Role      models.Role
	Loading   bool
	Outcome   Outcome
	Attempts  int
	Persisted bool
}

// Response converts the session to its API form
func (s *Session) Response() models.SessionResponse {
	return models.SessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Role:      s.Role,
		Loading:   s.Loading,
		Outcome:   string(s.Outcome),
		Attempts:  s.Attempts,
		Persisted: s.Persisted,
	}
}

// Manager owns one session per identity. Concurrent resolutions for the same
// identity share a single Resolve call, and Invalidate drops the session so
// a later sign-in starts from scratch.
type Manager struct {
	resolver *Resolver
	group    singleflight.Group

	mu          sync.RWMutex
	sessions    map[string]*Session
	generations map[string]uint64
}

// NewManager creates a session manager
func NewManager(resolver *Resolver) *Manager {
	return &Manager{
		resolver:    resolver,
		sessions:    make(map[string]*Session),
		generations: make(map[string]uint64),
	}
}

// Get returns the identity's session, resolving it on first use
func (m *Manager) Get(ctx context.Context, id Identity) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id.UserID]
	gen := m.generations[id.UserID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	ch := m.group.DoChan(id.UserID, func() (interface{}, error) {
		// Shared by every waiter, so it runs detached from the first caller's cancellation
		res, err := m.resolver.Resolve(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		s := &Session{
			UserID:    id.UserID,
			Email:     id.Email,
			Name:      id.Name,
			Role:      res.Role,
			Outcome:   res.Outcome,
			Attempts:  res.Attempts,
			Persisted: res.Persisted,
		}

		m.mu.Lock()
		// Unavailable sessions are retried on the next request; invalidated ones are discarded.
		if res.Outcome != OutcomeUnavailable && m.generations[id.UserID] == gen {
			m.sessions[id.UserID] = s
		}
		m.mu.Unlock()
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Session), nil
	}
}

// Peek returns the cached session, or a loading placeholder when the
// identity has not been resolved yet
func (m *Manager) Peek(id Identity) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id.UserID]; ok {
		return s
	}
	return &Session{UserID: id.UserID, Email: id.Email, Name: id.Name, Loading: true}
}

// Invalidate discards the identity's session
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.generations[userID]++
	m.mu.Unlock()
	m.group.Forget(userID)
	log.Printf("[Session] Session for %s invalidated", userID)
}
