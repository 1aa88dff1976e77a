package auth

import (
	"sync"
	"time"
)

// Change describes a session lifecycle event delivered to listeners
type Change struct {
	Session *Session
	Active  bool // true on login, false on logout/expiry
}

// Registry holds every live session keyed by token hash. It is the single
// writer of session state: sessions are created on login, removed on logout,
// and reaped by the expiry sweep.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	generation uint64
	listeners  []func(Change)
	ttl        time.Duration
}

// NewRegistry creates an empty session registry with the given session TTL
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create issues a session for a verified identity and notifies listeners.
// Each session gets the next generation number; a later login always carries
// a higher generation than any session it supersedes.
func (r *Registry) Create(identity *Identity) (*Session, error) {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	r.mu.Lock()
	r.generation++
	session := &Session{
		Token:      token,
		TokenHash:  tokenHash,
		Subject:    identity.Subject,
		Email:      identity.Email,
		Name:       identity.Name,
		Source:     identity.Source,
		DemoRole:   identity.Role,
		IssuedAt:   now,
		ExpiresAt:  now.Add(r.ttl),
		Generation: r.generation,
	}
	r.sessions[tokenHash] = session
	listeners := append([]func(Change){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(Change{Session: session, Active: true})
	}
	return session, nil
}

// Get returns the live session for a raw bearer token
func (r *Registry) Get(token string) (*Session, error) {
	if err := ValidateTokenFormat(token); err != nil {
		return nil, ErrSessionNotFound
	}

	r.mu.RLock()
	session, ok := r.sessions[HashToken(token)]
	r.mu.RUnlock()

	if !ok || session.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove destroys a session (logout) and notifies listeners
func (r *Registry) Remove(token string) {
	tokenHash := HashToken(token)

	r.mu.Lock()
	session, ok := r.sessions[tokenHash]
	if ok {
		delete(r.sessions, tokenHash)
	}
	listeners := append([]func(Change){}, r.listeners...)
	r.mu.Unlock()

	if ok {
		for _, fn := range listeners {
			fn(Change{Session: session, Active: false})
		}
	}
}

// SweepExpired removes every expired session and returns the count removed.
// Wired to a cron schedule by the server.
func (r *Registry) SweepExpired(now time.Time) int {
	r.mu.Lock()
	var expired []*Session
	for hash, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, hash)
			expired = append(expired, session)
		}
	}
	listeners := append([]func(Change){}, r.listeners...)
	r.mu.Unlock()

	for _, session := range expired {
		for _, fn := range listeners {
			fn(Change{Session: session, Active: false})
		}
	}
	return len(expired)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// OnChange registers a listener for session lifecycle events
func (r *Registry) OnChange(fn func(Change)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
