package router

import (
	"context"
	"errors"
	"sync"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/panels"
	"github.com/campushire/portal/pkg/rbac"
)

// Manager owns one router per live session, keyed by token hash
type Manager struct {
	lookup      *rbac.Lookup
	factory     *panels.Factory
	pinnedEmail string
	logger      *observability.Logger
	metrics     *observability.Metrics

	mu      sync.Mutex
	routers map[string]*Router
}

// NewManager creates a session router manager. logger and metrics may be
// nil.
func NewManager(lookup *rbac.Lookup, factory *panels.Factory, pinnedEmail string,
	logger *observability.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		lookup:      lookup,
		factory:     factory,
		pinnedEmail: pinnedEmail,
		logger:      logger,
		metrics:     metrics,
		routers:     make(map[string]*Router),
	}
}

// Attach returns the session's router, re-running the routing decision.
// Roles are never cached, so every attach resolves the role again and a
// role edit takes effect on the very next render. A concurrent attach for
// the same session may supersede this one; the newer mount is served
// either way.
func (m *Manager) Attach(ctx context.Context, session *auth.Session) (*Router, error) {
	m.mu.Lock()
	r, ok := m.routers[session.TokenHash]
	if !ok {
		r = New(m.lookup, m.factory, m.pinnedEmail, m.logger, m.metrics)
		m.routers[session.TokenHash] = r
	}
	m.mu.Unlock()

	if _, err := r.Apply(ctx, session); err != nil && !errors.Is(err, ErrStaleResult) {
		return nil, err
	}
	return r, nil
}

// Release tears down the router for a session, unmounting its panel
func (m *Manager) Release(tokenHash string) {
	m.mu.Lock()
	r, ok := m.routers[tokenHash]
	delete(m.routers, tokenHash)
	m.mu.Unlock()

	if ok {
		r.Close()
	}
}

// Count returns the number of live routers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routers)
}

// WatchRegistry tears routers down when their session ends. Wire this to
// the registry before serving traffic.
func (m *Manager) WatchRegistry(registry *auth.Registry) {
	registry.OnChange(func(change auth.Change) {
		if !change.Active {
			m.Release(change.Session.TokenHash)
		}
	})
}
