package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/panels"
	"github.com/campushire/portal/pkg/rbac"
)

// ErrStaleResult is returned when a newer transition superseded this one
// while its role was resolving
var ErrStaleResult = errors.New("superseded by a newer transition")

// Router owns the mounted panel for one session
type Router struct {
	lookup      *rbac.Lookup
	factory     *panels.Factory
	pinnedEmail string
	logger      *observability.Logger
	metrics     *observability.Metrics

	epoch uint64

	mu      sync.Mutex
	current panels.Panel
	mounted rbac.Decision
	loading bool
}

// New creates a router showing the login panel until the first Apply.
// logger and metrics may be nil.
func New(lookup *rbac.Lookup, factory *panels.Factory, pinnedEmail string,
	logger *observability.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		lookup:      lookup,
		factory:     factory,
		pinnedEmail: pinnedEmail,
		logger:      logger,
		metrics:     metrics,
		current:     &panels.LoginPanel{},
	}
}

// Apply re-runs the decision table for the given session and transitions
// the router to the selected panel. A nil session is a logout and lands
// on the login panel. The role is resolved fresh on every call; a panel
// mounted under a role the session no longer holds is unmounted here.
//
// If another Apply starts while this one is resolving the role, this
// result is discarded and ErrStaleResult returned; the panel mounted by
// the newer call stays up.
func (r *Router) Apply(ctx context.Context, session *auth.Session) (rbac.Decision, error) {
	epoch := atomic.AddUint64(&r.epoch, 1)

	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	var role rbac.Role
	if session != nil {
		resolved, err := r.lookup.Resolve(ctx, session)
		switch {
		case errors.Is(err, rbac.ErrNoRoleAssigned):
			// No role routes to login via the decision table
		case err != nil:
			r.mu.Lock()
			if atomic.LoadUint64(&r.epoch) == epoch {
				r.loading = false
			}
			r.mu.Unlock()
			return rbac.Decision{}, err
		default:
			role = resolved
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if atomic.LoadUint64(&r.epoch) != epoch {
		// The newer call owns the loading flag and clears it on its own
		// exit paths
		return rbac.Decision{}, ErrStaleResult
	}

	decision := rbac.SelectPanel(session, role, r.pinnedEmail)

	// The mounted panel survives only when it is exactly what the fresh
	// decision selects; anything else is torn down, subscriptions included
	if r.current != nil && r.mounted == decision && r.current.Kind() == decision.Panel {
		r.loading = false
		return decision, nil
	}

	// Unmount completes before the next panel mounts
	if r.current != nil {
		r.current.Unmount()
		r.current = nil
	}

	panel := r.factory.Build(decision)
	if err := panel.Mount(ctx); err != nil {
		// Fail closed: a panel that cannot load its data must not stay
		// half-mounted
		panel.Unmount()
		r.current = &panels.LoginPanel{}
		r.mounted = rbac.Decision{}
		r.loading = false
		if r.logger != nil {
			r.logger.WithError(err).Error("panel mount failed, falling back to login")
		}
		return rbac.Decision{Panel: rbac.PanelLogin}, err
	}

	r.current = panel
	r.mounted = decision
	r.loading = false

	if r.metrics != nil {
		r.metrics.PanelRendersTotal.WithLabelValues(string(decision.Panel)).Inc()
	}
	if r.logger != nil {
		r.logger.WithField("panel", string(decision.Panel)).Debug("panel mounted")
	}
	return decision, nil
}

// Current returns the mounted panel kind and whether a transition is in
// flight
func (r *Router) Current() (rbac.PanelKind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Kind(), r.loading
}

// Snapshot renders the mounted panel's data
func (r *Router) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	r.mu.Lock()
	panel := r.current
	r.mu.Unlock()
	return panel.Snapshot(ctx)
}

// Close unmounts the current panel and releases its subscriptions
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Unmount()
		r.current = &panels.LoginPanel{}
		r.mounted = rbac.Decision{}
	}
}
