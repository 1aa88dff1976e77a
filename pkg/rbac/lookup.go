package rbac

import (
	"context"
	"fmt"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/storage"
)

// Lookup resolves the role for an authenticated session
type Lookup struct {
	store   storage.RecordStore
	metrics *observability.Metrics
}

// NewLookup creates a role lookup backed by the given store.
// metrics may be nil.
func NewLookup(store storage.RecordStore, metrics *observability.Metrics) *Lookup {
	return &Lookup{store: store, metrics: metrics}
}

// Resolve returns the session's role.
//
// Demo and pinned sessions carry their role from login and skip the store
// entirely. Everyone else gets a point lookup on profiles by subject id.
// Results are never cached; a role change must be visible on
// the very next resolution.
//
// An unknown stored role value is returned as-is with no error; panel
// selection treats it as unauthorized.
func (l *Lookup) Resolve(ctx context.Context, session *auth.Session) (Role, error) {
	if session == nil {
		return RoleNone, ErrNoRoleAssigned
	}

	if session.DemoRole != "" {
		l.observe("fixed", nil)
		return Role(session.DemoRole), nil
	}

	rows, err := l.store.Select(ctx, storage.TableProfiles, storage.Filter{"id": session.Subject})
	if err != nil {
		l.observe("store", err)
		return RoleNone, fmt.Errorf("role lookup for subject %s: %w", session.Subject, err)
	}
	if len(rows) == 0 {
		l.observe("store", ErrNoRoleAssigned)
		return RoleNone, ErrNoRoleAssigned
	}

	raw, ok := rows[0]["role"].(string)
	if !ok || raw == "" {
		l.observe("store", ErrNoRoleAssigned)
		return RoleNone, ErrNoRoleAssigned
	}

	l.observe("store", nil)
	return Role(raw), nil
}

func (l *Lookup) observe(source string, err error) {
	if l.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	l.metrics.RoleLookupsTotal.WithLabelValues(source, status).Inc()
}
