package panels

import (
	"context"
	"sync"

	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// Panel is a mounted role-scoped view
type Panel interface {
	// Kind identifies the panel in routing decisions and metrics
	Kind() rbac.PanelKind

	// Mount loads initial data and opens the panel's change subscriptions
	Mount(ctx context.Context) error

	// Snapshot returns the panel's current data for rendering
	Snapshot(ctx context.Context) (map[string]interface{}, error)

	// Unmount releases every subscription the panel holds. Safe to call
	// more than once.
	Unmount()
}

// Factory builds panels wired to the shared store
type Factory struct {
	store   storage.RecordStore
	metrics *observability.Metrics
}

// NewFactory creates a panel factory. metrics may be nil.
func NewFactory(store storage.RecordStore, metrics *observability.Metrics) *Factory {
	return &Factory{store: store, metrics: metrics}
}

// Build returns the panel for a routing decision
func (f *Factory) Build(decision rbac.Decision) Panel {
	switch decision.Panel {
	case rbac.PanelAdmin:
		return &AdminPanel{basePanel: basePanel{store: f.store, metrics: f.metrics}}
	case rbac.PanelStaff:
		return &StaffPanel{basePanel: basePanel{store: f.store, metrics: f.metrics}}
	case rbac.PanelStudent:
		return &StudentPanel{basePanel: basePanel{store: f.store, metrics: f.metrics}, subjectID: decision.SubjectID}
	case rbac.PanelSuperAdmin:
		return &SuperAdminPanel{basePanel: basePanel{store: f.store, metrics: f.metrics}}
	default:
		return &LoginPanel{}
	}
}

// basePanel carries the shared store handle and tracks open subscriptions
type basePanel struct {
	store   storage.RecordStore
	metrics *observability.Metrics

	mu   sync.Mutex
	subs []*storage.Subscription
}

// watch opens a subscription and remembers it for release on Unmount
func (b *basePanel) watch(table storage.Table, mask storage.EventType, fn func(storage.Event)) {
	sub := b.store.Subscribe(table, mask, fn)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SubscriptionsOpen.Inc()
	}
}

// release drops every open subscription. Idempotent.
func (b *basePanel) release() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		b.store.Unsubscribe(sub)
		if b.metrics != nil {
			b.metrics.SubscriptionsOpen.Dec()
		}
	}
}
