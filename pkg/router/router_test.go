package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/panels"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// blockingStore holds the profile lookup for one subject open so a test
// can simulate a slow role resolution
type blockingStore struct {
	storage.RecordStore
	blockSubject string
	entered      chan struct{}
	release      chan struct{}
	once         sync.Once
}

func (s *blockingStore) Select(ctx context.Context, table storage.Table, filter storage.Filter) ([]storage.Row, error) {
	if table == storage.TableProfiles && filter["id"] == s.blockSubject {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.RecordStore.Select(ctx, table, filter)
}

func newTestRouter(t *testing.T) (*Router, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()
	for _, row := range []storage.Row{
		{"id": "u-1", "email": "amy@example.com", "name": "Amy", "role": "admin"},
		{"id": "u-2", "email": "bob@example.com", "name": "Bob", "role": "student"},
	} {
		_, err := store.Insert(ctx, storage.TableProfiles, row)
		require.NoError(t, err)
	}

	lookup := rbac.NewLookup(store, nil)
	factory := panels.NewFactory(store, nil)
	return New(lookup, factory, auth.DefaultSuperAdminEmail, nil, nil), store
}

func providerSession(subject, email string) *auth.Session {
	return &auth.Session{Subject: subject, Email: email, Source: auth.SourceProvider}
}

func TestRouterStartsOnLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	kind, loading := r.Current()
	assert.Equal(t, rbac.PanelLogin, kind)
	assert.False(t, loading)
}

func TestRouterAppliesSessionPanel(t *testing.T) {
	r, _ := newTestRouter(t)

	decision, err := r.Apply(context.Background(), providerSession("u-1", "amy@example.com"))
	require.NoError(t, err)
	assert.Equal(t, rbac.PanelAdmin, decision.Panel)

	kind, loading := r.Current()
	assert.Equal(t, rbac.PanelAdmin, kind)
	assert.False(t, loading)
}

func TestRouterLogoutLandsOnLogin(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, providerSession("u-1", "amy@example.com"))
	require.NoError(t, err)
	assert.Greater(t, store.Bus().Open(), 0)

	decision, err := r.Apply(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, rbac.PanelLogin, decision.Panel)
	assert.Equal(t, 0, store.Bus().Open(), "logout releases every subscription")
}

func TestRouterExactlyOnePanelMounted(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, providerSession("u-1", "amy@example.com"))
	require.NoError(t, err)
	adminSubs := store.Bus().Open()

	_, err = r.Apply(ctx, providerSession("u-2", "bob@example.com"))
	require.NoError(t, err)

	// The student panel's subscriptions replaced the admin panel's, they
	// did not stack
	assert.LessOrEqual(t, store.Bus().Open(), adminSubs)
	kind, _ := r.Current()
	assert.Equal(t, rbac.PanelStudent, kind)
}

func TestRouterDiscardsStaleResolution(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	for _, row := range []storage.Row{
		{"id": "u-1", "email": "amy@example.com", "role": "admin"},
		{"id": "u-2", "email": "bob@example.com", "role": "student"},
	} {
		_, err := store.Insert(ctx, storage.TableProfiles, row)
		require.NoError(t, err)
	}

	blocking := &blockingStore{
		RecordStore:  store,
		blockSubject: "u-1",
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	lookup := rbac.NewLookup(blocking, nil)
	factory := panels.NewFactory(store, nil)
	r := New(lookup, factory, "", nil, nil)

	// First apply parks inside its role lookup
	firstDone := make(chan error, 1)
	go func() {
		_, err := r.Apply(ctx, providerSession("u-1", "amy@example.com"))
		firstDone <- err
	}()
	<-blocking.entered

	// Second apply for a different session completes while the first is
	// still resolving
	_, err := r.Apply(ctx, providerSession("u-2", "bob@example.com"))
	require.NoError(t, err)

	close(blocking.release)
	assert.ErrorIs(t, <-firstDone, ErrStaleResult)

	kind, _ := r.Current()
	assert.Equal(t, rbac.PanelStudent, kind, "the newer session's panel stays mounted")
}

// countingStore tallies Subscribe calls so a test can tell a kept panel
// from a remounted one
type countingStore struct {
	*storage.MemoryStore
	subscribes int
}

func (s *countingStore) Subscribe(table storage.Table, mask storage.EventType, fn func(storage.Event)) *storage.Subscription {
	s.subscribes++
	return s.MemoryStore.Subscribe(table, mask, fn)
}

// failingStore refuses profile lookups a set number of times
type failingStore struct {
	storage.RecordStore
	failures int
}

func (s *failingStore) Select(ctx context.Context, table storage.Table, filter storage.Filter) ([]storage.Row, error) {
	if s.failures > 0 && table == storage.TableProfiles {
		s.failures--
		return nil, errors.New("store offline")
	}
	return s.RecordStore.Select(ctx, table, filter)
}

func TestRouterReappliesFreshRole(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()
	session := providerSession("u-1", "amy@example.com")

	_, err := r.Apply(ctx, session)
	require.NoError(t, err)
	kind, _ := r.Current()
	require.Equal(t, rbac.PanelAdmin, kind)

	// Demote while the session is live; the next apply must tear the
	// admin panel down
	err = store.Update(ctx, storage.TableProfiles,
		storage.Filter{"id": "u-1"}, storage.Row{"role": "student"})
	require.NoError(t, err)

	decision, err := r.Apply(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, rbac.PanelStudent, decision.Panel)
	kind, loading := r.Current()
	assert.Equal(t, rbac.PanelStudent, kind)
	assert.False(t, loading)
}

func TestRouterKeepsPanelWhenDecisionUnchanged(t *testing.T) {
	mem := storage.NewMemoryStore()
	ctx := context.Background()
	_, err := mem.Insert(ctx, storage.TableProfiles,
		storage.Row{"id": "u-2", "email": "bob@example.com", "role": "student"})
	require.NoError(t, err)

	counting := &countingStore{MemoryStore: mem}
	lookup := rbac.NewLookup(counting, nil)
	factory := panels.NewFactory(counting, nil)
	r := New(lookup, factory, "", nil, nil)

	session := providerSession("u-2", "bob@example.com")
	_, err = r.Apply(ctx, session)
	require.NoError(t, err)
	mounted := counting.subscribes

	// Same session, same role: the panel and its subscriptions stay put
	_, err = r.Apply(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, mounted, counting.subscribes)
	kind, loading := r.Current()
	assert.Equal(t, rbac.PanelStudent, kind)
	assert.False(t, loading)
}

func TestRouterClearsLoadingOnLookupError(t *testing.T) {
	mem := storage.NewMemoryStore()
	failing := &failingStore{RecordStore: mem, failures: 1}
	lookup := rbac.NewLookup(failing, nil)
	factory := panels.NewFactory(mem, nil)
	r := New(lookup, factory, "", nil, nil)

	_, err := r.Apply(context.Background(), providerSession("u-9", "zoe@example.com"))
	require.Error(t, err)

	kind, loading := r.Current()
	assert.False(t, loading, "a failed transition must not stay loading")
	assert.Equal(t, rbac.PanelLogin, kind)
}

func TestRouterSnapshotReflectsPanel(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, providerSession("u-2", "bob@example.com"))
	require.NoError(t, err)

	snapshot, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(rbac.PanelStudent), snapshot["panel"])
}

func TestRouterClose(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, providerSession("u-1", "amy@example.com"))
	require.NoError(t, err)
	require.Greater(t, store.Bus().Open(), 0)

	r.Close()
	assert.Equal(t, 0, store.Bus().Open())
	kind, _ := r.Current()
	assert.Equal(t, rbac.PanelLogin, kind)
}
