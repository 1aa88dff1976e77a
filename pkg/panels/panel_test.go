package panels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	for _, row := range []storage.Row{
		{"id": "1", "email": "admin@example.com", "name": "Admin User", "role": "admin"},
		{"id": "2", "email": "staff@example.com", "name": "Staff User", "role": "staff"},
		{"id": "3", "email": "student@example.com", "name": "Student User", "role": "student"},
	} {
		_, err := store.Insert(ctx, storage.TableProfiles, row)
		require.NoError(t, err)
	}

	_, err := store.Insert(ctx, storage.TableCompanies, storage.Row{
		"id":        "c-1",
		"name":      "TechCorp",
		"positions": []interface{}{"Software Engineer"},
		"location":  "Bangalore",
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, storage.TableStudents, storage.Row{
		"id":            "s-1",
		"user_id":       "3",
		"name":          "Student User",
		"email":         "student@example.com",
		"resume_status": "pending",
		"resume_url":    "https://files.example.com/resume-3.pdf",
	})
	require.NoError(t, err)

	return store
}

func TestFactoryBuildsByDecision(t *testing.T) {
	factory := NewFactory(storage.NewMemoryStore(), nil)

	tests := []struct {
		decision rbac.Decision
		want     rbac.PanelKind
	}{
		{rbac.Decision{Panel: rbac.PanelLogin}, rbac.PanelLogin},
		{rbac.Decision{Panel: rbac.PanelAdmin}, rbac.PanelAdmin},
		{rbac.Decision{Panel: rbac.PanelStaff}, rbac.PanelStaff},
		{rbac.Decision{Panel: rbac.PanelStudent, SubjectID: "3"}, rbac.PanelStudent},
		{rbac.Decision{Panel: rbac.PanelSuperAdmin}, rbac.PanelSuperAdmin},
		{rbac.Decision{Panel: rbac.PanelKind("bogus")}, rbac.PanelLogin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, factory.Build(tt.decision).Kind())
	}
}

func TestStudentPanelScopedToSubject(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelStudent, SubjectID: "3"})
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	snapshot, err := panel.Snapshot(ctx)
	require.NoError(t, err)

	companies := snapshot["companies"].([]storage.Row)
	require.Len(t, companies, 1)
	assert.Equal(t, "TechCorp", companies[0]["name"])

	profile := snapshot["profile"].(storage.Row)
	assert.Equal(t, "3", profile["user_id"])
}

func TestStudentPanelIgnoresOtherStudents(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelStudent, SubjectID: "3"})
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	_, err := store.Insert(ctx, storage.TableStudents, storage.Row{
		"id": "s-2", "user_id": "99", "name": "Someone Else",
	})
	require.NoError(t, err)

	snapshot, err := panel.Snapshot(ctx)
	require.NoError(t, err)
	profile := snapshot["profile"].(storage.Row)
	assert.Equal(t, "3", profile["user_id"])
}

func TestStudentPanelSeesOwnUpdates(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelStudent, SubjectID: "3"})
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	err := store.Update(ctx, storage.TableStudents,
		storage.Filter{"id": "s-1"}, storage.Row{"resume_status": "approved"})
	require.NoError(t, err)

	snapshot, err := panel.Snapshot(ctx)
	require.NoError(t, err)
	profile := snapshot["profile"].(storage.Row)
	assert.Equal(t, "approved", profile["resume_status"])
}

func TestStaffPanelTracksStudentChanges(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelStaff})
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	_, err := store.Insert(ctx, storage.TableStudents, storage.Row{
		"id": "s-2", "user_id": "4", "name": "New Student",
	})
	require.NoError(t, err)

	snapshot, err := panel.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot["students"].([]storage.Row), 2)
}

func TestAdminPanelTracksCompanyDeletes(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelAdmin})
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	require.NoError(t, store.Delete(ctx, storage.TableCompanies, storage.Filter{"id": "c-1"}))

	snapshot, err := panel.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot["companies"].([]storage.Row))
	assert.Len(t, snapshot["students"].([]storage.Row), 1)
}

func TestSuperAdminPanelStats(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelSuperAdmin}).(*SuperAdminPanel)
	require.NoError(t, panel.Mount(ctx))
	defer panel.Unmount()

	stats := panel.Stats()
	assert.Equal(t, 3, stats["total_users"])
	assert.Equal(t, map[string]int{"admin": 1, "staff": 1, "student": 1}, stats["users_by_role"])
	assert.Equal(t, 1, stats["resumes_uploaded"])
	assert.Equal(t, map[string]int{"pending": 1}, stats["resumes_by_status"])
}

func TestUnmountReleasesSubscriptions(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)
	ctx := context.Background()

	require.Equal(t, 0, store.Bus().Open())

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelAdmin})
	require.NoError(t, panel.Mount(ctx))
	assert.Equal(t, 2, store.Bus().Open())

	panel.Unmount()
	assert.Equal(t, 0, store.Bus().Open())

	// Unmount is idempotent
	panel.Unmount()
	assert.Equal(t, 0, store.Bus().Open())
}

func TestLoginPanelOpensNothing(t *testing.T) {
	store := seededStore(t)
	factory := NewFactory(store, nil)

	panel := factory.Build(rbac.Decision{Panel: rbac.PanelLogin})
	require.NoError(t, panel.Mount(context.Background()))
	assert.Equal(t, 0, store.Bus().Open())

	snapshot, err := panel.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, snapshot["authenticated"])
	panel.Unmount()
}
