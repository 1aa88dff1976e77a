package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/files"
	"github.com/campushire/portal/pkg/panels"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/router"
	"github.com/campushire/portal/pkg/storage"
)

type fixture struct {
	server   *Server
	store    *storage.MemoryStore
	blobs    *files.MemoryBlobStore
	registry *auth.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	blobs := files.NewMemoryBlobStore()
	ctx := context.Background()

	for _, row := range []storage.Row{
		{"id": "1", "email": "admin@example.com", "name": "Admin User", "role": "admin"},
		{"id": "2", "email": "staff@example.com", "name": "Staff User", "role": "staff"},
		{"id": "3", "email": "student@example.com", "name": "Student User", "role": "student"},
	} {
		_, err := store.Insert(ctx, storage.TableProfiles, row)
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, storage.TableStudents, storage.Row{
		"id": "s-1", "user_id": "3", "name": "Student User", "email": "student@example.com",
		"course": "Computer Science", "year": 4,
	})
	require.NoError(t, err)
	_, err = store.Insert(ctx, storage.TableCompanies, storage.Row{
		"id": "c-1", "name": "TechCorp", "positions": []string{"Software Engineer"},
		"location": "Bangalore", "posted_by": "1",
	})
	require.NoError(t, err)

	registry := auth.NewRegistry(time.Hour)
	resolver := auth.NewResolver(registry, []auth.CredentialSource{
		auth.NewStaticSource(auth.DemoAccounts),
	})
	lookup := rbac.NewLookup(store, nil)
	factory := panels.NewFactory(store, nil)
	routers := router.NewManager(lookup, factory, auth.DefaultSuperAdminEmail, nil, nil)
	routers.WatchRegistry(registry)
	resumes := files.NewResumeService(blobs, store, nil)

	server := NewServer(Dependencies{
		Resolver:    resolver,
		Lookup:      lookup,
		Routers:     routers,
		Store:       store,
		Resumes:     resumes,
		PinnedEmail: auth.DefaultSuperAdminEmail,
	})

	return &fixture{server: server, store: store, blobs: blobs, registry: registry}
}

// login authenticates through the API and returns the bearer token
func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: email, Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) uploadResume(t *testing.T, token, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/me/resume", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}
