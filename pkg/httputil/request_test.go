package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Tech Innovations Inc."}`))

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(r, &body))
	assert.Equal(t, "Tech Innovations Inc.", body.Name)
}

func TestParseJSONInvalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{invalid`))

	var body map[string]string
	assert.Error(t, ParseJSON(r, &body))
}

func TestParsePathString(t *testing.T) {
	router := mux.NewRouter()
	var got string
	router.HandleFunc("/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		val, err := ParsePathString(r, "id")
		require.NoError(t, err)
		got = val
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/3", nil))
	assert.Equal(t, "3", got)
}

func TestParsePathStringMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ParsePathString(r, "id")
	assert.Error(t, err)
}

func TestParseQueryString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?status=pending", nil)
	assert.Equal(t, "pending", ParseQueryString(r, "status", "all"))
	assert.Equal(t, "all", ParseQueryString(r, "missing", "all"))
}

func TestRequireNonEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequireNonEmpty(w, "value", "name"))

	w = httptest.NewRecorder()
	assert.False(t, RequireNonEmpty(w, "", "name"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")
}
