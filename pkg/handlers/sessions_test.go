package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metaquery-ai/metaquery-engine/pkg/session"
)

func sessionMux(t *testing.T, store session.Store) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewSessionHandler(store, zaptest.NewLogger(t)).RegisterRoutes(mux, openAuth(t))
	return mux
}

func TestSessionLifecycle(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(context.Background(), &session.Record{
		ID:        "abc",
		Question:  "how many calls yesterday",
		Summary:   "There were 120 calls.",
		CreatedAt: created,
	}))
	mux := sessionMux(t, store)

	// List
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listing map[string][]session.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []session.Entry{{ID: "abc", CreatedAt: created}}, listing["sessions"])

	// Get
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var record session.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "There were 120 calls.", record.Summary)

	// Delete
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Gone
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionListEmpty(t *testing.T) {
	mux := sessionMux(t, session.NewMemoryStore(time.Hour))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions": []}`, rec.Body.String())
}

func TestSessionNotFound(t *testing.T) {
	mux := sessionMux(t, session.NewMemoryStore(time.Hour))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}
