package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/auth"
	"github.com/metaquery-ai/metaquery-engine/pkg/session"
)

// SessionHandler serves stored answers.
type SessionHandler struct {
	store  session.Store
	logger *zap.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(store session.Store, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger.Named("session-handler"),
	}
}

// RegisterRoutes registers the session routes on the given mux behind the
// auth middleware.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux, authMW *auth.Middleware) {
	mux.HandleFunc("GET /api/sessions", authMW.RequireAuth(h.List))
	mux.HandleFunc("GET /api/sessions/{id}", authMW.RequireAuth(h.Get))
	mux.HandleFunc("DELETE /api/sessions/{id}", authMW.RequireAuth(h.Delete))
}

// List handles GET /api/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "session_store_failed", "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []session.Entry{}
	}

	if err := WriteJSON(w, http.StatusOK, map[string][]session.Entry{"sessions": sessions}); err != nil {
		h.logger.Error("Failed to encode session list", zap.Error(err))
	}
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "session_not_found", "No session with that ID")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch session", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "session_store_failed", "Failed to fetch session")
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode session record", zap.Error(err))
	}
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "session_not_found", "No session with that ID")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete session", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "session_store_failed", "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
