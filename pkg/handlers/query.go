package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/audit"
	"github.com/metaquery-ai/metaquery-engine/pkg/auth"
	"github.com/metaquery-ai/metaquery-engine/pkg/orchestrator"
	"github.com/metaquery-ai/metaquery-engine/pkg/retrieval"
	"github.com/metaquery-ai/metaquery-engine/pkg/sqlgen"
)

// QueryRequest is the body for question endpoints.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryHandler answers natural-language questions.
type QueryHandler struct {
	orchestrator orchestrator.Orchestrator
	retriever    retrieval.MetadataService
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(o orchestrator.Orchestrator, retriever retrieval.MetadataService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		orchestrator: o,
		retriever:    retriever,
		auditor:      audit.NewSecurityAuditor(logger),
		logger:       logger.Named("query-handler"),
	}
}

// RegisterRoutes registers the query routes on the given mux behind the auth
// middleware.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux, authMW *auth.Middleware) {
	mux.HandleFunc("POST /api/query", authMW.RequireAuth(h.Query))
	mux.HandleFunc("POST /api/metadata", authMW.RequireAuth(h.Metadata))
}

// Query handles POST /api/query: the full question-to-answer pipeline.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodeQuestion(w, r)
	if !ok {
		return
	}

	answer, err := h.orchestrator.ProcessQuestion(r.Context(), request.Question)
	if err != nil {
		h.writeProcessingError(w, r, request.Question, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		h.logger.Error("Failed to encode answer", zap.Error(err))
	}
}

// Metadata handles POST /api/metadata: retrieval only, no SQL execution.
// Useful for inspecting what the engine knows about a question.
func (h *QueryHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodeQuestion(w, r)
	if !ok {
		return
	}

	result, err := h.retriever.Retrieve(r.Context(), request.Question)
	if err != nil {
		h.writeProcessingError(w, r, request.Question, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode retrieval result", zap.Error(err))
	}
}

func (h *QueryHandler) decodeQuestion(w http.ResponseWriter, r *http.Request) (*QueryRequest, bool) {
	var request QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON with a question field")
		return nil, false
	}

	request.Question = strings.TrimSpace(request.Question)
	if request.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Question must not be empty")
		return nil, false
	}
	return &request, true
}

// writeProcessingError maps pipeline failures to API responses. Questions the
// engine cannot answer are client-visible 422s with guidance; everything else
// is a 500 with a stable error code.
func (h *QueryHandler) writeProcessingError(w http.ResponseWriter, r *http.Request, question string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoTablesFound):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "no_tables_found", err.Error())
	case errors.Is(err, sqlgen.ErrCannotAnswer):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "cannot_answer", err.Error())
	case errors.Is(err, apperrors.ErrUnsafeSQL):
		h.auditor.LogUnsafeSQL(r.Context(), audit.UnsafeSQLDetails{
			Question: question,
			Reason:   err.Error(),
		}, r.RemoteAddr)
		_ = ErrorResponse(w, http.StatusInternalServerError, "unsafe_sql", "Generated SQL failed validation")
	case errors.Is(err, apperrors.ErrGraphQuery):
		h.logger.Error("graph query failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "graph_query_failed", "Metadata retrieval failed")
	default:
		h.logger.Error("question processing failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "processing_failed", "Failed to process question")
	}
}
