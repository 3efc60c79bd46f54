package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/timvw/prompt-grader/internal/evaluator"
	"github.com/timvw/prompt-grader/internal/model"
)

const defaultMaxBodyBytes = 64 * 1024

type analyzeHandler struct {
	evaluator    *evaluator.Evaluator
	logger       *slog.Logger
	maxBodyBytes int64
}

// ServeHTTP handles POST /api/analyze.
func (h *analyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := h.maxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	var req model.EvaluationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil {
		// An unreadable body carries no usable prompt.
		h.logger.Warn("invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, evaluator.MessageValidation)
		return
	}

	reply, err := h.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		evalErr := evaluator.AsError(err)
		writeError(w, evalErr.Status(), evalErr.Message())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply.Raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: message})
}
