// Package api provides HTTP handlers and routing for the workflow service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Eugenepoly/market-agent/internal/orchestrator"
	"github.com/Eugenepoly/market-agent/internal/statestore"
	"github.com/Eugenepoly/market-agent/internal/validator"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	orch        *orchestrator.Orchestrator
	store       statestore.Store
	validator   *validator.Validator
	corsOrigins []string
	logger      *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *orchestrator.Orchestrator, store statestore.Store, v *validator.Validator, corsOrigins []string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		orch:        orch,
		store:       store,
		validator:   v,
		corsOrigins: corsOrigins,
		logger:      logger,
	}
}

// --- Health endpoints ---

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready, checking that the state store answers.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.List(r.Context()); err != nil {
		writeErrorResponse(w, r, http.StatusServiceUnavailable, ErrCodeInternalError,
			"state store unhealthy", map[string]interface{}{"cause": err.Error()})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- Workflow endpoints ---

// RunWorkflowRequest is the body for POST /workflow/{name}.
type RunWorkflowRequest struct {
	SkipAnalysis bool   `json:"skip_analysis,omitempty"`
	Topic        string `json:"topic,omitempty"`
	CollectData  bool   `json:"collect_data,omitempty"`
	Quick        bool   `json:"quick,omitempty"`
}

// RunWorkflow handles POST /workflow/{name}. The response is the full
// serialized context after the run completed, failed, or suspended.
func (h *Handlers) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req RunWorkflowRequest
	if !h.decodeBody(w, r, &req, h.validator.ValidateRunRequest) {
		return
	}

	wf, err := h.orch.RunWorkflow(r.Context(), name, orchestrator.RunOptions{
		SkipAnalysis:    req.SkipAnalysis,
		Topic:           req.Topic,
		CollectData:     req.CollectData,
		QuickCollection: req.Quick,
	})
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wf)
}

// GetWorkflowStatus handles GET /workflow/{id}/status.
func (h *Handlers) GetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wf, err := h.orch.GetStatus(r.Context(), id)
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wf)
}

// ApproveWorkflow handles POST /workflow/{id}/approve.
func (h *Handlers) ApproveWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wf, err := h.orch.Approve(r.Context(), id)
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wf)
}

// RejectWorkflowRequest is the body for POST /workflow/{id}/reject.
type RejectWorkflowRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RejectWorkflow handles POST /workflow/{id}/reject.
func (h *Handlers) RejectWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req RejectWorkflowRequest
	if !h.decodeBody(w, r, &req, h.validator.ValidateRejectRequest) {
		return
	}

	wf, err := h.orch.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wf)
}

// ListWorkflows handles GET /workflows.
func (h *Handlers) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	all, err := h.orch.List(r.Context())
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, all)
}

// --- Agent endpoints ---

// RunAgentRequest is the body for POST /agent/{name}. Seed entries
// become plain-text context data keyed by agent name, so an agent with
// upstream dependencies can run standalone.
type RunAgentRequest struct {
	Topic string            `json:"topic,omitempty"`
	Quick bool              `json:"quick,omitempty"`
	Seed  map[string]string `json:"seed,omitempty"`
}

// RunAgent handles POST /agent/{name}.
func (h *Handlers) RunAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req RunAgentRequest
	if !h.decodeBody(w, r, &req, h.validator.ValidateAgentRequest) {
		return
	}

	var seed map[string]*types.Output
	if len(req.Seed) > 0 {
		seed = make(map[string]*types.Output, len(req.Seed))
		for k, v := range req.Seed {
			seed[k] = types.TextOutput(v)
		}
	}

	wf, err := h.orch.RunSingleAgent(r.Context(), name, seed, orchestrator.RunOptions{
		Topic:           req.Topic,
		QuickCollection: req.Quick,
	})
	if err != nil {
		h.respondOrchestratorError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, wf)
}

// --- helpers ---

// decodeBody decodes and validates a JSON request body. An empty body is
// treated as an empty object. Returns false when a response was written.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, validate func(map[string]interface{}) *validator.ValidationResult) bool {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if !errors.Is(err, io.EOF) {
			writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest,
				"invalid request body", map[string]interface{}{"cause": err.Error()})
			return false
		}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	if h.validator != nil {
		if result := validate(raw); !result.Valid {
			writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest,
				"request body failed validation", map[string]interface{}{"errors": result.Errors})
			return false
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"re-encode request body", nil)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest,
			"invalid request body", map[string]interface{}{"cause": err.Error()})
		return false
	}
	return true
}

// respondOrchestratorError maps domain errors to HTTP statuses: unknown
// names are caller errors, missing ids are 404, invalid approval state
// is a conflict, anything else is internal.
func (h *Handlers) respondOrchestratorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrWorkflowNotFound),
		errors.Is(err, orchestrator.ErrAgentNotFound):
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.Is(err, statestore.ErrNotFound):
		writeErrorResponse(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, orchestrator.ErrInvalidState):
		writeErrorResponse(w, r, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path)
		writeErrorResponse(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"internal error", nil)
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}
