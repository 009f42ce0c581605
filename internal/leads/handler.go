package leads

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/apexcrm/leadflow/internal/observability/metrics"
	"github.com/apexcrm/leadflow/pkg/logging"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewHandler creates a new leads handler. metrics may be nil.
func NewHandler(repo Repository, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	return &Handler{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Create handles POST /api/leads. This is the public lead-capture
// endpoint; any status or notes in the body are ignored.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, "create lead", err)
		return
	}
	h.metrics.ObserveLeadCreated()

	h.logger.Info("lead created", "id", lead.ID, "source", lead.Source)
	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /api/leads, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, "list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/leads/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get lead", err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus handles PATCH /api/leads/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, "update status", err)
		return
	}
	h.metrics.ObserveStatusChange(string(lead.Status))

	h.logger.Info("lead status updated", "id", lead.ID, "status", lead.Status)
	writeJSON(w, http.StatusOK, lead)
}

// AddNote handles POST /api/leads/{id}/notes.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.AddNote(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.fail(w, "add note", err)
		return
	}
	h.metrics.ObserveNoteOp("add")

	writeJSON(w, http.StatusCreated, lead)
}

// UpdateNote handles PATCH /api/leads/{id}/notes/{noteID}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.UpdateNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteID"), req.Text)
	if err != nil {
		h.fail(w, "update note", err)
		return
	}
	h.metrics.ObserveNoteOp("update")

	writeJSON(w, http.StatusOK, lead)
}

// DeleteNote handles DELETE /api/leads/{id}/notes/{noteID}. The
// updated lead is returned so clients can merge it directly.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	lead, err := h.repo.DeleteNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteID"))
	if err != nil {
		h.fail(w, "delete note", err)
		return
	}
	h.metrics.ObserveNoteOp("delete")

	writeJSON(w, http.StatusOK, lead)
}

// Stats handles GET /api/leads/stats with the derived dashboard views.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, "lead stats", err)
		return
	}
	writeJSON(w, http.StatusOK, ComputeStats(list, time.Now().UTC()))
}

// fail maps service errors onto the wire: validation 400, missing
// record 404, anything else 500.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("lead operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
