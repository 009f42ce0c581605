package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/apexcrm/leadflow/internal/observability/metrics"
	"github.com/apexcrm/leadflow/pkg/logging"
)

// Handler serves the login and logout endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewHandler creates a new auth handler. metrics may be nil.
func NewHandler(service *Service, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.ObserveLogin("failure")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		h.metrics.ObserveLogin("error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.ObserveLogin("success")

	h.logger.Info("user logged in", "email", req.Email)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Logout handles POST /api/auth/logout, revoking the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
