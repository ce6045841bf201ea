package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

// secretRequest is the body of gate setup and verify calls. The secret
// travels inside the TLS channel and is hashed or compared immediately;
// it is never persisted or logged in raw form.
type secretRequest struct {
	Secret string `json:"secret"`
}

// rekeyRequest is the body of a gate rekey call.
type rekeyRequest struct {
	OldSecret string `json:"oldSecret"`
	NewSecret string `json:"newSecret"`
}

func (h *Handler) gateStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	configured, err := h.gate.HasVerifier(r.Context(), ownerID)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to check verifier status")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GateStatusResponse{Configured: configured})
}

func (h *Handler) gateSetup(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req secretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	strength, err := h.gate.SetVerifier(r.Context(), ownerID, req.Secret)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("verifier setup failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.SetupResponse{Weak: strength.Weak})
}

func (h *Handler) gateVerify(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req secretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	valid, err := h.gate.Verify(r.Context(), ownerID, req.Secret)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("verification failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyResponse{Valid: valid})
}

func (h *Handler) gateRekey(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req rekeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	strength, err := h.gate.Rekey(r.Context(), ownerID, req.OldSecret, req.NewSecret)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("rekey failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SetupResponse{Weak: strength.Weak})
}
