// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/askarin/fieldvault/internal/config"
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/models"
)

// Handler carries the collaborators of the HTTP transport layer. It holds
// no per-request state; one instance serves all requests.
type Handler struct {
	gate    gate.GateService
	records store.RecordRepository
	config  *config.StructuredConfig

	logger *logger.Logger
}

// NewHandler constructs the HTTP handler over the gate and record store.
func NewHandler(g gate.GateService, records store.RecordRepository, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		gate:    g,
		records: records,
		config:  cfg,
		logger:  logger,
	}
}

// writeJSON renders v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to an HTTP status and renders a JSON error body.
// Internal errors are masked: the body carries the generic status text,
// never driver or SQL details.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(http.StatusInternalServerError)
	}

	writeJSON(w, status, models.ErrorResponse{Error: message})
}
