package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

// The record endpoints carry ciphertext only: every attribute value was
// encrypted by the client's keychain before it hit the wire. The server
// stores and returns the blobs verbatim.

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	// The owner comes from the token, never from the body.
	record.OwnerID = ownerID

	created, err := h.records.Create(r.Context(), record)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to create record")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	records, err := h.records.List(r.Context(), ownerID)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to list records")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ListResponse{Records: records, Length: len(records)})
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	record, err := h.records.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to get record")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	updated, err := h.records.Update(r.Context(), ownerID, chi.URLParam(r, "id"), record)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to update record")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.records.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to delete record")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
