package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/askarin/fieldvault/internal/utils"
	"github.com/askarin/fieldvault/models"
)

// buildVersion is stamped at build time via
// -ldflags "-X .../internal/handler/http.buildVersion=v1.2.3".
var buildVersion = "N/A"

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(buildVersion))
}

// issueTokenRequest names the owner a development token is issued for.
type issueTokenRequest struct {
	Owner string `json:"owner"`
}

// issueToken mints a JWT for local development. In production the token
// issuer is an external identity provider and this endpoint is disabled
// by leaving TokenIssuer unset.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	if h.config.App.TokenIssuer == "" || h.config.App.TokenDuration == 0 {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Owner == "" {
		writeError(w, fmt.Errorf("%w: owner is required", ErrInvalidRequestBody))
		return
	}

	token, err := utils.GenerateJWTToken(h.config.App.TokenIssuer, req.Owner, h.config.App.TokenDuration, h.config.App.TokenSignKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token.String()})
}
