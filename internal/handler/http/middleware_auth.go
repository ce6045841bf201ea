// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Authentication and request logging are handled at this
// layer before requests reach the gate and store collaborators.
package http

import (
	"context"
	"net/http"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer
// token, validates it via [utils.ValidateAndParseJWTToken], and — on
// success — stores the trusted owner identifier from the "sub" claim in
// the request context under [utils.OwnerIDCtxKey] before delegating to
// the next handler.
//
// This middleware only *consumes* tokens; the vault never establishes
// identities itself. Requests with a missing, malformed, expired, or
// otherwise invalid token are rejected with HTTP 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(ErrInvalidAuthorizationHeader).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.config.App.TokenSignKey, h.config.App.TokenIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		// Store the authenticated owner's ID in the context so that
		// downstream handlers can retrieve it without re-parsing the token.
		ctx := context.WithValue(r.Context(), utils.OwnerIDCtxKey, token.OwnerID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFromRequest returns the authenticated owner id placed in the
// context by the auth middleware. A missing value means the route was
// wired outside the auth group, which is a programming error; the caller
// responds 401 rather than panicking.
func ownerFromRequest(r *http.Request) (string, bool) {
	return utils.GetOwnerIDFromContext(r.Context())
}
