package models

// GateStatusResponse reports whether a master-secret verifier has been
// configured for the authenticated owner. The client uses it to branch
// between first-time setup and the regular unlock flow.
type GateStatusResponse struct {
	// Configured is true once SetVerifier has succeeded for the owner.
	Configured bool `json:"configured"`
}

// VerifyResponse is the outcome of a master-secret verification attempt.
// A mismatch is a regular false result, never an error: the caller must
// not be able to distinguish "wrong secret" from any richer signal.
type VerifyResponse struct {
	// Valid is true when the presented secret matches the stored verifier.
	Valid bool `json:"valid"`
}

// SetupResponse acknowledges a first-time verifier setup and carries the
// strength flag back to the caller. A weak secret is accepted — the flag
// exists so a UI can warn, not so the server can block.
type SetupResponse struct {
	// Weak is true when the accepted secret scored below the strength
	// threshold.
	Weak bool `json:"weak"`
}

// ErrorResponse is the uniform JSON error body returned by the API.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
}

// TokenResponse carries a development-issued JWT token. In production
// deployments tokens come from the external identity provider and this
// response is never used.
type TokenResponse struct {
	// Token is the compact JWS serialization ready for the
	// "Authorization: Bearer" header.
	Token string `json:"token"`
}

// ListResponse wraps a record listing with its length so clients can
// pre-allocate or validate without iterating the slice.
type ListResponse struct {
	// Records is the owner's record set, newest first.
	Records []Record `json:"records"`

	// Length is the total number of entries in Records.
	Length int `json:"length"`
}
