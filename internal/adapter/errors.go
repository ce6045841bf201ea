package adapter

import "errors"

// ErrUnauthorized is returned when the server rejects the adapter's token.
// The caller needs a fresh token from the authentication collaborator;
// retrying with the same one cannot succeed.
var ErrUnauthorized = errors.New("client unauthorized")
