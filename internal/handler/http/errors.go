package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned when a protected route is
	// called without an "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty authorization header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header does not follow the "Bearer <token>" format.
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

	// ErrInvalidRequestBody is returned when a request body cannot be
	// decoded into the expected shape.
	ErrInvalidRequestBody = errors.New("invalid request body")
)
