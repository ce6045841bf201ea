package gate

import "errors"

// ErrWrongSecret is returned by rekey when the presented current secret
// does not match the stored verifier. Plain verification reports a
// mismatch as a boolean, not an error, so that callers can distinguish
// "wrong secret" from infrastructure failures without string matching.
var ErrWrongSecret = errors.New("wrong master secret")
