package keychain

import "errors"

// Sentinel errors returned by keychain operations. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrWeakSecret is returned when a master secret fails the hard part
	// of the strength policy (shorter than MinSecretLength). It is
	// user-correctable: a longer secret will pass.
	ErrWeakSecret = errors.New("master secret is too weak")

	// ErrWrongKeyOrCorruptData is returned when a ciphertext cannot be
	// decoded or its authentication tag does not verify under the given
	// key. This is the only signal available to distinguish "wrong master
	// secret" from "corrupted record"; the scheme deliberately does not
	// disambiguate further. Never retried automatically — retrying with
	// the same key cannot succeed.
	ErrWrongKeyOrCorruptData = errors.New("wrong key or corrupt data")
)
