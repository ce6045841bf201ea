package gate

import (
	"context"

	"github.com/askarin/fieldvault/internal/keychain"
)

// GateService guards the one-way master-secret verifier for each owner.
//
// The gate never sees derived encryption keys and never stores the secret
// itself: only a bcrypt hash of it, usable to answer "is this the same
// secret?" and nothing else. Losing the verifier therefore loses nothing
// the ciphertext does not already protect.
type GateService interface {
	// HasVerifier reports whether a verifier has been set up for the owner.
	HasVerifier(ctx context.Context, ownerID string) (bool, error)

	// SetVerifier performs first-time setup: it scores the secret, hashes
	// it, and stores the verifier. Fails with [keychain.ErrWeakSecret] when
	// the secret is below the minimum length, and with
	// [store.ErrVerifierAlreadySet] when a verifier already exists — setup
	// is never an overwrite. The returned strength report is advisory; a
	// weak-but-long-enough secret is accepted and flagged.
	SetVerifier(ctx context.Context, ownerID string, secret string) (keychain.Strength, error)

	// Verify checks the presented secret against the stored verifier.
	// A mismatch yields (false, nil); errors are reserved for missing
	// verifiers and infrastructure failures.
	Verify(ctx context.Context, ownerID string, secret string) (bool, error)

	// Rekey replaces the stored verifier after proving knowledge of the
	// current secret. Fails with [ErrWrongSecret] when oldSecret does not
	// match, leaving the verifier untouched. The new secret is subject to
	// the same policy as SetVerifier.
	Rekey(ctx context.Context, ownerID string, oldSecret string, newSecret string) (keychain.Strength, error)
}
