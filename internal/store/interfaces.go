package store

import (
	"context"

	"github.com/askarin/fieldvault/models"
)

// RecordRepository is the owner-scoped CRUD contract of the record store.
//
// Implementations perform no cryptography: every attribute they see is an
// opaque string, already encrypted by the caller. All operations are
// scoped by owner — no operation may return or mutate a record belonging
// to a different owner, even when given a syntactically valid identifier.
// The scoping is enforced by compound (owner_id, id) lookups, never by
// trusting caller-supplied ownership claims.
//
// Each operation is independently atomic: a create, update, or delete
// either fully succeeds or fully fails. No cross-record transaction is
// provided; bulk flows (rekey re-encryption, import) are best-effort
// per record by design.
type RecordRepository interface {
	// Create persists a new record, assigning its identifier and
	// timestamps. The record's Title ciphertext must be non-empty, else
	// ErrValidation.
	Create(ctx context.Context, record models.Record) (models.Record, error)

	// List returns every record of the owner, newest first (creation
	// time descending). An owner with no records gets an empty slice.
	List(ctx context.Context, ownerID string) ([]models.Record, error)

	// Get returns the record with the given id belonging to the owner,
	// or ErrRecordNotFound.
	Get(ctx context.Context, ownerID string, id string) (models.Record, error)

	// Update replaces the attribute set of the record wholesale and
	// refreshes UpdatedAt. Returns ErrRecordNotFound when the compound
	// key does not match.
	Update(ctx context.Context, ownerID string, id string, record models.Record) (models.Record, error)

	// Delete removes the record, or returns ErrRecordNotFound.
	Delete(ctx context.Context, ownerID string, id string) error
}

// VerifierRepository persists the per-owner master-secret verifier.
// At most one verifier row exists per owner.
type VerifierRepository interface {
	// Get returns the owner's verifier or ErrVerifierNotFound.
	Get(ctx context.Context, ownerID string) (models.Verifier, error)

	// Create persists a first-time verifier. A duplicate owner yields
	// ErrVerifierAlreadySet.
	Create(ctx context.Context, verifier models.Verifier) (models.Verifier, error)

	// UpdateHash replaces the stored hash during a rekey and refreshes
	// UpdatedAt. Returns ErrVerifierNotFound when the owner has none.
	UpdateHash(ctx context.Context, ownerID string, newHash string) (models.Verifier, error)
}
