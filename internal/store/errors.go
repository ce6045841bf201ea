package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a lookup, update, or delete targets
	// a record (identified by the compound owner_id + id key) that does not
	// exist. A cross-owner probe with a valid id of another owner produces
	// exactly this error — a simple miss, never an authorization signal
	// that would confirm the record exists.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrVerifierNotFound is returned when an owner has no master-secret
	// verifier yet (first-time setup has not happened).
	ErrVerifierNotFound = errors.New("verifier was not found")

	// ErrVerifierAlreadySet is returned when first-time verifier setup is
	// invoked for an owner that already has one. Overwriting silently would
	// strand every record encrypted under the previous secret, so "set" is
	// deliberately not idempotent.
	ErrVerifierAlreadySet = errors.New("verifier is already set")

	// ErrValidation is returned when a record fails a mandatory-field
	// check — an empty title, even as an encrypted empty string, keeps the
	// owner's listing degenerate and is rejected.
	ErrValidation = errors.New("record validation failed")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached or a transient failure persisted through the retry budget.
	// Callers may retry with backoff.
	ErrStoreUnavailable = errors.New("store is unavailable")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan record row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan record rows")
)
