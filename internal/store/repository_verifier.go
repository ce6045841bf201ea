package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

// verifierColumns is the canonical column order shared by verifier queries.
var verifierColumns = []string{
	"owner_id",
	"secret_hash",
	"created_at",
	"updated_at",
}

// verifierRepository is the SQL-backed implementation of
// [VerifierRepository]. The owner_id column is the primary key, so the
// one-verifier-per-owner invariant is enforced by the database itself —
// a concurrent double-setup loses on the unique constraint rather than
// racing in application code.
type verifierRepository struct {
	*DB
	logger *logger.Logger
}

// NewVerifierRepository constructs a [VerifierRepository] backed by the
// provided database connection and logger.
func NewVerifierRepository(db *DB, logger *logger.Logger) VerifierRepository {
	logger.Debug().Msg("creating verifier repository")
	return &verifierRepository{
		DB:     db,
		logger: logger,
	}
}

// Get implements [VerifierRepository].
func (r *verifierRepository) Get(ctx context.Context, ownerID string) (models.Verifier, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.Builder().
		Select(verifierColumns...).
		From(models.Verifier{}.TableName()).
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "verifierRepository.Get").
			Str("owner_id", ownerID).
			Msg("failed to build select query")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var verifier models.Verifier
	scanErr := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&verifier.OwnerID,
		&verifier.SecretHash,
		&verifier.CreatedAt,
		&verifier.UpdatedAt,
	)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return models.Verifier{}, ErrVerifierNotFound
		}
		log.Err(scanErr).
			Str("func", "verifierRepository.Get").
			Str("owner_id", ownerID).
			Msg("failed to scan verifier row")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return verifier, nil
}

// Create implements [VerifierRepository]. A unique-constraint violation
// maps to [ErrVerifierAlreadySet]: first-time setup is never idempotent.
func (r *verifierRepository) Create(ctx context.Context, verifier models.Verifier) (models.Verifier, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	verifier.CreatedAt = now
	verifier.UpdatedAt = now

	query, args, err := r.Builder().
		Insert(verifier.TableName()).
		Columns(verifierColumns...).
		Values(verifier.OwnerID, verifier.SecretHash, verifier.CreatedAt, verifier.UpdatedAt).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "verifierRepository.Create").
			Str("owner_id", verifier.OwnerID).
			Msg("failed to build insert query")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return models.Verifier{}, ErrVerifierAlreadySet
		}
		log.Err(err).
			Str("func", "verifierRepository.Create").
			Str("owner_id", verifier.OwnerID).
			Msg("failed to insert verifier")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return verifier, nil
}

// UpdateHash implements [VerifierRepository]. Only rekey calls this, after
// the old secret has been verified by the gate.
func (r *verifierRepository) UpdateHash(ctx context.Context, ownerID string, newHash string) (models.Verifier, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.Builder().
		Update(models.Verifier{}.TableName()).
		Set("secret_hash", newHash).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "verifierRepository.UpdateHash").
			Str("owner_id", ownerID).
			Msg("failed to build update query")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "verifierRepository.UpdateHash").
			Str("owner_id", ownerID).
			Msg("failed to execute update statement")
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Verifier{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return models.Verifier{}, ErrVerifierNotFound
	}

	return r.Get(ctx, ownerID)
}
