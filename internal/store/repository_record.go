package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

// recordColumns is the canonical column order shared by every record query.
var recordColumns = []string{
	"id",
	"owner_id",
	"title",
	"username",
	"secret_value",
	"locator",
	"notes",
	"created_at",
	"updated_at",
}

// recordRepository is the SQL-backed implementation of [RecordRepository].
// It executes all record CRUD operations against the "records" table using
// the embedded [*DB] connection; the dialect (PostgreSQL or SQLite) is
// hidden behind the DB's statement builder.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced
// with structured fields (owner_id, record id, etc.). Attribute values are
// ciphertext and still never appear in logs.
type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] backed by the provided
// database connection and logger.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

// Create implements [RecordRepository]. The store assigns the identifier
// and both timestamps; whatever the caller put into those fields is
// ignored. An empty title ciphertext fails with [ErrValidation] — the
// title is mandatory even as ciphertext, so the owner's listing never
// degenerates into unnamed rows.
func (r *recordRepository) Create(ctx context.Context, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if record.Title == "" {
		return models.Record{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if record.OwnerID == "" {
		return models.Record{}, fmt.Errorf("%w: owner must not be empty", ErrValidation)
	}

	now := time.Now().UTC()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now

	query, args, err := r.Builder().
		Insert(record.TableName()).
		Columns(recordColumns...).
		Values(
			record.ID,
			record.OwnerID,
			record.Title,
			record.Username,
			record.Secret,
			record.Locator,
			record.Notes,
			record.CreatedAt,
			record.UpdatedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Create").
			Str("owner_id", record.OwnerID).
			Msg("failed to build insert query")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "recordRepository.Create").
			Str("owner_id", record.OwnerID).
			Msg("failed to insert record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return record, nil
}

// List implements [RecordRepository]. Records are ordered by creation
// time descending (id as a tie-break) so the newest entry lists first.
func (r *recordRepository) List(ctx context.Context, ownerID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.Builder().
		Select(recordColumns...).
		From((&models.Record{}).TableName()).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.List").
			Str("owner_id", ownerID).
			Msg("failed to build select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.List").
			Str("owner_id", ownerID).
			Msg("failed to execute query for listing records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.Record, 0, 50)

	for rows.Next() {
		var record models.Record

		scanErr := rows.Scan(
			&record.ID,
			&record.OwnerID,
			&record.Title,
			&record.Username,
			&record.Secret,
			&record.Locator,
			&record.Notes,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.List").
				Str("owner_id", ownerID).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		results = append(results, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.List").
			Str("owner_id", ownerID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

// Get implements [RecordRepository]. The lookup always uses the compound
// (owner_id, id) key: a record id belonging to another owner is a plain
// miss, indistinguishable from a record that never existed.
func (r *recordRepository) Get(ctx context.Context, ownerID string, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.Builder().
		Select(recordColumns...).
		From((&models.Record{}).TableName()).
		Where(sq.Eq{"owner_id": ownerID, "id": id}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("owner_id", ownerID).
			Msg("failed to build select query")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var record models.Record
	scanErr := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&record.ID,
		&record.OwnerID,
		&record.Title,
		&record.Username,
		&record.Secret,
		&record.Locator,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return models.Record{}, ErrRecordNotFound
		}
		log.Err(scanErr).
			Str("func", "recordRepository.Get").
			Str("owner_id", ownerID).
			Str("id", id).
			Msg("failed to scan record row")
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return record, nil
}

// Update implements [RecordRepository]. The attribute set is replaced
// wholesale — partial updates do not exist at this layer — and UpdatedAt
// is refreshed. Zero affected rows means the compound key did not match.
func (r *recordRepository) Update(ctx context.Context, ownerID string, id string, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if record.Title == "" {
		return models.Record{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}

	query, args, err := r.Builder().
		Update(record.TableName()).
		Set("title", record.Title).
		Set("username", record.Username).
		Set("secret_value", record.Secret).
		Set("locator", record.Locator).
		Set("notes", record.Notes).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"owner_id": ownerID, "id": id}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Update").
			Str("owner_id", ownerID).
			Msg("failed to build update query")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Update").
			Str("owner_id", ownerID).
			Str("id", id).
			Msg("failed to execute update statement")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return models.Record{}, ErrRecordNotFound
	}

	// Re-read so the caller gets the canonical row, including the
	// store-assigned timestamps.
	return r.Get(ctx, ownerID, id)
}

// Delete implements [RecordRepository].
func (r *recordRepository) Delete(ctx context.Context, ownerID string, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.Builder().
		Delete((&models.Record{}).TableName()).
		Where(sq.Eq{"owner_id": ownerID, "id": id}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Delete").
			Str("owner_id", ownerID).
			Msg("failed to build delete query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Delete").
			Str("owner_id", ownerID).
			Str("id", id).
			Msg("failed to execute delete statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
