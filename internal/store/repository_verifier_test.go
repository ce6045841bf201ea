package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

func newTestVerifierRepo(t *testing.T) (*verifierRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &verifierRepository{
		DB: &DB{
			DB:         db,
			builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
			classifier: NewPostgresErrorClassifier(),
			logger:     l,
		},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code}
}

func verifierRows(verifiers ...models.Verifier) *sqlmock.Rows {
	rows := sqlmock.NewRows(verifierColumns)
	for _, v := range verifiers {
		rows.AddRow(v.OwnerID, v.SecretHash, v.CreatedAt, v.UpdatedAt)
	}
	return rows
}

func TestVerifierGet_Success(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	want := models.Verifier{OwnerID: "alice@example.com", SecretHash: "$2a$12$hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM verifiers").
		WithArgs("alice@example.com").
		WillReturnRows(verifierRows(want))

	got, err := repo.Get(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SecretHash != want.SecretHash {
		t.Errorf("got hash %s, want %s", got.SecretHash, want.SecretHash)
	}
}

func TestVerifierGet_NotFound(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM verifiers").
		WithArgs("nobody@example.com").
		WillReturnRows(verifierRows())

	_, err := repo.Get(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrVerifierNotFound) {
		t.Fatalf("expected ErrVerifierNotFound, got %v", err)
	}
}

func TestVerifierCreate_Success(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO verifiers").
		WithArgs("alice@example.com", "$2a$12$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Create(context.Background(), models.Verifier{
		OwnerID:    "alice@example.com",
		SecretHash: "$2a$12$hash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Errorf("expected store-assigned timestamps")
	}
}

func TestVerifierCreate_AlreadySet(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO verifiers").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.Create(context.Background(), models.Verifier{
		OwnerID:    "alice@example.com",
		SecretHash: "$2a$12$second",
	})
	if !errors.Is(err, ErrVerifierAlreadySet) {
		t.Fatalf("expected ErrVerifierAlreadySet, got %v", err)
	}
}

func TestVerifierUpdateHash_Success(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rotated := models.Verifier{OwnerID: "alice@example.com", SecretHash: "$2a$12$new", CreatedAt: now.Add(-time.Hour), UpdatedAt: now}

	mock.ExpectExec("UPDATE verifiers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM verifiers").
		WithArgs("alice@example.com").
		WillReturnRows(verifierRows(rotated))

	got, err := repo.UpdateHash(context.Background(), "alice@example.com", "$2a$12$new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SecretHash != "$2a$12$new" {
		t.Errorf("expected rotated hash, got %s", got.SecretHash)
	}
}

func TestVerifierUpdateHash_NotFound(t *testing.T) {
	repo, mock, db := newTestVerifierRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE verifiers").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateHash(context.Background(), "nobody@example.com", "$2a$12$new")
	if !errors.Is(err, ErrVerifierNotFound) {
		t.Fatalf("expected ErrVerifierNotFound, got %v", err)
	}
}
