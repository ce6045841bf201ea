package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 database/sql driver

	"github.com/askarin/fieldvault/internal/config"
	"github.com/askarin/fieldvault/internal/logger"
)

// DB wraps a database/sql connection with the dialect-specific pieces the
// repositories need: a squirrel statement builder carrying the right
// placeholder format and an error classifier for retry decisions.
type DB struct {
	*sql.DB
	builder    sq.StatementBuilderType
	classifier ErrorClassificator
	logger     *logger.Logger
}

// Builder returns the dialect-aware squirrel statement builder.
func (db *DB) Builder() sq.StatementBuilderType {
	return db.builder
}

// Classifier returns the dialect-aware error classifier, used when
// wrapping repositories with retries.
func (db *DB) Classifier() ErrorClassificator {
	return db.classifier
}

// NewConnectPostgres opens and pings a PostgreSQL connection via the pgx
// stdlib driver. Used by the server.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:         conn,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		classifier: NewPostgresErrorClassifier(),
		logger:     log,
	}, nil
}

// NewConnectSQLite opens a SQLite database at the given path (":memory:"
// for an in-memory database). Used for the client's local record cache.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY
	// churn under concurrent use.
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}

	return &DB{
		DB:         conn,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Question),
		classifier: NewSQLiteErrorClassifier(),
		logger:     log,
	}, nil
}
