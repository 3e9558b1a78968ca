package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const documentsTable = "learner_documents"

// SQLBackend keeps one JSON document per learner in a relational table.
// Queries are built with ent's dialect-aware SQL builder, so the same code
// runs against SQLite and Postgres.
type SQLBackend struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	now     func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return newSQLBackend(ctx, db, dialect.SQLite)
}

// OpenPostgres connects to Postgres through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLBackend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLBackend(ctx, db, dialect.Postgres)
}

func newSQLBackend(ctx context.Context, db *sql.DB, d string) (*SQLBackend, error) {
	b := &SQLBackend{
		db:      db,
		drv:     entsql.OpenDB(d, db),
		dialect: d,
		now:     time.Now,
	}
	if err := b.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return b, nil
}

// createDocumentsTable is valid on both SQLite and Postgres.
const createDocumentsTable = `CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
	learner_id VARCHAR(255) NOT NULL PRIMARY KEY,
	document TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

func (b *SQLBackend) migrate(ctx context.Context) error {
	if err := b.drv.Exec(ctx, createDocumentsTable, []any{}, nil); err != nil {
		return fmt.Errorf("create %s: %w", documentsTable, err)
	}
	return nil
}

// DB returns the underlying *sql.DB for raw queries.
func (b *SQLBackend) DB() *sql.DB {
	return b.db
}

func (b *SQLBackend) Fetch(ctx context.Context, learnerID string) ([]byte, error) {
	query, args := entsql.Dialect(b.dialect).
		Select("document").
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var rows entsql.Rows
	if err := b.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("select document: %w", err)
		}
		return nil, ErrNotFound
	}
	var doc string
	if err := rows.Scan(&doc); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return []byte(doc), nil
}

func (b *SQLBackend) Put(ctx context.Context, learnerID string, doc []byte) error {
	query, args := entsql.Dialect(b.dialect).
		Insert(documentsTable).
		Columns("learner_id", "document", "updated_at").
		Values(learnerID, string(doc), b.now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("learner_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, learnerID string) error {
	query, args := entsql.Dialect(b.dialect).
		Delete(documentsTable).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// UpdatedAt returns when the learner's document was last written.
func (b *SQLBackend) UpdatedAt(ctx context.Context, learnerID string) (time.Time, error) {
	query, args := entsql.Dialect(b.dialect).
		Select("updated_at").
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var ms int64
	err := b.db.QueryRowContext(ctx, query, args...).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("select updated_at: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// Close closes the database connection.
func (b *SQLBackend) Close() error {
	return b.drv.Close()
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
