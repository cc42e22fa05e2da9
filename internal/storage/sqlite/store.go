// Package sqlite provides the durable store: snapshot blobs and process-wide
// properties in one SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Justash01/inventory-saver/internal/snapshot"
)

//go:embed schema.sql
var schemaSQL string

const (
	dialectSQLite = "sqlite3"

	tableSnapshots  = "snapshots"
	tableProperties = "properties"

	colKey       = "key"
	colBlob      = "blob"
	colCreatedAt = "created_at"
	colValue     = "value"
)

var dialect = goqu.Dialect(dialectSQLite)

// Store persists snapshots and properties in SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores a snapshot blob.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	query, args, err := dialect.Insert(tableSnapshots).Prepared(true).
		Rows(goqu.Record{colKey: key, colBlob: blob, colCreatedAt: s.now().UTC().UnixMilli()}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return snapshot.ErrExists
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Get returns the blob stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := dialect.From(tableSnapshots).Prepared(true).
		Select(colBlob).
		Where(goqu.C(colKey).Eq(key)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var blob []byte
	if err := s.db.GetContext(ctx, &blob, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrNotFound
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return blob, nil
}

// Delete removes the snapshot under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := dialect.Delete(tableSnapshots).Prepared(true).
		Where(goqu.C(colKey).Eq(key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return snapshot.ErrNotFound
	}
	return nil
}

// Keys returns the snapshot keys starting with prefix, sorted.
// The prefix is compared literally, so LIKE wildcards in labels are harmless.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := dialect.From(tableSnapshots).Prepared(true).
		Select(colKey).
		Where(goqu.Func("substr", goqu.C(colKey), 1, len(prefix)).Eq(prefix)).
		Order(goqu.C(colKey).Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	keys := []string{}
	if err := s.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("select snapshot keys: %w", err)
	}
	return keys, nil
}

// Property returns a stored property value.
func (s *Store) Property(ctx context.Context, key string) (string, bool, error) {
	query, args, err := dialect.From(tableProperties).Prepared(true).
		Select(colValue).
		Where(goqu.C(colKey).Eq(key)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}
	var value string
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select property %s: %w", key, err)
	}
	return value, true, nil
}

// SetProperty writes a property, replacing any previous value.
func (s *Store) SetProperty(ctx context.Context, key, value string) error {
	del, delArgs, err := dialect.Delete(tableProperties).Prepared(true).
		Where(goqu.C(colKey).Eq(key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	ins, insArgs, err := dialect.Insert(tableProperties).Prepared(true).
		Rows(goqu.Record{colKey: key, colValue: value}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return errors.Join(fmt.Errorf("set property %s: %w", key, err), tx.Rollback())
	}
	if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
		return errors.Join(fmt.Errorf("set property %s: %w", key, err), tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

// DeleteProperty removes a property. Deleting a missing property is not an error.
func (s *Store) DeleteProperty(ctx context.Context, key string) error {
	query, args, err := dialect.Delete(tableProperties).Prepared(true).
		Where(goqu.C(colKey).Eq(key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete property %s: %w", key, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
