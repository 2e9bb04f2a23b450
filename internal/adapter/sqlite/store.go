// Package sqlite implements the per-session key-value backing store on an
// embedded SQLite database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/heartmarshall/wordbook/migrations"
)

// Store provides session key-value persistence backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and, when migrate is
// set, applies pending migrations.
func Open(ctx context.Context, path string, migrate bool, logger *slog.Logger) (*Store, error) {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")

	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if migrate {
		if err := up(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db, now: time.Now}, nil
}

func up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.SQLite())
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	for _, r := range results {
		logger.InfoContext(ctx, "migration applied",
			slog.String("driver", "sqlite"),
			slog.Int64("version", r.Source.Version),
			slog.Duration("took", r.Duration),
		)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Touch creates the session row or refreshes its last-seen time.
func (s *Store) Touch(ctx context.Context, sessionID uuid.UUID) error {
	return s.touch(ctx, s.db, sessionID)
}

func (s *Store) touch(ctx context.Context, ex execer, sessionID uuid.UUID) error {
	now := s.now().UnixMilli()

	query, args, err := sq.
		Insert("sessions").
		Columns("id", "created_at", "last_seen_at").
		Values(sessionID.String(), now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_seen_at = excluded.last_seen_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch query: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("session %s: touch: %w", sessionID, err)
	}
	return nil
}

// Get returns the value stored under key. found is false when the session
// or the key does not exist.
func (s *Store) Get(ctx context.Context, sessionID uuid.UUID, key string) (string, bool, error) {
	query, args, err := sq.
		Select("value").
		From("session_values").
		Where(sq.Eq{"session_id": sessionID.String(), "key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build get query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session value %s: %w", sessionID, err)
	}
	return value, true, nil
}

// Set overwrites the value stored under key, refreshing the session row in
// the same transaction.
func (s *Store) Set(ctx context.Context, sessionID uuid.UUID, key, value string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := s.touch(ctx, tx, sessionID); err != nil {
		return err
	}

	query, args, err := sq.
		Insert("session_values").
		Columns("session_id", "key", "value", "updated_at").
		Values(sessionID.String(), key, value, s.now().UnixMilli()).
		Suffix("ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("session value %s: %w", sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PurgeIdle deletes sessions last seen before the cutoff, together with
// their values. It returns the number of sessions removed.
func (s *Store) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := sq.
		Delete("sessions").
		Where(sq.Lt{"last_seen_at": before.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks that the database file is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
