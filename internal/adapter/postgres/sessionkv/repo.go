// Package sessionkv implements the per-session key-value backing store on
// PostgreSQL. Statements are built with squirrel; a write refreshes the
// owning session row in the same transaction so a purge never races it.
package sessionkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wordbook/internal/adapter/postgres"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides session key-value persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
	now  func() time.Time
}

// New creates a new session key-value repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		txm:  postgres.NewTxManager(pool),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Touch creates the session row or refreshes its last-seen time.
func (r *Repo) Touch(ctx context.Context, sessionID uuid.UUID) error {
	now := r.now()

	query, args, err := psql.
		Insert("sessions").
		Columns("id", "created_at", "last_seen_at").
		Values(sessionID, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "session", sessionID)
	}
	return nil
}

// Get returns the value stored under key. found is false when the session
// or the key does not exist.
func (r *Repo) Get(ctx context.Context, sessionID uuid.UUID, key string) (string, bool, error) {
	query, args, err := psql.
		Select("value").
		From("session_values").
		Where(sq.Eq{"session_id": sessionID, "key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build get query: %w", err)
	}

	var value string
	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, postgres.MapError(err, "session value", sessionID)
	}
	return value, true, nil
}

// Set overwrites the value stored under key.
func (r *Repo) Set(ctx context.Context, sessionID uuid.UUID, key, value string) error {
	return r.txm.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.Touch(ctx, sessionID); err != nil {
			return err
		}

		query, args, err := psql.
			Insert("session_values").
			Columns("session_id", "key", "value", "updated_at").
			Values(sessionID, key, value, r.now()).
			Suffix("ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build set query: %w", err)
		}

		if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, "session value", sessionID)
		}
		return nil
	})
}

// PurgeIdle deletes sessions last seen before the cutoff, together with
// their values. It returns the number of sessions removed.
func (r *Repo) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := psql.
		Delete("sessions").
		Where(sq.Lt{"last_seen_at": before.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}

	ct, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	return ct.RowsAffected(), nil
}

// Ping checks that the database is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
