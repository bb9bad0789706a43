package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/domain"
)

// CacheRepo implements domain.CacheStore on the sqlite cache_entries
// table. It is the fallback cache backend when no Redis address is
// configured; expiry is enforced on read and stale rows are pruned
// opportunistically.
type CacheRepo struct {
	log zerolog.Logger
	db  *DB
}

var _ domain.CacheStore = (*CacheRepo)(nil)

// NewCacheRepo creates a new sqlite-backed cache store
func NewCacheRepo(log zerolog.Logger, db *DB) *CacheRepo {
	return &CacheRepo{
		log: log.With().Str("repo", "cache").Logger(),
		db:  db,
	}
}

func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	queryBuilder := r.db.squirrel.
		Select("payload", "expires_at").
		From("cache_entries").
		Where(sq.Eq{"key": key})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, false, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Get")

	var (
		payload   []byte
		expiresAt string
	)
	err = r.db.handler.QueryRowContext(ctx, query, args...).Scan(&payload, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "error executing query")
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || !time.Now().Before(expiry) {
		_ = r.Delete(ctx, key)
		return nil, false, nil
	}

	return payload, true, nil
}

func (r *CacheRepo) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Format(time.RFC3339)

	queryBuilder := r.db.squirrel.
		Replace("cache_entries").
		Columns("key", "payload", "expires_at").
		Values(key, payload, expiresAt)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Set")

	_, err = r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.handler.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		return errors.Wrap(err, "error deleting cache entry")
	}
	return nil
}

func (r *CacheRepo) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := r.db.handler.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE key = ? OR key LIKE ? || '%'", prefix, prefix)
	if err != nil {
		return errors.Wrap(err, "error deleting cache entries")
	}
	return nil
}

// Prune removes every expired entry. Called on startup so the table does
// not grow without bound between runs.
func (r *CacheRepo) Prune(ctx context.Context) (int64, error) {
	now := time.Now().Format(time.RFC3339)

	res, err := r.db.handler.ExecContext(ctx, "DELETE FROM cache_entries WHERE expires_at <= ?", now)
	if err != nil {
		return 0, errors.Wrap(err, "error pruning cache entries")
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		r.log.Debug().Int64("pruned", n).Msg("removed expired cache entries")
	}
	return n, nil
}

func (r *CacheRepo) Close() error {
	return nil
}
