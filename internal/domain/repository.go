package domain

import (
	"context"
	"time"
)

// AnimeRepository persists synced anime records.
type AnimeRepository interface {
	// Upsert inserts the record or fully replaces its mutable fields when
	// a row with the same MAL id already exists. Genre links are replaced
	// as a set; unknown genres are created. Returns the stored record with
	// local ids filled in.
	Upsert(ctx context.Context, anime Anime) (*Anime, error)

	// GetByMalID returns the stored record, or ErrNotFound.
	GetByMalID(ctx context.Context, malID int64) (*Anime, error)

	// GetAll returns every stored record, genres attached.
	GetAll(ctx context.Context) ([]Anime, error)
}

// CacheStore is the dataset-keyed result cache. Implementations enforce
// the given TTL themselves.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes exactly one key; DeletePrefix removes every key
	// under a prefix.
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error

	Close() error
}
