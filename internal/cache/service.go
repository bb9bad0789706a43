package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/domain"
)

// Layer is the cache-aside tier in front of the Jikan client. Values are
// serialized as JSON and stored under "<dataset>:<key>" with the
// dataset's TTL. A failing store never fails the caller: reads degrade
// to a miss and writes are dropped with a warning.
type Layer struct {
	log   zerolog.Logger
	store domain.CacheStore
	ttls  map[Dataset]time.Duration
}

// NewLayer builds the cache layer. animeTTL is the configurable TTL for
// the anime-by-id dataset; listing datasets have fixed policies.
func NewLayer(log zerolog.Logger, store domain.CacheStore, animeTTL time.Duration) *Layer {
	return &Layer{
		log:   log.With().Str("module", "cache").Logger(),
		store: store,
		ttls: map[Dataset]time.Duration{
			DatasetAnimeByID: animeTTL,
			DatasetSearch:    SearchTTL,
			DatasetTop:       TopTTL,
			DatasetSeasonal:  SeasonalTTL,
		},
	}
}

// Get looks up key in dataset and unmarshals the hit into out. A store
// error is logged and reported as a miss.
func (l *Layer) Get(ctx context.Context, dataset Dataset, key string, out any) bool {
	payload, ok, err := l.store.Get(ctx, l.fullKey(dataset, key))
	if err != nil {
		l.log.Warn().Err(err).Str("dataset", string(dataset)).Str("key", key).Msg("cache read failed")
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		l.log.Warn().Err(err).Str("dataset", string(dataset)).Str("key", key).Msg("cache entry corrupt, dropping")
		_ = l.store.Delete(ctx, l.fullKey(dataset, key))
		return false
	}

	return true
}

// Put stores value under the dataset's TTL. Nil values are never cached:
// a degraded fallback must not masquerade as a true negative.
func (l *Layer) Put(ctx context.Context, dataset Dataset, key string, value any) {
	if value == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		l.log.Warn().Err(err).Str("dataset", string(dataset)).Str("key", key).Msg("cache marshal failed")
		return
	}

	if err := l.store.Set(ctx, l.fullKey(dataset, key), payload, l.ttls[dataset]); err != nil {
		l.log.Warn().Err(err).Str("dataset", string(dataset)).Str("key", key).Msg("cache write failed")
	}
}

// Evict removes every entry in dataset whose key starts with keyPrefix.
// An empty prefix clears the whole dataset.
func (l *Layer) Evict(ctx context.Context, dataset Dataset, keyPrefix string) error {
	if err := l.store.DeletePrefix(ctx, l.fullKey(dataset, keyPrefix)); err != nil {
		return errors.Wrap(err, "cache evict failed")
	}
	return nil
}

// TTL returns the configured policy for a dataset.
func (l *Layer) TTL(dataset Dataset) time.Duration {
	return l.ttls[dataset]
}

func (l *Layer) fullKey(dataset Dataset, key string) string {
	return string(dataset) + ":" + key
}
