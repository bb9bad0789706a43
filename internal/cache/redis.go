package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/domain"
)

const redisKeyPrefix = "jikansync:"

// RedisStore implements domain.CacheStore on Redis; the store's own key
// expiry enforces TTLs.
type RedisStore struct {
	log zerolog.Logger
	cli *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, log zerolog.Logger, cfg *domain.Config) (*RedisStore, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "unable to connect to redis")
	}

	return &RedisStore{
		log: log.With().Str("module", "cache").Str("backend", "redis").Logger(),
		cli: cli,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.cli.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "redis get")
	}
	return out, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.cli.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.cli.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// DeletePrefix removes all keys under prefix with a cursor scan, so a
// large eviction does not block the server the way KEYS would.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.cli.Scan(ctx, 0, redisKeyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cli.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "redis del")
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "redis scan")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.cli.Close()
}
