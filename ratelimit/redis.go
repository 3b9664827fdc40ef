package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps request history in a sorted set per identity, scored by
// timestamp. It is the drop-in Store for multi-instance deployments where the
// window has to be shared across processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore. The prefix namespaces the limiter keys
// so independent buckets (comments, likes, posts) do not share history.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Append(ctx context.Context, identity string, now time.Time, window time.Duration) (int, error) {
	key := s.prefix + identity
	nowNs := now.UnixNano()
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(nowNs),
		Member: strconv.FormatInt(nowNs, 10),
	})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}
