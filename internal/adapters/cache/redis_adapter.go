package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zatekoja/srq20-api/internal/domain/providers"
	redisclient "github.com/zatekoja/srq20-api/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client *redisclient.Client
}

var _ providers.CacheProvider = (*RedisAdapter)(nil)

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) *RedisAdapter {
	return &RedisAdapter{
		client: client,
	}
}

// Increment bumps a counter and returns it with the time left before it
// resets. Any counter found without an expiry gets one, so a failed EXPIRE
// is retried on the next call.
func (a *RedisAdapter) Increment(ctx context.Context, key string, expirationSeconds int) (int64, time.Duration, error) {
	rdb := a.client.Client()
	expiration := time.Duration(expirationSeconds) * time.Second

	var incr *goredis.IntCmd
	var pttl *goredis.DurationCmd
	_, err := rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, apperrors.NewExternalError("failed to increment counter", err)
	}

	count, ttl := incr.Val(), pttl.Val()
	if ttl < 0 {
		// the counter is already incremented; finish even if the client went away
		if err := rdb.Expire(context.WithoutCancel(ctx), key, expiration).Err(); err != nil {
			return count, 0, apperrors.NewExternalError("failed to set counter expiry", err)
		}
		ttl = expiration
	}
	return count, ttl, nil
}
