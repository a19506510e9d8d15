package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "docshare:pwfail:"

// Redis shares attempt counters between instances. The counter expires one
// window after the first attempt. INCR is atomic on the server, which makes
// the reservation safe across instances as well.
type Redis struct {
	client    *redis.Client
	threshold int
	window    time.Duration
}

func NewRedis(client *redis.Client, threshold int, window time.Duration) *Redis {
	return &Redis{client: client, threshold: threshold, window: window}
}

func (r *Redis) Attempt(ctx context.Context, key string) (bool, error) {
	fullKey := redisKeyPrefix + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, r.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(r.threshold), nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
