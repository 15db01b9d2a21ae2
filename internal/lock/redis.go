package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "spotify-broker:refresh-lock:"

// releaseScript deletes the lease only if this holder still owns it, so a
// lease that expired and was re-acquired elsewhere is never released by
// the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Redis is a lease-based KeyedLock for multi-instance deployments. The TTL
// bounds how long a crashed holder can block an owner's refreshes.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

// NewRedis builds a keyed lock over the given client. A non-positive ttl
// falls back to 15 seconds.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Redis{
		client:    client,
		ttl:       ttl,
		retryWait: 50 * time.Millisecond,
	}
}

// Acquire implements KeyedLock by polling SET NX with a per-acquire owner
// token until the lease is won or ctx is done.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	leaseKey := redisKeyPrefix + key
	owner := uuid.New().String()

	for {
		ok, err := r.client.SetNX(ctx, leaseKey, owner, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release must work even when the caller's context is done.
				relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_, _ = releaseScript.Run(relCtx, r.client, []string{leaseKey}, owner).Result()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryWait):
		}
	}
}
