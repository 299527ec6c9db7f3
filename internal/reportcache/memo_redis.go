package reportcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "onboarding:report:"

// Redis shares memoised reports across instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis returns a Redis memo; namespace separates report kinds.
func NewRedis(client *redis.Client, namespace string, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: reportKeyPrefix + namespace + ":"}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}
