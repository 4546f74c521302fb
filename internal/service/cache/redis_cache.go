package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBytesCache implements BytesCache on a shared Redis client, so
// cached API responses survive restarts and are shared across replicas.
type RedisBytesCache struct {
	cli    *redis.Client
	prefix string
}

func NewRedisBytesCache(cli *redis.Client) *RedisBytesCache {
	return &RedisBytesCache{cli: cli, prefix: "advisor:api:"}
}

func (r *RedisBytesCache) GetBytes(key string) ([]byte, bool, error) {
	b, err := r.cli.Get(context.Background(), r.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisBytesCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return r.cli.Set(context.Background(), r.prefix+key, value, ttl).Err()
}

var _ BytesCache = (*RedisBytesCache)(nil)
