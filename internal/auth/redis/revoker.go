package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "revoked_token:"

// Revoker stores revoked tokens in Redis with a TTL matching the
// token's remaining lifetime, so entries clean themselves up.
type Revoker struct {
	client *redis.Client
}

func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

func (r *Revoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+token, "1", ttl).Err()
}

func (r *Revoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := r.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
