// Package redis implements the single-use link-intent consumption
// marker on Redis. SET NX with the intent's remaining TTL makes the
// first caller the only winner; the key expires together with the
// intent itself.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.IntentConsumer = (*IntentRepository)(nil)

type IntentRepository struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewIntentRepository(client *redis.Client) *IntentRepository {
	return &IntentRepository{client: client}
}

// Consume marks the intent JTI as spent. Returns true only for the
// first caller within the TTL window.
func (r *IntentRepository) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, consumedKey(jti), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark intent consumed: %w", err)
	}
	return ok, nil
}

func consumedKey(jti string) string {
	return "link_intent:consumed:" + jti
}
