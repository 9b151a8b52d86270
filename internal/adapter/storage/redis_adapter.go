package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix  = "session:"
	idempotencyKeyTTL = 24 * time.Hour
	catalogChannel    = "catalog:changed"
)

type RedisAdapter struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisAdapter(client *redis.Client, logger *zap.Logger) *RedisAdapter {
	return &RedisAdapter{client: client, logger: logger}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) SaveSession(ctx context.Context, sessionID, uid string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+sessionID, uid, ttl).Err()
}

func (r *RedisAdapter) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

func (r *RedisAdapter) PublishCatalogChange(ctx context.Context) error {
	return r.client.Publish(ctx, catalogChannel, time.Now().UnixMilli()).Err()
}

// SubscribeCatalogChanges coalesces bursts of messages: a change that arrives
// while one is still pending is dropped.
func (r *RedisAdapter) SubscribeCatalogChanges(ctx context.Context) <-chan struct{} {
	changes := make(chan struct{}, 1)
	pubsub := r.client.Subscribe(ctx, catalogChannel)

	go func() {
		defer close(changes)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				select {
				case changes <- struct{}{}:
				default:
					r.logger.Debug("catalog change already pending")
				}
			}
		}
	}()

	return changes
}
