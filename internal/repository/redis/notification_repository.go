package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:processed:"

type NotificationRepository struct {
	client    redis.Cmdable
	retention time.Duration
}

func NewNotificationRepository(client redis.Cmdable, retention time.Duration) *NotificationRepository {
	return &NotificationRepository{client: client, retention: retention}
}

// MarkProcessed relies on SET NX: only the first caller for a key gets true.
func (r *NotificationRepository) MarkProcessed(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), r.retention).Result()
}

func (r *NotificationRepository) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

// NewConnection opens a client and pings it so startup fails fast.
func NewConnection(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
