package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"minerva/pkg/errors"
)

// Locker provides best-effort distributed locks for deduplicating
// scheduled work across instances.
type Locker struct {
	client *redis.Client
}

// NewLocker creates a lock helper on the shared client.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Acquire takes the named lock for ttl. Returns false when another
// holder already owns it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, "lock:"+name, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "acquire lock %s", name)
	}
	return ok, nil
}

// Release drops the named lock. Releasing a lock that expired or was
// never held is not an error.
func (l *Locker) Release(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, "lock:"+name).Err(); err != nil {
		return errors.Wrapf(err, "release lock %s", name)
	}
	return nil
}
