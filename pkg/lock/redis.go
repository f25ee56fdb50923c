package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis is a distributed locker backed by redislock. Use it when more than
// one service instance mutates the same database.
type Redis struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewRedis creates a Redis-backed locker. Leases expire after ttl if the
// holder dies; attempts retry linearly every backoff up to wait.
func NewRedis(rdb *redis.Client, ttl, wait, backoff time.Duration) *Redis {
	attempts := int(wait / backoff)
	if attempts < 1 {
		attempts = 1
	}
	return &Redis{
		client: redislock.New(rdb),
		prefix: "lock:stock:",
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(backoff), attempts),
	}
}

// Obtain acquires the distributed lock for key
func (r *Redis) Obtain(ctx context.Context, key string) (Lease, error) {
	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, &redislock.Options{
		RetryStrategy: r.retry,
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain redis lock: %w", err)
	}
	return redisLease{lock: l}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (rl redisLease) Release(ctx context.Context) error {
	err := rl.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// expired: another holder may already own the key
		return fmt.Errorf("lease expired before release: %w", err)
	}
	return err
}
