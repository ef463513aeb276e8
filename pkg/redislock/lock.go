package redislock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still carries our
// token, so an expired lock reacquired by someone else is never released
// from under them.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker is a Redis-backed distributed lock for serializing tenant
// provisioning across processes. It implements tenant.Locker.
//
// Locks are held with a TTL so a crashed owner cannot block provisioning
// forever; the TTL must comfortably exceed the longest schema import.
type Locker struct {
	client *redis.Client
	cfg    Config
}

// New creates a locker on an established client.
func New(client *redis.Client, cfg Config) *Locker {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	return &Locker{client: client, cfg: cfg}
}

// Acquire takes the named lock, waiting up to AcquireTimeout when it is
// contended. The returned release function is safe to call exactly once
// and only removes the lock if this call still owns it.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.AcquireTimeout)
		defer cancel()
	}

	token := uuid.NewString()
	fullKey := "tenantdb:lock:" + key

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.cfg.LockTTL).Result()
		if err != nil {
			return nil, errors.Join(ErrLockNotAcquired, err)
		}
		if ok {
			return func() { l.release(fullKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.cfg.PollInterval):
		}
	}
}

// release runs on its own deadline since the caller's context is usually
// done by the time a deferred release fires.
func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
