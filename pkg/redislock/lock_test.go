package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/redislock"
)

func newTestLocker(t *testing.T, cfg redislock.Config) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redislock.New(client, cfg), mr
}

func TestLocker_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("holds the key with the default ttl", func(t *testing.T) {
		t.Parallel()

		locker, mr := newTestLocker(t, redislock.Config{})

		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)
		defer release()

		assert.True(t, mr.Exists("tenantdb:lock:provision"))
		assert.Equal(t, time.Minute, mr.TTL("tenantdb:lock:provision"),
			"a crashed owner must not hold the lock forever")
	})

	t.Run("times out on a contended lock", func(t *testing.T) {
		t.Parallel()

		locker, _ := newTestLocker(t, redislock.Config{
			AcquireTimeout: 50 * time.Millisecond,
			PollInterval:   5 * time.Millisecond,
		})

		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)
		defer release()

		_, err = locker.Acquire(context.Background(), "provision")
		assert.ErrorIs(t, err, redislock.ErrLockNotAcquired)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("acquires once the holder releases", func(t *testing.T) {
		t.Parallel()

		locker, _ := newTestLocker(t, redislock.Config{
			AcquireTimeout: 2 * time.Second,
			PollInterval:   5 * time.Millisecond,
		})

		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)

		acquired := make(chan error, 1)
		go func() {
			second, err := locker.Acquire(context.Background(), "provision")
			if err == nil {
				second()
			}
			acquired <- err
		}()

		time.Sleep(20 * time.Millisecond)
		release()

		select {
		case err := <-acquired:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("waiter never acquired the released lock")
		}
	})

	t.Run("treats distinct keys independently", func(t *testing.T) {
		t.Parallel()

		locker, _ := newTestLocker(t, redislock.Config{
			AcquireTimeout: 50 * time.Millisecond,
			PollInterval:   5 * time.Millisecond,
		})

		first, err := locker.Acquire(context.Background(), "tenant:provision:acme")
		require.NoError(t, err)
		defer first()

		second, err := locker.Acquire(context.Background(), "tenant:provision:globex")
		require.NoError(t, err)
		defer second()
	})

	t.Run("stops waiting when the context is canceled", func(t *testing.T) {
		t.Parallel()

		locker, _ := newTestLocker(t, redislock.Config{PollInterval: 5 * time.Millisecond})

		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = locker.Acquire(ctx, "provision")
		assert.ErrorIs(t, err, redislock.ErrLockNotAcquired)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocker_Release(t *testing.T) {
	t.Parallel()

	t.Run("removes the lock it owns", func(t *testing.T) {
		t.Parallel()

		locker, mr := newTestLocker(t, redislock.Config{})

		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)
		require.True(t, mr.Exists("tenantdb:lock:provision"))

		release()
		assert.False(t, mr.Exists("tenantdb:lock:provision"))
	})

	t.Run("leaves an expired and reacquired lock in place", func(t *testing.T) {
		t.Parallel()

		locker, mr := newTestLocker(t, redislock.Config{LockTTL: time.Minute})

		staleRelease, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)

		// The first owner's key expires, then someone else takes the lock.
		mr.FastForward(2 * time.Minute)
		release, err := locker.Acquire(context.Background(), "provision")
		require.NoError(t, err)

		current, err := mr.Get("tenantdb:lock:provision")
		require.NoError(t, err)

		staleRelease()

		after, err := mr.Get("tenantdb:lock:provision")
		require.NoError(t, err)
		assert.Equal(t, current, after, "a stale release must not remove the new owner's lock")

		release()
		assert.False(t, mr.Exists("tenantdb:lock:provision"))
	})
}
