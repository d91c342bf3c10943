// Package runlock keeps two pipeline runs from writing the same outputs at
// once. The lock lives in Redis under SET NX with a TTL, so a crashed run
// frees it when the TTL lapses.
package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"salesetl/internal/config"
	apperrors "salesetl/internal/errors"
)

// Locker guards a pipeline run. Refresh is called between stages so a run
// longer than the lock TTL keeps it.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// RedisLock is a Locker owned by a random token. Release and Extend only
// act while the token still matches.
type RedisLock struct {
	client redis.UniversalClient
	key    string
	owner  string
	ttl    time.Duration
}

// New creates a lock on key. Nothing is sent to Redis until Acquire.
func New(client redis.UniversalClient, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    "lock:" + key,
		owner:  uuid.NewString(),
		ttl:    ttl,
	}
}

// Connect opens a client for cfg and checks it with PING
func Connect(ctx context.Context, cfg config.LockConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperrors.NewLockError("failed to reach redis", err).WithContext("addr", cfg.RedisAddr)
	}
	return client, nil
}

// Key returns the Redis key holding the lock
func (l *RedisLock) Key() string { return l.key }

// Owner returns the token identifying this holder
func (l *RedisLock) Owner() string { return l.owner }

// Acquire takes the lock if it is free. It reports false, without error,
// when another holder has it.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return false, apperrors.NewLockError(fmt.Sprintf("failed to acquire lock %s", l.key), err)
	}
	return ok, nil
}

// Release drops the lock if this holder still owns it
func (l *RedisLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil {
		return apperrors.NewLockError(fmt.Sprintf("failed to release lock %s", l.key), err)
	}
	return nil
}

// Refresh extends the lock by its original TTL
func (l *RedisLock) Refresh(ctx context.Context) error {
	return l.Extend(ctx, l.ttl)
}

// Extend resets the TTL. It fails when the lock has expired or changed hands.
func (l *RedisLock) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return apperrors.NewLockError(fmt.Sprintf("failed to extend lock %s", l.key), err)
	}
	if n == 0 {
		return apperrors.NewLockError(fmt.Sprintf("lock %s is no longer held", l.key), apperrors.ErrRunLocked)
	}
	return nil
}
