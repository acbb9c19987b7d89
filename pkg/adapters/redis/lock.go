package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/arbor/pkg/ports"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")

	// ErrLockLost is returned by an UnlockFunc when the lock expired and was
	// taken by someone else before it was released.
	ErrLockLost = errors.New("distributed lock expired before release")
)

const defaultRetryInterval = 50 * time.Millisecond

// Deletes the key only if it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client backend.UniversalClient
	prefix string
	retry  time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets how often a blocked Lock call polls Redis.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		l.retry = d
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// Each acquisition stores a fresh random token, and the returned UnlockFunc
// only deletes the key while it still holds that token.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	acquired, err := l.tryLock(ctx, lockKey, token, ttl)
	if err != nil {
		return nil, err
	}

	if !acquired {
		ticker := time.NewTicker(l.retry)
		defer ticker.Stop()

		for !acquired {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w %q: %w", ErrLockAcquire, key, ctx.Err())
			case <-ticker.C:
				if acquired, err = l.tryLock(ctx, lockKey, token, ttl); err != nil {
					return nil, err
				}
			}
		}
	}

	return func(ctx context.Context) error {
		n, err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			return fmt.Errorf("redis error releasing lock: %w", err)
		}
		if n == 0 {
			return ErrLockLost
		}
		return nil
	}, nil
}

func (l *Locker) tryLock(ctx context.Context, lockKey, token string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	return ok, nil
}
