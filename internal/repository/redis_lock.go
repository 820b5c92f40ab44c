package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// releaseScript deletes the lock only if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errLockHeld = errors.New("lock held")

// RedisLocker implements domain.KeyLocker with SET NX PX and a token-checked release
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder can
// block others; wait bounds how long WithLock retries acquisition.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

// WithLock runs fn while holding key
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("redis").Start(ctx, "redis.Lock",
		trace.WithAttributes(attribute.String("lock.key", key)),
	)
	defer span.End()

	token, err := newLockToken()
	if err != nil {
		return err
	}

	if err := l.acquire(ctx, key, token); err != nil {
		span.RecordError(err)
		return err
	}

	defer func() {
		// Release even if the request context is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			logrus.WithError(err).WithField("lock_key", key).Warn("failed to release lock")
		}
	}()

	// fn must finish before the key can expire under it
	fnCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(fnCtx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	var b backoff.BackOff = &backoff.StopBackOff{}
	if l.wait > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 20 * time.Millisecond
		exp.MaxInterval = 250 * time.Millisecond
		exp.MaxElapsedTime = l.wait
		b = exp
	}

	attempts := 0
	op := func() error {
		attempts++
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("redis setnx error: %w", err))
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, errLockHeld) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logrus.WithFields(logrus.Fields{"lock_key": key, "attempts": attempts}).Warn("lock not acquired")
		return domain.ErrLockNotAcquired
	}
	return err
}

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
