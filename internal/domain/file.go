package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FileRepository stores uploaded binaries
type FileRepository interface {
	// Upload saves data under key and returns its access URL
	Upload(ctx context.Context, data []byte, key string, contentType string) (string, error)
}

var ErrCacheMiss = errors.New("cache miss")

// CacheRepository is a JSON value cache. Get returns ErrCacheMiss when the key is absent.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// PRListKeyPrefix covers every cached PR listing of a user
func PRListKeyPrefix(userID string) string {
	return "pr:list:" + userID + ":"
}

// PRListKey is the cache key for a user's PR listing at a given limit
func PRListKey(userID string, limit int) string {
	return fmt.Sprintf("%s%d", PRListKeyPrefix(userID), limit)
}

// TDEEKey is the cache key for a user's computed calorie target
func TDEEKey(userID string) string {
	return "tdee:" + userID
}

// KeyLocker serializes work on a key across processes
type KeyLocker interface {
	// WithLock runs fn while holding key. It returns ErrLockNotAcquired if the
	// lock cannot be taken before ctx is done or the wait budget runs out.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// TokenBudget meters AI token usage per user per day
type TokenBudget interface {
	// Reserve adds tokens to today's counter, returning *TokenBudgetError and
	// leaving the counter unchanged if the limit would be exceeded
	Reserve(ctx context.Context, userID string, tokens int64) (int64, error)
	Usage(ctx context.Context, userID string) (int64, error)
}
