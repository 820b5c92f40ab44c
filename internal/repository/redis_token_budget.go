package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tokenBudgetKeyPrefix = "ai:tokens:"

// counters outlive their day so late requests near midnight still see them
const tokenBudgetKeyTTL = 48 * time.Hour

// RedisTokenBudget implements domain.TokenBudget with one INCRBY counter per user per UTC day
type RedisTokenBudget struct {
	client *redis.Client
	limit  int64
	now    func() time.Time
}

func NewRedisTokenBudget(client *redis.Client, dailyLimit int64) *RedisTokenBudget {
	return &RedisTokenBudget{client: client, limit: dailyLimit, now: time.Now}
}

func (b *RedisTokenBudget) key(userID string) string {
	return tokenBudgetKeyPrefix + userID + ":" + b.now().UTC().Format("2006-01-02")
}

// Reserve adds tokens to today's counter. If the new total exceeds the limit
// the increment is rolled back and a *domain.TokenBudgetError is returned.
func (b *RedisTokenBudget) Reserve(ctx context.Context, userID string, tokens int64) (int64, error) {
	key := b.key(userID)
	ctx, span := otel.Tracer("redis").Start(ctx, "redis.TokenBudget.Reserve",
		trace.WithAttributes(attribute.String("budget.key", key), attribute.Int64("budget.tokens", tokens)),
	)
	defer span.End()

	pipe := b.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, tokens)
	pipe.Expire(ctx, key, tokenBudgetKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("redis incrby error: %w", err)
	}

	total := incr.Val()
	if total > b.limit {
		used, err := b.client.DecrBy(ctx, key, tokens).Result()
		if err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("redis decrby error: %w", err)
		}
		span.SetAttributes(attribute.Bool("budget.exceeded", true))
		return used, &domain.TokenBudgetError{Used: used, Limit: b.limit}
	}

	return total, nil
}

// Usage returns tokens reserved today
func (b *RedisTokenBudget) Usage(ctx context.Context, userID string) (int64, error) {
	used, err := b.client.Get(ctx, b.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get error: %w", err)
	}
	return used, nil
}

// Limit returns the configured daily limit
func (b *RedisTokenBudget) Limit() int64 {
	return b.limit
}
