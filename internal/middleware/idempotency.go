package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const CorrelationIDHeader = "X-Correlation-ID"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyKey scopes a correlation id to the caller and the route it was sent to
func IdempotencyKey(userID, method, path, correlationID string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", userID, method, path, correlationID)
}

// IdempotencyMiddleware replays the stored response for a repeated X-Correlation-ID
// on POST/PUT/PATCH. Only 2xx responses are stored.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Only apply to mutating methods
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			// No correlation ID = no idempotency check
			return c.Next()
		}

		key := IdempotencyKey(GetUserID(c), c.Method(), c.Path(), correlationID)
		ctx := c.UserContext()

		cached, err := redisClient.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			var resp cachedResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.Set("X-Idempotent-Replay", "true")
				if resp.ContentType != "" {
					c.Set(fiber.HeaderContentType, resp.ContentType)
				}
				return c.Status(resp.Status).Send(resp.Body)
			}
		} else if err != nil && err != redis.Nil {
			logrus.WithError(err).WithField("key", key).Warn("idempotency lookup failed")
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			return nil
		}

		payload, err := json.Marshal(cachedResponse{
			Status:      statusCode,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		})
		if err != nil {
			return nil
		}

		setCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Set(setCtx, key, payload, ttl).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to store idempotent response")
		}
		return nil
	}
}
