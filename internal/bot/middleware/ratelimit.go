package middleware

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const MaxRequestsPerMinute = 30

// RateCounter counts requests per user in a fixed one-minute window.
type RateCounter interface {
	IncrementReviewerRateLimit(ctx context.Context, userID int64) (int64, error)
}

// RateLimit rejects users above max requests per minute. Counter errors let
// the request through.
func RateLimit(counter RateCounter, max int64, logger *zap.Logger) tele.MiddlewareFunc {
	if max <= 0 {
		max = MaxRequestsPerMinute
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			count, err := counter.IncrementReviewerRateLimit(ctx, user.ID)
			if err != nil {
				logger.Error("failed to check rate limit",
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
				return next(c)
			}

			if count > max {
				logger.Warn("rate limit exceeded",
					zap.Int64("user_id", user.ID),
					zap.Int64("count", count),
				)

				return c.Reply(fmt.Sprintf(
					"⚠️ Too many requests. Please wait a minute.\nLimit: %d requests per minute.",
					max,
				))
			}

			return next(c)
		}
	}
}
