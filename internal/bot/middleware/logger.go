package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger logs every update with the sender and how long the handler took.
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()

			err := next(c)

			fields := append(describe(c), zap.Duration("duration", time.Since(start)))
			if err != nil {
				logger.Error("handler error", append(fields, zap.Error(err))...)
			} else {
				logger.Info("update handled", fields...)
			}

			return err
		}
	}
}

func describe(c tele.Context) []zap.Field {
	var (
		userID   int64
		username string
		kind     = "other"
		text     string
	)

	if u := c.Sender(); u != nil {
		userID = u.ID
		username = u.Username
	}

	if cb := c.Callback(); cb != nil {
		kind = "callback"
		text = cb.Data
	} else if m := c.Message(); m != nil {
		kind = "message"
		text = m.Text
	}

	return []zap.Field{
		zap.Int64("user_id", userID),
		zap.String("username", username),
		zap.String("type", kind),
		zap.String("text", text),
	}
}
