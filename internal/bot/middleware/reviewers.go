package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const deniedMessage = "⛔ This bot is available to reviewers only."

// Reviewers drops updates from users the allow func rejects.
func Reviewers(allow func(userID int64) bool, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user != nil && allow(user.ID) {
				return next(c)
			}

			var userID int64
			if user != nil {
				userID = user.ID
			}
			logger.Warn("rejected update from non-reviewer", zap.Int64("user_id", userID))

			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: deniedMessage})
			}
			return c.Send(deniedMessage)
		}
	}
}
