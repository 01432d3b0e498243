package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Recovery turns a handler panic into a logged error and an apology to the user.
func Recovery(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					fields := []zap.Field{zap.Any("panic", r), zap.Stack("stack")}
					if u := c.Sender(); u != nil {
						fields = append(fields, zap.Int64("user_id", u.ID))
					}
					logger.Error("panic recovered", fields...)

					err = c.Send("😔 Something went wrong. Please try again later.")
				}
			}()

			return next(c)
		}
	}
}
