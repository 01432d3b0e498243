package handlers

import (
	"recruit-matcher/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /start
func HandleStart(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()

		ctx.Logger.Info("reviewer started bot",
			zap.Int64("user_id", sender.ID),
			zap.String("username", sender.Username),
		)

		return c.Send(
			utils.FormatWelcomeMessage(sender.FirstName),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// HandleText answers anything that is not a command.
func HandleText(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send("🤔 I only understand commands. Try /help", utils.MainMenuKeyboard())
	}
}
