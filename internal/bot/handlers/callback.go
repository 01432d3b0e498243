package handlers

import (
	"strconv"

	"recruit-matcher/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// HandleCallback processes all callback queries from inline buttons
func HandleCallback(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			ctx.Logger.Warn("callback is nil")
			return nil
		}

		action, args := parseCallback(cb.Data)

		ctx.Logger.Debug("routing callback",
			zap.String("action", action),
			zap.Strings("args", args),
		)

		switch action {
		case utils.ActionStatus:
			return handleStatusCallback(ctx, c, args)
		case utils.ActionReconcileYes:
			return handleReconcileYes(ctx, c)
		case utils.ActionReconcileNo:
			return handleReconcileNo(ctx, c)
		default:
			ctx.Logger.Warn("unknown callback action",
				zap.String("action", action),
				zap.String("data", cb.Data),
			)
			return c.Respond(&tele.CallbackResponse{Text: "❓ Unknown action"})
		}
	}
}

func handleStatusCallback(ctx *Context, c tele.Context, args []string) error {
	if len(args) != 2 {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Bad button"})
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Bad button"})
	}

	text := setStatus(ctx, c.Sender(), id, args[1], nil)

	if err := c.Respond(&tele.CallbackResponse{Text: text}); err != nil {
		ctx.Logger.Warn("failed to answer callback", zap.Error(err))
	}
	return c.Send(text)
}

func handleReconcileYes(ctx *Context, c tele.Context) error {
	if err := c.Edit("♻️ Reconciliation started. The summary will follow."); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
	}

	startReconcile(ctx, c)

	return c.Respond(&tele.CallbackResponse{Text: "Started"})
}

func handleReconcileNo(ctx *Context, c tele.Context) error {
	if err := c.Delete(); err != nil {
		ctx.Logger.Warn("failed to delete message", zap.Error(err))
	}
	return c.Respond(&tele.CallbackResponse{Text: "Cancelled"})
}
