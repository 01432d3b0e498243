package handlers

import (
	"context"
	"errors"
	"time"

	"recruit-matcher/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /reconcile asks for confirmation first; the run starts from the callback.
func HandleReconcile(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(
			"♻️ Recompute and store every match above the threshold?",
			utils.ConfirmReconcileKeyboard(),
		)
	}
}

// /lastrun
func HandleLastRun(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		if ctx.Summaries == nil {
			return c.Send("ℹ️ Run history is kept in Redis, which is not configured")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		summary, err := ctx.Summaries.LastSummary(reqCtx)
		if err != nil {
			ctx.Logger.Error("failed to load last summary", zap.Error(err))
			return c.Reply("😔 Could not load the last run. Please try again later.")
		}

		return c.Send(utils.FormatSummary(summary), tele.ModeMarkdownV2)
	}
}

// startReconcile runs the batch in the background. The reconciler notifies
// reviewers itself; errors are reported to the requester here.
func startReconcile(ctx *Context, c tele.Context) {
	timeout := ctx.ReconcileTimeout
	if timeout <= 0 {
		timeout = time.Hour
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		summary, err := ctx.Reconciler.RunOnce(runCtx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
			ctx.Logger.Error("bot-triggered reconciliation failed", zap.Error(err))
			_ = c.Send("😔 Reconciliation failed. Check the logs.")
		case summary == nil && err == nil:
			_ = c.Send("⏳ Another reconciliation is already running")
		}
	}()
}
