package handlers

import (
	"context"
	"errors"
	"fmt"

	"recruit-matcher/internal/bot/utils"
	"recruit-matcher/internal/matching"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /matches [status] [min score] [limit=N] [candidate=ID] [opportunity=ID]
func HandleMatches(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		filter, err := parseMatchesArgs(c.Args())
		if err != nil {
			return c.Reply("❌ " + err.Error())
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		matches, err := ctx.Engine.ListPersistedMatches(reqCtx, filter)
		if err != nil {
			ctx.Logger.Error("failed to list matches", zap.Error(err))
			return c.Reply("😔 Could not load matches. Please try again later.")
		}

		if len(matches) == 0 {
			return c.Send("📭 No stored matches for this filter")
		}

		if err := c.Send(fmt.Sprintf("📋 %d match(es), best first:", len(matches))); err != nil {
			return err
		}

		for i := range matches {
			m := &matches[i]
			if err := c.Send(utils.FormatMatch(m), utils.MatchStatusKeyboard(m.ID, m.Status), tele.ModeMarkdownV2); err != nil {
				ctx.Logger.Error("failed to send match",
					zap.Int64("match_id", m.ID),
					zap.Error(err),
				)
			}
		}

		return nil
	}
}

// /setstatus <match id> <status> [notes]
func HandleSetStatus(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		id, status, notes, err := parseSetStatusArgs(c.Args())
		if errors.Is(err, errUsage) {
			return c.Reply("Usage: /setstatus <match id> <status> [notes]")
		}
		if err != nil {
			return c.Reply("❌ " + err.Error())
		}

		return c.Send(setStatus(ctx, c.Sender(), id, status, notes))
	}
}

// setStatus applies the change and returns the text to show the reviewer.
func setStatus(ctx *Context, reviewer *tele.User, id int64, status string, notes *string) string {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err := ctx.Engine.SetMatchStatus(reqCtx, id, status, notes)

	var verr *matching.ValidationError
	switch {
	case err == nil:
		var reviewerID int64
		if reviewer != nil {
			reviewerID = reviewer.ID
		}
		ctx.Logger.Info("reviewer changed match status",
			zap.Int64("reviewer_id", reviewerID),
			zap.Int64("match_id", id),
			zap.String("status", status),
		)
		return fmt.Sprintf("✅ Match #%d is now %s", id, status)
	case errors.As(err, &verr):
		return "❌ " + verr.Msg
	case errors.Is(err, matching.ErrMatchNotFound):
		return fmt.Sprintf("🤷 Match #%d not found", id)
	default:
		ctx.Logger.Error("failed to set match status", zap.Int64("match_id", id), zap.Error(err))
		return "😔 Could not update the match. Please try again later."
	}
}
