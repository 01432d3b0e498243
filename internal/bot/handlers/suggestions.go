package handlers

import (
	"context"
	"errors"

	"recruit-matcher/internal/bot/utils"
	"recruit-matcher/internal/matching"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /candidate <id>
func HandleCandidate(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		id, err := parseID(c.Args())
		if err != nil {
			return c.Reply("Usage: /candidate <candidate id>")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		suggestions, err := ctx.Engine.FindMatchesForCandidate(reqCtx, id)
		if errors.Is(err, matching.ErrCandidateNotFound) {
			return c.Send(utils.FormatNotFound("candidate", id), tele.ModeMarkdownV2)
		}
		if err != nil {
			ctx.Logger.Error("failed to find matches for candidate",
				zap.String("candidate_id", id),
				zap.Error(err),
			)
			return c.Reply("😔 Could not compute suggestions. Please try again later.")
		}

		return c.Send(
			utils.FormatSuggestionList("Opportunities for candidate "+id, suggestions, suggestionsShown),
			tele.ModeMarkdownV2,
		)
	}
}

// /opportunity <id>
func HandleOpportunity(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		id, err := parseID(c.Args())
		if err != nil {
			return c.Reply("Usage: /opportunity <opportunity id>")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		suggestions, err := ctx.Engine.FindMatchesForOpportunity(reqCtx, id)
		if errors.Is(err, matching.ErrOpportunityNotFound) {
			return c.Send(utils.FormatNotFound("opportunity", id), tele.ModeMarkdownV2)
		}
		if err != nil {
			ctx.Logger.Error("failed to find matches for opportunity",
				zap.String("opportunity_id", id),
				zap.Error(err),
			)
			return c.Reply("😔 Could not compute suggestions. Please try again later.")
		}

		return c.Send(
			utils.FormatSuggestionList("Candidates for opportunity "+id, suggestions, suggestionsShown),
			tele.ModeMarkdownV2,
		)
	}
}
