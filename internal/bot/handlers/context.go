package handlers

import (
	"context"
	"time"

	"recruit-matcher/internal/config"
	"recruit-matcher/internal/models"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Engine is the part of matching.Engine the bot drives.
type Engine interface {
	FindMatchesForCandidate(ctx context.Context, candidateID string) ([]models.Suggestion, error)
	FindMatchesForOpportunity(ctx context.Context, opportunityID string) ([]models.Suggestion, error)
	ListPersistedMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, error)
	SetMatchStatus(ctx context.Context, matchID int64, status string, notes *string) error
}

// Reconciler runs a batch and reports the summary; the scheduler satisfies it.
type Reconciler interface {
	RunOnce(ctx context.Context) (*models.ReconcileSummary, error)
}

type SummaryStore interface {
	LastSummary(ctx context.Context) (*models.ReconcileSummary, error)
}

// Context contains deps for all handlers
type Context struct {
	Engine     Engine
	Reconciler Reconciler
	Summaries  SummaryStore // nil without Redis
	Config     *config.Config
	Logger     *zap.Logger

	// ReconcileTimeout bounds a bot-triggered run.
	ReconcileTimeout time.Duration
}
