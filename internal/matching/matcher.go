package matching

import (
	"context"
	"fmt"
	"strings"

	"recruit-matcher/internal/models"

	"go.uber.org/zap"
)

// Matcher scores a single pair and persists it when it clears the threshold.
type Matcher struct {
	scorer *Scorer
	repo   MatchRepository
	logger *zap.Logger
}

func NewMatcher(scorer *Scorer, repo MatchRepository, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		scorer: scorer,
		repo:   repo,
		logger: logger,
	}
}

// MatchOne returns the stored match, or nil without writing anything when
// the score is below threshold.
func (m *Matcher) MatchOne(
	ctx context.Context,
	c *models.Candidate,
	o *models.Opportunity,
	threshold int,
	dir Direction,
) (*models.Match, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return nil, &ValidationError{Msg: "candidate record has no id"}
	}
	if o == nil || strings.TrimSpace(o.ID) == "" {
		return nil, &ValidationError{Msg: fmt.Sprintf("opportunity record has no id (candidate %s)", c.ID)}
	}

	score, reasons := m.scorer.Score(c, o, dir)
	if score < threshold {
		m.logger.Debug("pair below threshold",
			zap.String("candidate_id", c.ID),
			zap.String("opportunity_id", o.ID),
			zap.Int("score", score),
			zap.Int("threshold", threshold),
		)
		return nil, nil
	}

	match, err := m.repo.UpsertMatch(ctx, models.MatchUpsert{
		CandidateID:   c.ID,
		OpportunityID: o.ID,
		Score:         score,
		Reasons:       reasons,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}

	return match, nil
}
