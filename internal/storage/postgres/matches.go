package postgres

import (
	"context"
	"fmt"

	"recruit-matcher/internal/models"

	"go.uber.org/zap"
)

var matchColumns = []string{
	"id", "candidate_id", "opportunity_id", "score", "reasons",
	"status", "notes", "created_at", "updated_at",
}

// The second status placeholder keeps the stored status on conflict unless
// the caller passes one explicitly.
const upsertMatchQuery = `
	INSERT INTO matches (
		candidate_id, opportunity_id, score, reasons, status, created_at, updated_at
	)
	VALUES (?, ?, ?, ?, COALESCE(?, 'pending'), ?, ?)
	ON CONFLICT (candidate_id, opportunity_id) DO UPDATE SET
		score = EXCLUDED.score,
		reasons = EXCLUDED.reasons,
		status = COALESCE(?, matches.status),
		updated_at = EXCLUDED.updated_at
	RETURNING id, candidate_id, opportunity_id, score, reasons, status, notes, created_at, updated_at
`

func (s *Store) UpsertMatch(ctx context.Context, in models.MatchUpsert) (*models.Match, error) {
	var status interface{}
	if in.Status != nil {
		status = string(*in.Status)
	}

	now := s.now()
	var match models.Match

	err := s.sess.
		SelectBySql(upsertMatchQuery,
			in.CandidateID,
			in.OpportunityID,
			in.Score,
			models.StringList(in.Reasons),
			status,
			now,
			now,
			status,
		).
		LoadOneContext(ctx, &match)

	if err != nil {
		s.logger.Error("failed to upsert match",
			zap.String("candidate_id", in.CandidateID),
			zap.String("opportunity_id", in.OpportunityID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("upsert match: %w", err)
	}

	return &match, nil
}

func (s *Store) ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, error) {
	stmt := s.sess.
		Select(matchColumns...).
		From("matches")

	if filter.CandidateID != "" {
		stmt.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.OpportunityID != "" {
		stmt.Where("opportunity_id = ?", filter.OpportunityID)
	}
	if filter.Status != "" {
		stmt.Where("status = ?", string(filter.Status))
	}
	if filter.MinScore > 0 {
		stmt.Where("score >= ?", filter.MinScore)
	}

	stmt.OrderDesc("score").OrderDesc("updated_at").OrderAsc("id")

	if filter.Limit > 0 {
		stmt.Limit(uint64(filter.Limit))
	}

	matches := []models.Match{}
	if _, err := stmt.LoadContext(ctx, &matches); err != nil {
		s.logger.Error("failed to list matches",
			zap.String("candidate_id", filter.CandidateID),
			zap.String("opportunity_id", filter.OpportunityID),
			zap.String("status", string(filter.Status)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return matches, nil
}

func (s *Store) UpdateStatus(ctx context.Context, matchID int64, status models.MatchStatus, notes *string) (bool, error) {
	stmt := s.sess.
		Update("matches").
		Set("status", string(status)).
		Set("updated_at", s.now()).
		Where("id = ?", matchID)

	if notes != nil {
		stmt.Set("notes", *notes)
	}

	result, err := stmt.ExecContext(ctx)
	if err != nil {
		s.logger.Error("failed to update match status",
			zap.Int64("match_id", matchID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return false, fmt.Errorf("update match status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	return rowsAffected > 0, nil
}
