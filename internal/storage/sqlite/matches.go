package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"recruit-matcher/internal/models"

	"go.uber.org/zap"
)

const matchColumns = `id, candidate_id, opportunity_id, score, reasons, status, notes, created_at, updated_at`

func scanMatch(r rowScanner) (models.Match, error) {
	var (
		m                models.Match
		status           string
		notes            sql.NullString
		created, updated int64
	)
	err := r.Scan(&m.ID, &m.CandidateID, &m.OpportunityID, &m.Score, &m.Reasons,
		&status, &notes, &created, &updated)
	if err != nil {
		return m, err
	}
	m.Status = models.MatchStatus(status)
	if notes.Valid {
		n := notes.String
		m.Notes = &n
	}
	m.CreatedAt = fromUnixNano(created)
	m.UpdatedAt = fromUnixNano(updated)
	return m, nil
}

func (s *Store) UpsertMatch(ctx context.Context, in models.MatchUpsert) (*models.Match, error) {
	var status any
	if in.Status != nil {
		status = string(*in.Status)
	}

	reasons, err := models.StringList(in.Reasons).Value()
	if err != nil {
		return nil, fmt.Errorf("encode reasons: %w", err)
	}

	now := unixNano(s.now())

	row := s.db.QueryRowContext(ctx, `
INSERT INTO matches (candidate_id, opportunity_id, score, reasons, status, created_at, updated_at)
VALUES (?, ?, ?, ?, COALESCE(?, 'pending'), ?, ?)
ON CONFLICT (candidate_id, opportunity_id) DO UPDATE SET
  score = excluded.score,
  reasons = excluded.reasons,
  status = COALESCE(?, matches.status),
  updated_at = excluded.updated_at
RETURNING `+matchColumns+`;`,
		in.CandidateID, in.OpportunityID, in.Score, reasons, status, now, now, status,
	)

	m, err := scanMatch(row)
	if err != nil {
		s.logger.Error("failed to upsert match",
			zap.String("candidate_id", in.CandidateID),
			zap.String("opportunity_id", in.OpportunityID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("upsert match: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, error) {
	var (
		where []string
		args  []any
	)
	if filter.CandidateID != "" {
		where = append(where, "candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if filter.OpportunityID != "" {
		where = append(where, "opportunity_id = ?")
		args = append(args, filter.OpportunityID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, filter.MinScore)
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY score DESC, updated_at DESC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list matches", zap.Error(err))
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, matchID int64, status models.MatchStatus, notes *string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	now := unixNano(s.now())

	if notes != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE matches SET status = ?, notes = ?, updated_at = ? WHERE id = ?;`,
			string(status), *notes, now, matchID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE matches SET status = ?, updated_at = ? WHERE id = ?;`,
			string(status), now, matchID)
	}
	if err != nil {
		s.logger.Error("failed to update match status",
			zap.Int64("match_id", matchID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return false, fmt.Errorf("update match status: %w", err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}
