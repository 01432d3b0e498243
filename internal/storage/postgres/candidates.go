package postgres

import (
	"context"
	"fmt"
	"time"

	"recruit-matcher/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var candidateColumns = []string{
	"id", "full_name", "preferred_locations", "preferred_level",
	"subject_specialty", "years_experience", "status", "created_at",
}

type candidateRow struct {
	ID                 string    `db:"id"`
	FullName           *string   `db:"full_name"`
	PreferredLocations *string   `db:"preferred_locations"`
	PreferredLevel     *string   `db:"preferred_level"`
	SubjectSpecialty   *string   `db:"subject_specialty"`
	YearsExperience    *string   `db:"years_experience"`
	Status             string    `db:"status"`
	CreatedAt          time.Time `db:"created_at"`
}

func (r candidateRow) toModel() models.Candidate {
	c := models.Candidate{
		ID:               r.ID,
		FullName:         deref(r.FullName),
		PreferredLevel:   deref(r.PreferredLevel),
		SubjectSpecialty: deref(r.SubjectSpecialty),
		YearsExperience:  deref(r.YearsExperience),
		Status:           models.CandidateStatus(r.Status),
		CreatedAt:        r.CreatedAt,
	}
	c.PreferredLocations = models.ParseListField("preferred_locations", deref(r.PreferredLocations), &c.Malformed)
	return c
}

func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	var rows []candidateRow

	_, err := s.sess.
		Select(candidateColumns...).
		From("candidates").
		OrderAsc("id").
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to list candidates", zap.Error(err))
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return s.candidates(rows), nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var row candidateRow

	err := s.sess.
		Select(candidateColumns...).
		From("candidates").
		Where("id = ?", id).
		LoadOneContext(ctx, &row)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get candidate",
			zap.String("candidate_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	c := row.toModel()
	return &c, nil
}

// GetCandidatesByIDs loads several candidates in one round trip. Unknown ids
// are absent from the result.
func (s *Store) GetCandidatesByIDs(ctx context.Context, ids []string) ([]models.Candidate, error) {
	if len(ids) == 0 {
		return []models.Candidate{}, nil
	}

	var rows []candidateRow

	_, err := s.sess.
		Select(candidateColumns...).
		From("candidates").
		Where("id = ANY(?)", pq.Array(ids)).
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to get candidates by IDs",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get candidates by IDs: %w", err)
	}

	return s.candidates(rows), nil
}

func (s *Store) candidates(rows []candidateRow) []models.Candidate {
	out := make([]models.Candidate, 0, len(rows))
	for _, row := range rows {
		c := row.toModel()
		if len(c.Malformed) > 0 {
			s.logger.Warn("candidate has malformed fields",
				zap.String("candidate_id", c.ID),
				zap.Strings("fields", c.Malformed),
			)
		}
		out = append(out, c)
	}
	return out
}
