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

var opportunityColumns = []string{
	"id", "kind", "title", "location", "city", "levels_offered",
	"subjects_needed", "functions", "experience_required", "is_active", "created_at",
}

type opportunityRow struct {
	ID                 string         `db:"id"`
	Kind               string         `db:"kind"`
	Title              *string        `db:"title"`
	Location           *string        `db:"location"`
	City               *string        `db:"city"`
	LevelsOffered      pq.StringArray `db:"levels_offered"`
	SubjectsNeeded     *string        `db:"subjects_needed"`
	Functions          *string        `db:"functions"`
	ExperienceRequired *string        `db:"experience_required"`
	IsActive           bool           `db:"is_active"`
	CreatedAt          time.Time      `db:"created_at"`
}

func (r opportunityRow) toModel() models.Opportunity {
	o := models.Opportunity{
		ID:                 r.ID,
		Kind:               models.OpportunityKind(r.Kind),
		Title:              deref(r.Title),
		Location:           deref(r.Location),
		City:               deref(r.City),
		LevelsOffered:      models.NewStringSet(r.LevelsOffered...),
		ExperienceRequired: deref(r.ExperienceRequired),
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
	}
	o.SubjectsNeeded = models.ParseListField("subjects_needed", deref(r.SubjectsNeeded), &o.Malformed)
	o.Functions = models.ParseListField("functions", deref(r.Functions), &o.Malformed)
	return o
}

func (s *Store) ListOpportunities(ctx context.Context, activeOnly bool) ([]models.Opportunity, error) {
	var rows []opportunityRow

	stmt := s.sess.
		Select(opportunityColumns...).
		From("opportunities").
		OrderAsc("id")

	if activeOnly {
		stmt.Where("is_active = ?", true)
	}

	if _, err := stmt.LoadContext(ctx, &rows); err != nil {
		s.logger.Error("failed to list opportunities",
			zap.Bool("active_only", activeOnly),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list opportunities: %w", err)
	}

	return s.opportunities(rows), nil
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	var row opportunityRow

	err := s.sess.
		Select(opportunityColumns...).
		From("opportunities").
		Where("id = ?", id).
		LoadOneContext(ctx, &row)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get opportunity",
			zap.String("opportunity_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get opportunity: %w", err)
	}

	o := row.toModel()
	return &o, nil
}

func (s *Store) GetOpportunitiesByIDs(ctx context.Context, ids []string) ([]models.Opportunity, error) {
	if len(ids) == 0 {
		return []models.Opportunity{}, nil
	}

	var rows []opportunityRow

	_, err := s.sess.
		Select(opportunityColumns...).
		From("opportunities").
		Where("id = ANY(?)", pq.Array(ids)).
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to get opportunities by IDs",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get opportunities by IDs: %w", err)
	}

	return s.opportunities(rows), nil
}

func (s *Store) opportunities(rows []opportunityRow) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(rows))
	for _, row := range rows {
		o := row.toModel()
		if len(o.Malformed) > 0 {
			s.logger.Warn("opportunity has malformed fields",
				zap.String("opportunity_id", o.ID),
				zap.Strings("fields", o.Malformed),
			)
		}
		out = append(out, o)
	}
	return out
}
