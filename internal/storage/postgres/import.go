package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"recruit-matcher/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const importCandidateQuery = `
INSERT INTO candidates (id, full_name, preferred_locations, preferred_level, subject_specialty, years_experience, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    full_name = EXCLUDED.full_name,
    preferred_locations = EXCLUDED.preferred_locations,
    preferred_level = EXCLUDED.preferred_level,
    subject_specialty = EXCLUDED.subject_specialty,
    years_experience = EXCLUDED.years_experience,
    status = EXCLUDED.status`

const importOpportunityQuery = `
INSERT INTO opportunities (id, kind, title, location, city, levels_offered, subjects_needed, functions, experience_required, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    kind = EXCLUDED.kind,
    title = EXCLUDED.title,
    location = EXCLUDED.location,
    city = EXCLUDED.city,
    levels_offered = EXCLUDED.levels_offered,
    subjects_needed = EXCLUDED.subjects_needed,
    functions = EXCLUDED.functions,
    experience_required = EXCLUDED.experience_required,
    is_active = EXCLUDED.is_active`

// ImportRecords upserts candidates and opportunities in one transaction.
func (s *Store) ImportRecords(ctx context.Context, candidates []models.Candidate, opportunities []models.Opportunity) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	for _, c := range candidates {
		status := c.Status
		if status == "" {
			status = models.CandidateStatusNew
		}
		_, err := tx.InsertBySql(importCandidateQuery,
			c.ID, c.FullName, jsonList(c.PreferredLocations), c.PreferredLevel,
			c.SubjectSpecialty, c.YearsExperience, string(status),
		).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("import candidate %s: %w", c.ID, err)
		}
	}

	for _, o := range opportunities {
		kind := o.Kind
		if kind == "" {
			kind = models.OpportunityKindSchool
		}
		_, err := tx.InsertBySql(importOpportunityQuery,
			o.ID, string(kind), o.Title, o.Location, o.City,
			pq.StringArray(o.LevelsOffered), jsonList(o.SubjectsNeeded), jsonList(o.Functions),
			o.ExperienceRequired, o.IsActive,
		).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("import opportunity %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("records imported",
		zap.Int("candidates", len(candidates)),
		zap.Int("opportunities", len(opportunities)),
	)

	return nil
}

func jsonList(set models.StringSet) string {
	if len(set) == 0 {
		return "[]"
	}
	b, _ := json.Marshal([]string(set))
	return string(b)
}
