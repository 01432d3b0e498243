package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"recruit-matcher/internal/models"

	"go.uber.org/zap"
)

const candidateColumns = `id, full_name, preferred_locations, preferred_level,
  subject_specialty, years_experience, status, created_at`

const opportunityColumns = `id, kind, title, location, city, levels_offered,
  subjects_needed, functions, experience_required, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(r rowScanner) (models.Candidate, error) {
	var (
		c         models.Candidate
		locations string
		status    string
		created   int64
	)
	err := r.Scan(&c.ID, &c.FullName, &locations, &c.PreferredLevel,
		&c.SubjectSpecialty, &c.YearsExperience, &status, &created)
	if err != nil {
		return c, err
	}
	c.Status = models.CandidateStatus(status)
	c.CreatedAt = fromUnixNano(created)
	c.PreferredLocations = models.ParseListField("preferred_locations", locations, &c.Malformed)
	return c, nil
}

func scanOpportunity(r rowScanner) (models.Opportunity, error) {
	var (
		o                          models.Opportunity
		kind                       string
		levels, subjects, function string
		active                     bool
		created                    int64
	)
	err := r.Scan(&o.ID, &kind, &o.Title, &o.Location, &o.City, &levels,
		&subjects, &function, &o.ExperienceRequired, &active, &created)
	if err != nil {
		return o, err
	}
	o.Kind = models.OpportunityKind(kind)
	o.IsActive = active
	o.CreatedAt = fromUnixNano(created)
	o.LevelsOffered = models.ParseListField("levels_offered", levels, &o.Malformed)
	o.SubjectsNeeded = models.ParseListField("subjects_needed", subjects, &o.Malformed)
	o.Functions = models.ParseListField("functions", function, &o.Malformed)
	return o, nil
}

func encodeList(set models.StringSet) (string, error) {
	if set == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(set))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PutCandidate inserts or replaces a candidate. Used by imports and tests;
// in production candidates are written by the intake service.
func (s *Store) PutCandidate(ctx context.Context, c models.Candidate) error {
	locations, err := encodeList(c.PreferredLocations)
	if err != nil {
		return fmt.Errorf("encode preferred locations: %w", err)
	}

	created := c.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	status := c.Status
	if status == "" {
		status = models.CandidateStatusNew
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO candidates (`+candidateColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  full_name = excluded.full_name,
  preferred_locations = excluded.preferred_locations,
  preferred_level = excluded.preferred_level,
  subject_specialty = excluded.subject_specialty,
  years_experience = excluded.years_experience,
  status = excluded.status;`,
		c.ID, c.FullName, locations, c.PreferredLevel,
		c.SubjectSpecialty, c.YearsExperience, string(status), unixNano(created),
	)
	if err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}
	return nil
}

func (s *Store) PutOpportunity(ctx context.Context, o models.Opportunity) error {
	levels, err := encodeList(o.LevelsOffered)
	if err != nil {
		return fmt.Errorf("encode levels: %w", err)
	}
	subjects, err := encodeList(o.SubjectsNeeded)
	if err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	functions, err := encodeList(o.Functions)
	if err != nil {
		return fmt.Errorf("encode functions: %w", err)
	}

	created := o.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	kind := o.Kind
	if kind == "" {
		kind = models.OpportunityKindSchool
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO opportunities (`+opportunityColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  kind = excluded.kind,
  title = excluded.title,
  location = excluded.location,
  city = excluded.city,
  levels_offered = excluded.levels_offered,
  subjects_needed = excluded.subjects_needed,
  functions = excluded.functions,
  experience_required = excluded.experience_required,
  is_active = excluded.is_active;`,
		o.ID, string(kind), o.Title, o.Location, o.City, levels,
		subjects, functions, o.ExperienceRequired, o.IsActive, unixNano(created),
	)
	if err != nil {
		return fmt.Errorf("put opportunity: %w", err)
	}
	return nil
}

func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id;`)
	if err != nil {
		s.logger.Error("failed to list candidates", zap.Error(err))
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	return s.collectCandidates(rows)
}

func (s *Store) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?;`, id)

	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get candidate", zap.String("candidate_id", id), zap.Error(err))
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &c, nil
}

func (s *Store) GetCandidatesByIDs(ctx context.Context, ids []string) ([]models.Candidate, error) {
	if len(ids) == 0 {
		return []models.Candidate{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id;`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("get candidates by IDs: %w", err)
	}
	defer rows.Close()

	return s.collectCandidates(rows)
}

func (s *Store) collectCandidates(rows *sql.Rows) ([]models.Candidate, error) {
	out := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if len(c.Malformed) > 0 {
			s.logger.Warn("candidate has malformed fields",
				zap.String("candidate_id", c.ID),
				zap.Strings("fields", c.Malformed),
			)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *Store) ListOpportunities(ctx context.Context, activeOnly bool) ([]models.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to list opportunities", zap.Bool("active_only", activeOnly), zap.Error(err))
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	return s.collectOpportunities(rows)
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?;`, id)

	o, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get opportunity", zap.String("opportunity_id", id), zap.Error(err))
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return &o, nil
}

func (s *Store) GetOpportunitiesByIDs(ctx context.Context, ids []string) ([]models.Opportunity, error) {
	if len(ids) == 0 {
		return []models.Opportunity{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id;`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("get opportunities by IDs: %w", err)
	}
	defer rows.Close()

	return s.collectOpportunities(rows)
}

func (s *Store) collectOpportunities(rows *sql.Rows) ([]models.Opportunity, error) {
	out := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		if len(o.Malformed) > 0 {
			s.logger.Warn("opportunity has malformed fields",
				zap.String("opportunity_id", o.ID),
				zap.Strings("fields", o.Malformed),
			)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// ImportRecords upserts candidates and opportunities, stopping at the first error.
func (s *Store) ImportRecords(ctx context.Context, candidates []models.Candidate, opportunities []models.Opportunity) error {
	for _, c := range candidates {
		if err := s.PutCandidate(ctx, c); err != nil {
			return fmt.Errorf("import candidate %s: %w", c.ID, err)
		}
	}
	for _, o := range opportunities {
		if err := s.PutOpportunity(ctx, o); err != nil {
			return fmt.Errorf("import opportunity %s: %w", o.ID, err)
		}
	}

	s.logger.Info("records imported",
		zap.Int("candidates", len(candidates)),
		zap.Int("opportunities", len(opportunities)),
	)

	return nil
}
