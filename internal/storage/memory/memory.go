// Package memory is a process-local store used by tests and by
// STORAGE_DRIVER=memory. The match table enforces the same
// (candidate_id, opportunity_id) uniqueness as the SQL backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"recruit-matcher/internal/models"
)

type pairKey struct {
	candidateID   string
	opportunityID string
}

type Store struct {
	mu            sync.RWMutex
	candidates    map[string]models.Candidate
	opportunities map[string]models.Opportunity
	matches       map[int64]*models.Match
	byPair        map[pairKey]int64
	nextID        int64
	now           func() time.Time
}

func New() *Store {
	return &Store{
		candidates:    make(map[string]models.Candidate),
		opportunities: make(map[string]models.Opportunity),
		matches:       make(map[int64]*models.Match),
		byPair:        make(map[pairKey]int64),
		now:           time.Now,
	}
}

// WithClock replaces the time source used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) PutCandidate(c models.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = c
}

func (s *Store) DeleteCandidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.candidates, id)
}

func (s *Store) PutOpportunity(o models.Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities[o.ID] = o
}

func (s *Store) DeleteOpportunity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.opportunities, id)
}

// ListCandidates returns candidates ordered by id.
func (s *Store) ListCandidates(_ context.Context) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListOpportunities returns opportunities ordered by id.
func (s *Store) ListOpportunities(_ context.Context, activeOnly bool) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Opportunity, 0, len(s.opportunities))
	for _, o := range s.opportunities {
		if activeOnly && !o.IsActive {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetOpportunity(_ context.Context, id string) (*models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.opportunities[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Store) GetCandidatesByIDs(_ context.Context, ids []string) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Candidate, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.candidates[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetOpportunitiesByIDs(_ context.Context, ids []string) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Opportunity, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.opportunities[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) UpsertMatch(_ context.Context, in models.MatchUpsert) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := pairKey{candidateID: in.CandidateID, opportunityID: in.OpportunityID}
	reasons := append(models.StringList{}, in.Reasons...)

	if id, ok := s.byPair[key]; ok {
		m := s.matches[id]
		m.Score = in.Score
		m.Reasons = reasons
		if in.Status != nil {
			m.Status = *in.Status
		}
		m.UpdatedAt = now
		return copyMatch(m), nil
	}

	status := models.MatchStatusPending
	if in.Status != nil {
		status = *in.Status
	}

	s.nextID++
	m := &models.Match{
		ID:            s.nextID,
		CandidateID:   in.CandidateID,
		OpportunityID: in.OpportunityID,
		Score:         in.Score,
		Reasons:       reasons,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.matches[m.ID] = m
	s.byPair[key] = m.ID

	return copyMatch(m), nil
}

// ListMatches orders by score descending, then updated_at descending.
func (s *Store) ListMatches(_ context.Context, filter models.MatchFilter) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Match, 0)
	for _, m := range s.matches {
		if filter.CandidateID != "" && m.CandidateID != filter.CandidateID {
			continue
		}
		if filter.OpportunityID != "" && m.OpportunityID != filter.OpportunityID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if m.Score < filter.MinScore {
			continue
		}
		out = append(out, *copyMatch(m))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Store) UpdateStatus(_ context.Context, matchID int64, status models.MatchStatus, notes *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok {
		return false, nil
	}

	m.Status = status
	if notes != nil {
		n := *notes
		m.Notes = &n
	}
	m.UpdatedAt = s.now()

	return true, nil
}

// MatchCount is the number of stored match rows.
func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func copyMatch(m *models.Match) *models.Match {
	out := *m
	out.Reasons = append(models.StringList{}, m.Reasons...)
	if m.Notes != nil {
		n := *m.Notes
		out.Notes = &n
	}
	return &out
}
