package matching_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"
	"recruit-matcher/internal/storage/memory"
)

var (
	_ matching.Store                  = (*memory.Store)(nil)
	_ matching.CandidateBatchReader   = (*memory.Store)(nil)
	_ matching.OpportunityBatchReader = (*memory.Store)(nil)
)

func activeCandidate(id string) models.Candidate {
	return models.Candidate{
		ID:                 id,
		FullName:           "Candidate " + id,
		PreferredLocations: models.NewStringSet("Shanghai"),
		PreferredLevel:     "Primary",
		SubjectSpecialty:   "English",
		YearsExperience:    "3-5",
		Status:             models.CandidateStatusActive,
	}
}

func school(id, location string) models.Opportunity {
	return models.Opportunity{
		ID:                 id,
		Kind:               models.OpportunityKindSchool,
		Title:              "School " + id,
		Location:           location,
		LevelsOffered:      models.NewStringSet("Primary"),
		SubjectsNeeded:     models.NewStringSet("English"),
		ExperienceRequired: "3-5",
		IsActive:           true,
	}
}

// tickingClock advances one second per call.
func tickingClock() func() time.Time {
	var (
		mu sync.Mutex
		n  int
	)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

var errBoom = errors.New("boom")

// flakyStore fails UpsertMatch for a single pair.
type flakyStore struct {
	*memory.Store
	failCandidate   string
	failOpportunity string
}

func (f *flakyStore) UpsertMatch(ctx context.Context, in models.MatchUpsert) (*models.Match, error) {
	if in.CandidateID == f.failCandidate && in.OpportunityID == f.failOpportunity {
		return nil, errBoom
	}
	return f.Store.UpsertMatch(ctx, in)
}

// brokenLookupStore fails opportunity lookups for one id and all bulk lookups.
type brokenLookupStore struct {
	*memory.Store
	brokenOpportunity string
}

func (b *brokenLookupStore) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	if id == b.brokenOpportunity {
		return nil, errBoom
	}
	return b.Store.GetOpportunity(ctx, id)
}

func (b *brokenLookupStore) GetOpportunitiesByIDs(context.Context, []string) ([]models.Opportunity, error) {
	return nil, errBoom
}

type fakeCache struct {
	mu          sync.Mutex
	suggestions map[string][]models.Suggestion
	gets        int
	invalidated int
	summaries   []*models.ReconcileSummary
}

func newFakeCache() *fakeCache {
	return &fakeCache{suggestions: make(map[string][]models.Suggestion)}
}

func (f *fakeCache) GetSuggestions(_ context.Context, key string) ([]models.Suggestion, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	s, ok := f.suggestions[key]
	return s, ok, nil
}

func (f *fakeCache) SetSuggestions(_ context.Context, key string, s []models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions[key] = s
	return nil
}

func (f *fakeCache) InvalidateSuggestions(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.suggestions = make(map[string][]models.Suggestion)
	return nil
}

func (f *fakeCache) SaveSummary(_ context.Context, s *models.ReconcileSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	return nil
}

type fakeLocker struct {
	mu     sync.Mutex
	holder string
}

func (f *fakeLocker) TryLock(_ context.Context, owner string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holder != "" {
		return false, nil
	}
	f.holder = owner
	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holder == owner {
		f.holder = ""
	}
	return nil
}
