package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"

	"go.uber.org/zap/zaptest"
)

var _ matching.Store = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "matcher.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	var (
		mu sync.Mutex
		n  int
	)
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	})

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var v int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("expected user_version %d, got %d", schemaVersion, v)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.PutCandidate(ctx, models.Candidate{
		ID:                 "c1",
		FullName:           "Ann Lee",
		PreferredLocations: models.NewStringSet("Shanghai", "Hangzhou"),
		PreferredLevel:     "Primary",
		SubjectSpecialty:   "English",
		Status:             models.CandidateStatusActive,
	})
	if err != nil {
		t.Fatalf("PutCandidate: %v", err)
	}

	err = s.PutOpportunity(ctx, models.Opportunity{
		ID:             "s1",
		Title:          "Sunrise Primary",
		Location:       "Shanghai",
		LevelsOffered:  models.NewStringSet("Primary"),
		SubjectsNeeded: models.NewStringSet("English"),
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("PutOpportunity: %v", err)
	}
	if err := s.PutOpportunity(ctx, models.Opportunity{ID: "s2", Location: "Beijing"}); err != nil {
		t.Fatalf("PutOpportunity: %v", err)
	}

	c, err := s.GetCandidate(ctx, "c1")
	if err != nil || c == nil {
		t.Fatalf("GetCandidate: %+v %v", c, err)
	}
	if len(c.PreferredLocations) != 2 || c.Status != models.CandidateStatusActive || c.CreatedAt.IsZero() {
		t.Fatalf("unexpected candidate: %+v", c)
	}

	o, err := s.GetOpportunity(ctx, "s1")
	if err != nil || o == nil || o.Kind != models.OpportunityKindSchool || !o.IsActive {
		t.Fatalf("GetOpportunity: %+v %v", o, err)
	}

	active, err := s.ListOpportunities(ctx, true)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one active opportunity, got %+v %v", active, err)
	}
	all, err := s.ListOpportunities(ctx, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two opportunities, got %+v %v", all, err)
	}

	if missing, err := s.GetOpportunity(ctx, "nope"); missing != nil || err != nil {
		t.Fatalf("expected (nil, nil), got %+v %v", missing, err)
	}

	byIDs, err := s.GetOpportunitiesByIDs(ctx, []string{"s2", "s1", "ghost"})
	if err != nil || len(byIDs) != 2 {
		t.Fatalf("GetOpportunitiesByIDs: %+v %v", byIDs, err)
	}
}

func TestLooseListColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Rows written by older intake code.
	_, err := s.db.ExecContext(ctx, `
INSERT INTO candidates (id, preferred_locations, status) VALUES
  ('csv', 'Shanghai, Suzhou', 'active'),
  ('broken', '["Shanghai"', 'active');`)
	if err != nil {
		t.Fatalf("insert legacy rows: %v", err)
	}

	cs, err := s.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cs))
	}

	byID := map[string]models.Candidate{}
	for _, c := range cs {
		byID[c.ID] = c
	}
	if got := byID["csv"].PreferredLocations; len(got) != 2 || got[1] != "Suzhou" {
		t.Fatalf("unexpected csv parse: %v", got)
	}
	if got := byID["broken"]; len(got.PreferredLocations) != 0 || len(got.Malformed) != 1 {
		t.Fatalf("expected malformed field to be flagged, got %+v", got)
	}
}

func TestMatchUpsertAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertMatch(ctx, models.MatchUpsert{CandidateID: "c1", OpportunityID: "s1", Score: 60, Reasons: []string{"level preference matches"}})
	if err != nil {
		t.Fatalf("UpsertMatch: %v", err)
	}
	if first.Status != models.MatchStatusPending || first.Notes != nil {
		t.Fatalf("unexpected new match: %+v", first)
	}

	notes := "sent intro email"
	ok, err := s.UpdateStatus(ctx, first.ID, models.MatchStatusContacted, &notes)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus: %v %v", ok, err)
	}

	second, err := s.UpsertMatch(ctx, models.MatchUpsert{CandidateID: "c1", OpportunityID: "s1", Score: 90, Reasons: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("second UpsertMatch: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same row, got %d and %d", first.ID, second.ID)
	}
	if second.Status != models.MatchStatusContacted || second.Notes == nil || *second.Notes != notes {
		t.Fatalf("expected reviewer fields to survive rescoring: %+v", second)
	}
	if second.Score != 90 || len(second.Reasons) != 2 {
		t.Fatalf("expected score and reasons to be replaced: %+v", second)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("unexpected timestamps: %v/%v -> %v/%v", first.CreatedAt, first.UpdatedAt, second.CreatedAt, second.UpdatedAt)
	}

	rejected := models.MatchStatusRejected
	third, err := s.UpsertMatch(ctx, models.MatchUpsert{CandidateID: "c1", OpportunityID: "s1", Score: 90, Status: &rejected})
	if err != nil || third.Status != models.MatchStatusRejected {
		t.Fatalf("expected explicit status to be written: %+v %v", third, err)
	}

	if ok, err := s.UpdateStatus(ctx, first.ID+100, models.MatchStatusPlaced, nil); err != nil || ok {
		t.Fatalf("expected unknown id to report false, got %v %v", ok, err)
	}
}

func TestListMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, in := range []models.MatchUpsert{
		{CandidateID: "c1", OpportunityID: "s1", Score: 60},
		{CandidateID: "c1", OpportunityID: "s2", Score: 90},
		{CandidateID: "c2", OpportunityID: "s1", Score: 60},
		{CandidateID: "c2", OpportunityID: "s2", Score: 30},
	} {
		if _, err := s.UpsertMatch(ctx, in); err != nil {
			t.Fatalf("UpsertMatch: %v", err)
		}
	}

	all, err := s.ListMatches(ctx, models.MatchFilter{})
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	want := []string{"c1/s2", "c2/s1", "c1/s1", "c2/s2"}
	for i, m := range all {
		if got := m.CandidateID + "/" + m.OpportunityID; got != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got)
		}
	}

	filtered, err := s.ListMatches(ctx, models.MatchFilter{OpportunityID: "s1", MinScore: 50, Limit: 1})
	if err != nil || len(filtered) != 1 || filtered[0].CandidateID != "c2" {
		t.Fatalf("unexpected filtered result: %+v %v", filtered, err)
	}

	if _, err := s.UpdateStatus(ctx, all[3].ID, models.MatchStatusPlaced, nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	placed, err := s.ListMatches(ctx, models.MatchFilter{Status: models.MatchStatusPlaced})
	if err != nil || len(placed) != 1 || placed[0].ID != all[3].ID {
		t.Fatalf("unexpected placed result: %+v %v", placed, err)
	}
}

func TestReconcileOverSQLite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2"} {
		if err := s.PutCandidate(ctx, models.Candidate{
			ID:                 id,
			PreferredLocations: models.NewStringSet("Shanghai"),
			PreferredLevel:     "Primary",
			SubjectSpecialty:   "English",
			Status:             models.CandidateStatusActive,
		}); err != nil {
			t.Fatalf("PutCandidate: %v", err)
		}
	}
	for _, loc := range []string{"Shanghai", "Beijing"} {
		if err := s.PutOpportunity(ctx, models.Opportunity{
			ID:             loc,
			Location:       loc,
			LevelsOffered:  models.NewStringSet("Primary"),
			SubjectsNeeded: models.NewStringSet("English"),
			IsActive:       true,
		}); err != nil {
			t.Fatalf("PutOpportunity: %v", err)
		}
	}

	e := matching.NewEngine(s, matching.Options{
		Weights:   matching.DefaultWeights(),
		Threshold: 70,
		Workers:   4,
	}, zaptest.NewLogger(t))

	summary, err := e.RunBatchReconciliation(ctx)
	if err != nil {
		t.Fatalf("RunBatchReconciliation: %v", err)
	}
	if summary.MatchesCreatedOrUpdated != 2 || summary.Failures != 0 {
		t.Fatalf("expected only the Shanghai pairs above 70, got %+v", summary)
	}

	listed, err := e.ListPersistedMatches(ctx, models.MatchFilter{OpportunityID: "Shanghai"})
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListPersistedMatches: %+v %v", listed, err)
	}
	if listed[0].Candidate == nil || listed[0].Opportunity == nil {
		t.Fatalf("expected hydrated matches")
	}
}
