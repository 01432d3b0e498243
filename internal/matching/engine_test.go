package matching_test

import (
	"context"
	"errors"
	"testing"

	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"
	"recruit-matcher/internal/storage/memory"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(store matching.Store, opts matching.Options) *matching.Engine {
	if opts.Weights == (matching.Weights{}) {
		opts.Weights = matching.DefaultWeights()
	}
	return matching.NewEngine(store, opts, nil)
}

func TestEngine_FindMatchesForCandidate(t *testing.T) {
	store := memory.New()
	store.PutCandidate(activeCandidate("c1"))
	store.PutOpportunity(school("beijing", "Beijing"))
	store.PutOpportunity(school("shanghai", "Shanghai"))
	store.PutOpportunity(school("another-shanghai", "Shanghai"))

	closed := school("closed", "Shanghai")
	closed.IsActive = false
	store.PutOpportunity(closed)

	e := newTestEngine(store, matching.Options{Threshold: 50})

	got, err := e.FindMatchesForCandidate(context.Background(), "c1")
	if err != nil {
		t.Fatalf("FindMatchesForCandidate: %v", err)
	}

	wantIDs := []string{"another-shanghai", "shanghai", "beijing"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d suggestions, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].Opportunity.ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].Opportunity.ID)
		}
	}
	if got[0].Score != 100 || got[2].Score != 60 {
		t.Fatalf("unexpected scores: %d, %d", got[0].Score, got[2].Score)
	}
	if store.MatchCount() != 0 {
		t.Fatalf("suggestions must not be persisted")
	}

	if _, err := e.FindMatchesForCandidate(context.Background(), "nobody"); !errors.Is(err, matching.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestEngine_FindMatchesForOpportunity(t *testing.T) {
	store := memory.New()
	store.PutOpportunity(school("s1", "Shanghai"))

	near := activeCandidate("near")
	far := activeCandidate("far")
	far.PreferredLocations = models.NewStringSet("Chengdu")
	archived := activeCandidate("archived")
	archived.Status = models.CandidateStatusArchived

	store.PutCandidate(far)
	store.PutCandidate(near)
	store.PutCandidate(archived)

	e := newTestEngine(store, matching.Options{})

	got, err := e.FindMatchesForOpportunity(context.Background(), "s1")
	if err != nil {
		t.Fatalf("FindMatchesForOpportunity: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected archived candidate to be skipped, got %d suggestions", len(got))
	}
	if got[0].Candidate.ID != "near" || got[1].Candidate.ID != "far" {
		t.Fatalf("unexpected order: %s, %s", got[0].Candidate.ID, got[1].Candidate.ID)
	}

	if _, err := e.FindMatchesForOpportunity(context.Background(), "missing"); !errors.Is(err, matching.ErrOpportunityNotFound) {
		t.Fatalf("expected ErrOpportunityNotFound, got %v", err)
	}
}

func TestEngine_SuggestionsAreCached(t *testing.T) {
	store := memory.New()
	store.PutCandidate(activeCandidate("c1"))
	store.PutOpportunity(school("s1", "Shanghai"))

	cache := newFakeCache()
	e := newTestEngine(store, matching.Options{Cache: cache})

	first, err := e.FindMatchesForCandidate(context.Background(), "c1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// A new opportunity is invisible until the cache is invalidated.
	store.PutOpportunity(school("s2", "Shanghai"))

	second, err := e.FindMatchesForCandidate(context.Background(), "c1")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected cached result, got %d suggestions", len(second))
	}

	if _, err := e.RunBatchReconciliation(context.Background()); err != nil {
		t.Fatalf("RunBatchReconciliation: %v", err)
	}
	if cache.invalidated != 1 || len(cache.summaries) != 1 {
		t.Fatalf("expected invalidation and saved summary, got %d / %d", cache.invalidated, len(cache.summaries))
	}

	third, err := e.FindMatchesForCandidate(context.Background(), "c1")
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if len(third) != 2 {
		t.Fatalf("expected fresh suggestions after invalidation, got %d", len(third))
	}
}

func TestEngine_RunBatchReconciliationHonoursLock(t *testing.T) {
	store := memory.New()
	seed(store, 1, 1)

	locker := &fakeLocker{holder: "another-replica"}
	e := newTestEngine(store, matching.Options{Threshold: 50, Locker: locker})

	if _, err := e.RunBatchReconciliation(context.Background()); !errors.Is(err, matching.ErrReconcileInProgress) {
		t.Fatalf("expected ErrReconcileInProgress, got %v", err)
	}
	if store.MatchCount() != 0 {
		t.Fatalf("expected no writes while locked")
	}

	locker.holder = ""
	summary, err := e.RunBatchReconciliation(context.Background())
	if err != nil {
		t.Fatalf("RunBatchReconciliation: %v", err)
	}
	if summary.MatchesCreatedOrUpdated != 1 {
		t.Fatalf("expected one match, got %+v", summary)
	}
	if locker.holder != "" {
		t.Fatalf("expected lock to be released, held by %q", locker.holder)
	}
}

func TestEngine_ListPersistedMatches(t *testing.T) {
	store := memory.New().WithClock(tickingClock())
	store.PutCandidate(activeCandidate("c1"))
	store.PutCandidate(activeCandidate("c2"))
	store.PutOpportunity(school("s1", "Shanghai"))
	store.PutOpportunity(school("s2", "Beijing"))

	e := newTestEngine(store, matching.Options{Threshold: 50})
	ctx := context.Background()

	if _, err := e.RunBatchReconciliation(ctx); err != nil {
		t.Fatalf("RunBatchReconciliation: %v", err)
	}

	all, err := e.ListPersistedMatches(ctx, models.MatchFilter{})
	if err != nil {
		t.Fatalf("ListPersistedMatches: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Score > all[i-1].Score {
			t.Fatalf("matches not ordered by score: %d before %d", all[i-1].Score, all[i].Score)
		}
	}
	for _, m := range all {
		if m.Candidate == nil || m.Opportunity == nil {
			t.Fatalf("expected hydrated match, got %+v", m)
		}
	}

	if err := e.SetMatchStatus(ctx, all[0].ID, "Contacted", nil); err != nil {
		t.Fatalf("SetMatchStatus: %v", err)
	}

	contacted, err := e.ListPersistedMatches(ctx, models.MatchFilter{Status: models.MatchStatusContacted})
	if err != nil {
		t.Fatalf("ListPersistedMatches: %v", err)
	}
	if len(contacted) != 1 || contacted[0].ID != all[0].ID {
		t.Fatalf("expected only the contacted match, got %+v", contacted)
	}

	store.DeleteCandidate(contacted[0].CandidateID)
	hydrated, err := e.ListPersistedMatches(ctx, models.MatchFilter{Status: models.MatchStatusContacted})
	if err != nil {
		t.Fatalf("ListPersistedMatches after delete: %v", err)
	}
	if hydrated[0].Candidate != nil {
		t.Fatalf("expected deleted candidate to be left nil")
	}
	if hydrated[0].Opportunity == nil {
		t.Fatalf("expected opportunity to stay hydrated")
	}
}

func TestEngine_HydrationFailureIsLogged(t *testing.T) {
	mem := memory.New()
	mem.PutCandidate(activeCandidate("c1"))
	mem.PutOpportunity(school("s1", "Shanghai"))
	store := &brokenLookupStore{Store: mem, brokenOpportunity: "s1"}

	core, logs := observer.New(zap.WarnLevel)
	e := matching.NewEngine(store, matching.Options{Weights: matching.DefaultWeights()}, zap.New(core))
	ctx := context.Background()

	if _, err := e.RunBatchReconciliation(ctx); err != nil {
		t.Fatalf("RunBatchReconciliation: %v", err)
	}

	matches, err := e.ListPersistedMatches(ctx, models.MatchFilter{})
	if err != nil {
		t.Fatalf("ListPersistedMatches: %v", err)
	}
	if len(matches) != 1 || matches[0].Opportunity != nil || matches[0].Candidate == nil {
		t.Fatalf("unexpected hydration: %+v", matches)
	}
	if logs.FilterMessage("failed to hydrate match opportunity").Len() != 1 {
		t.Fatalf("expected hydration warning")
	}
}

func TestEngine_SetMatchStatus(t *testing.T) {
	store := memory.New().WithClock(tickingClock())
	e := newTestEngine(store, matching.Options{})
	ctx := context.Background()

	stored, err := store.UpsertMatch(ctx, models.MatchUpsert{CandidateID: "c1", OpportunityID: "s1", Score: 70})
	if err != nil {
		t.Fatalf("UpsertMatch: %v", err)
	}

	var verr *matching.ValidationError
	if err := e.SetMatchStatus(ctx, stored.ID, "hired", nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := e.SetMatchStatus(ctx, 9999, "placed", nil); !errors.Is(err, matching.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}

	notes := "Called on Monday"
	if err := e.SetMatchStatus(ctx, stored.ID, "interviewed", &notes); err != nil {
		t.Fatalf("SetMatchStatus: %v", err)
	}
	// Terminal statuses can still be edited.
	if err := e.SetMatchStatus(ctx, stored.ID, "rejected", nil); err != nil {
		t.Fatalf("SetMatchStatus rejected: %v", err)
	}
	if err := e.SetMatchStatus(ctx, stored.ID, "pending", nil); err != nil {
		t.Fatalf("SetMatchStatus back to pending: %v", err)
	}

	got, _ := store.ListMatches(ctx, models.MatchFilter{CandidateID: "c1"})
	if len(got) != 1 {
		t.Fatalf("expected one match, got %d", len(got))
	}
	if got[0].Status != models.MatchStatusPending {
		t.Fatalf("expected pending, got %s", got[0].Status)
	}
	if got[0].Notes == nil || *got[0].Notes != notes {
		t.Fatalf("expected notes to be kept, got %v", got[0].Notes)
	}
	if !got[0].UpdatedAt.After(stored.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance")
	}
}

func TestEngine_MatchOne(t *testing.T) {
	store := memory.New()
	store.PutCandidate(activeCandidate("c1"))
	store.PutOpportunity(school("s1", "Shanghai"))

	e := newTestEngine(store, matching.Options{Threshold: 50})

	m, err := e.MatchOne(context.Background(), "c1", "s1")
	if err != nil {
		t.Fatalf("MatchOne: %v", err)
	}
	if m == nil || m.Score != 100 || len(m.Reasons) != 4 {
		t.Fatalf("unexpected match: %+v", m)
	}

	if _, err := e.MatchOne(context.Background(), "c1", "nope"); !errors.Is(err, matching.ErrOpportunityNotFound) {
		t.Fatalf("expected ErrOpportunityNotFound, got %v", err)
	}
}
