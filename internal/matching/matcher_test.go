package matching_test

import (
	"context"
	"errors"
	"testing"

	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"
	"recruit-matcher/internal/storage/memory"
)

func newTestMatcher(store matching.MatchRepository) *matching.Matcher {
	return matching.NewMatcher(matching.NewScorer(matching.DefaultWeights()), store, nil)
}

func TestMatchOne_BelowThresholdWritesNothing(t *testing.T) {
	store := memory.New()
	m := newTestMatcher(store)

	c := activeCandidate("c1")
	o := school("s1", "Shanghai")

	match, err := m.MatchOne(context.Background(), &c, &o, 101, matching.ForCandidate)
	if err != nil {
		t.Fatalf("MatchOne: %v", err)
	}
	if match != nil {
		t.Fatalf("expected no match above maximum score, got %+v", match)
	}
	if store.MatchCount() != 0 {
		t.Fatalf("expected no stored matches, got %d", store.MatchCount())
	}
}

func TestMatchOne_UpsertIsIdempotent(t *testing.T) {
	store := memory.New().WithClock(tickingClock())
	m := newTestMatcher(store)
	ctx := context.Background()

	c := activeCandidate("c1")
	o := school("s1", "Shanghai")

	first, err := m.MatchOne(ctx, &c, &o, 50, matching.ForCandidate)
	if err != nil {
		t.Fatalf("first MatchOne: %v", err)
	}
	if first == nil || first.Score != 100 || first.Status != models.MatchStatusPending {
		t.Fatalf("unexpected first match: %+v", first)
	}

	// A reviewer moves the match on; rescoring must not reset it.
	if ok, err := store.UpdateStatus(ctx, first.ID, models.MatchStatusContacted, nil); err != nil || !ok {
		t.Fatalf("UpdateStatus: ok=%v err=%v", ok, err)
	}

	second, err := m.MatchOne(ctx, &c, &o, 50, matching.ForCandidate)
	if err != nil {
		t.Fatalf("second MatchOne: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same match id %d, got %d", first.ID, second.ID)
	}
	if store.MatchCount() != 1 {
		t.Fatalf("expected exactly one stored match, got %d", store.MatchCount())
	}
	if second.Status != models.MatchStatusContacted {
		t.Fatalf("expected status to survive rescoring, got %s", second.Status)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected createdAt to be kept")
	}
}

func TestMatchOne_MissingIDs(t *testing.T) {
	m := newTestMatcher(memory.New())

	c := activeCandidate("")
	o := school("s1", "Shanghai")

	_, err := m.MatchOne(context.Background(), &c, &o, 0, matching.ForCandidate)
	var verr *matching.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	c = activeCandidate("c1")
	o = school("", "Shanghai")
	if _, err := m.MatchOne(context.Background(), &c, &o, 0, matching.ForCandidate); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for opportunity, got %v", err)
	}
}

func TestMatchOne_WrapsRepositoryError(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failCandidate: "c1", failOpportunity: "s1"}
	m := newTestMatcher(store)

	c := activeCandidate("c1")
	o := school("s1", "Shanghai")

	_, err := m.MatchOne(context.Background(), &c, &o, 0, matching.ForCandidate)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
