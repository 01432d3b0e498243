package matching_test

import (
	"reflect"
	"testing"

	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"
)

func TestScorer_FullMatch(t *testing.T) {
	t.Parallel()

	s := matching.NewScorer(matching.DefaultWeights())
	c := activeCandidate("c1")
	o := school("s1", "Shanghai")

	score, reasons := s.Score(&c, &o, matching.ForCandidate)
	if score != 100 {
		t.Fatalf("expected score 100, got %d", score)
	}

	want := []string{
		matching.ReasonLocationMatches,
		matching.ReasonLevelMatches,
		matching.ReasonSubjectMatches,
		matching.ReasonExperienceMatches,
	}
	if !reflect.DeepEqual(reasons, want) {
		t.Fatalf("expected reasons %v, got %v", want, reasons)
	}
}

func TestScorer_LocationMismatch(t *testing.T) {
	t.Parallel()

	s := matching.NewScorer(matching.DefaultWeights())
	c := activeCandidate("c1")
	o := school("s1", "Beijing")

	score, reasons := s.Score(&c, &o, matching.ForCandidate)
	if score != 60 {
		t.Fatalf("expected score 60, got %d", score)
	}
	for _, r := range reasons {
		if r == matching.ReasonLocationMatches || r == matching.ReasonLocationPartialMatches {
			t.Fatalf("unexpected location reason in %v", reasons)
		}
	}
}

func TestScorer_NoLocationPreferenceIsFlat(t *testing.T) {
	t.Parallel()

	s := matching.NewScorer(matching.DefaultWeights())
	c := activeCandidate("c1")
	c.PreferredLocations = nil

	for _, loc := range []string{"Shanghai", "Beijing", "Chengdu", ""} {
		o := school("s1", loc)
		score, reasons := s.Score(&c, &o, matching.ForOpportunity)
		if score != 80 {
			t.Fatalf("location %q: expected score 80, got %d", loc, score)
		}
		if reasons[0] != matching.ReasonOpenToAnyLocation {
			t.Fatalf("location %q: expected %q first, got %v", loc, matching.ReasonOpenToAnyLocation, reasons)
		}
	}
}

func TestScorer_BoundsAndDeterminism(t *testing.T) {
	t.Parallel()

	heavy := matching.DefaultWeights()
	heavy.Location.Exact = 90
	heavy.Level.Match = 90

	tests := []struct {
		name string
		w    matching.Weights
		c    models.Candidate
		o    models.Opportunity
	}{
		{name: "canonical", w: matching.DefaultWeights(), c: activeCandidate("c1"), o: school("s1", "Shanghai")},
		{name: "legacy", w: matching.LegacySchoolWeights(), c: activeCandidate("c1"), o: school("s1", "Shanghai")},
		{name: "overweighted table is clamped", w: heavy, c: activeCandidate("c1"), o: school("s1", "Shanghai")},
		{name: "empty records", w: matching.DefaultWeights(), c: models.Candidate{ID: "c"}, o: models.Opportunity{ID: "o"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := matching.NewScorer(tt.w)

			first, firstReasons := s.Score(&tt.c, &tt.o, matching.ForCandidate)
			if first < matching.MinScore || first > matching.MaxScore {
				t.Fatalf("score %d out of bounds", first)
			}
			if firstReasons == nil {
				t.Fatalf("expected non-nil reasons")
			}

			for i := 0; i < 5; i++ {
				again, againReasons := s.Score(&tt.c, &tt.o, matching.ForCandidate)
				if again != first || !reflect.DeepEqual(againReasons, firstReasons) {
					t.Fatalf("non-deterministic score: %d %v vs %d %v", first, firstReasons, again, againReasons)
				}
			}
		})
	}
}

func TestScorer_LegacyTable(t *testing.T) {
	s := matching.NewScorer(matching.LegacySchoolWeights())
	c := activeCandidate("c1")
	o := school("s1", "Shanghai")

	if score, _ := s.Score(&c, &o, matching.ForCandidate); score != 100 {
		t.Fatalf("expected legacy full match 100, got %d", score)
	}
	if max := s.Weights().Max(); max != 100 {
		t.Fatalf("expected legacy max 100, got %d", max)
	}
}
