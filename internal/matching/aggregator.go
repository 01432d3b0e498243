package matching

import (
	"recruit-matcher/internal/models"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Scorer runs the criteria in order and folds them into a bounded score.
type Scorer struct {
	weights  Weights
	criteria []Criterion
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{
		weights:  w,
		criteria: Criteria(w),
	}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the clamped total and the non-empty reasons in evaluation order.
func (s *Scorer) Score(c *models.Candidate, o *models.Opportunity, dir Direction) (int, []string) {
	total := 0
	reasons := make([]string, 0, len(s.criteria))

	for _, criterion := range s.criteria {
		res := criterion.Evaluate(c, o, dir)
		total += res.Points
		if res.Reason != "" {
			reasons = append(reasons, res.Reason)
		}
	}

	return clamp(total, MinScore, MaxScore), reasons
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
