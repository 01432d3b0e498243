package matching

import (
	"strings"

	"recruit-matcher/internal/models"
)

// Direction tells which side asked for the score. Only the wording of the
// no-preference location reason depends on it.
type Direction int

const (
	ForCandidate Direction = iota
	ForOpportunity
)

func (d Direction) String() string {
	if d == ForOpportunity {
		return "opportunities"
	}
	return "candidates"
}

// ParseDirection accepts "candidates" or "opportunities".
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "candidate", "candidates":
		return ForCandidate, true
	case "opportunity", "opportunities", "school", "schools", "job", "jobs":
		return ForOpportunity, true
	}
	return ForCandidate, false
}

const (
	ReasonNoLocationPreference   = "no location preference"
	ReasonOpenToAnyLocation      = "open to any location"
	ReasonLocationMatches        = "location preference matches"
	ReasonLocationPartialMatches = "location preference partially matches"
	ReasonOpenToAnyLevel         = "open to any level"
	ReasonLevelMatches           = "level preference matches"
	ReasonLevelDiffers           = "level preference differs"
	ReasonSubjectMatches         = "subject specialty matches"
	ReasonSubjectDiffers         = "subject specialty differs"
	ReasonExperienceMatches      = "experience matches"
	ReasonExperienceDiffers      = "experience differs"
)

var anyLocationTokens = map[string]bool{
	"any":           true,
	"anywhere":      true,
	"no preference": true,
	"flexible":      true,
	"open":          true,
}

var anyLevelTokens = map[string]bool{
	"any":           true,
	"all":           true,
	"flexible":      true,
	"no preference": true,
}

// Result is one criterion's contribution. An empty Reason is omitted from
// the aggregated reasons.
type Result struct {
	Points int
	Reason string
}

// Criterion scores a single dimension of compatibility.
type Criterion interface {
	Name() string
	Evaluate(c *models.Candidate, o *models.Opportunity, dir Direction) Result
}

// Criteria returns the evaluators in scoring order: location, level, subject, experience.
func Criteria(w Weights) []Criterion {
	return []Criterion{
		locationCriterion{w: w.Location},
		levelCriterion{w: w.Level},
		subjectCriterion{w: w.Subject},
		experienceCriterion{w: w.Experience},
	}
}

type locationCriterion struct{ w LocationWeights }

func (locationCriterion) Name() string { return "location" }

func (l locationCriterion) Evaluate(c *models.Candidate, o *models.Opportunity, dir Direction) Result {
	return EvaluateLocation(c.PreferredLocations, o.Location, o.City, l.w, dir)
}

type levelCriterion struct{ w LevelWeights }

func (levelCriterion) Name() string { return "level" }

func (l levelCriterion) Evaluate(c *models.Candidate, o *models.Opportunity, _ Direction) Result {
	return EvaluateLevel(c.PreferredLevel, o.LevelsOffered, l.w)
}

type subjectCriterion struct{ w SubjectWeights }

func (subjectCriterion) Name() string { return "subject" }

func (s subjectCriterion) Evaluate(c *models.Candidate, o *models.Opportunity, _ Direction) Result {
	return EvaluateSubject(c.SubjectSpecialty, o.Subjects(), s.w)
}

type experienceCriterion struct{ w ExperienceWeights }

func (experienceCriterion) Name() string { return "experience" }

func (e experienceCriterion) Evaluate(c *models.Candidate, o *models.Opportunity, _ Direction) Result {
	return EvaluateExperience(c.YearsExperience, o.ExperienceRequired, e.w)
}

// EvaluateLocation compares the candidate's preferred locations with the
// opportunity's location and city.
func EvaluateLocation(prefs models.StringSet, location, city string, w LocationWeights, dir Direction) Result {
	wanted := nonEmpty(prefs.Lower()...)
	if len(wanted) == 0 || containsAny(wanted, anyLocationTokens) {
		reason := ReasonNoLocationPreference
		if dir == ForOpportunity {
			reason = ReasonOpenToAnyLocation
		}
		return Result{Points: w.NoPreference, Reason: reason}
	}

	targets := nonEmpty(normalize(location), normalize(city))
	if len(targets) == 0 {
		return Result{}
	}

	for _, pref := range wanted {
		for _, target := range targets {
			if pref == target {
				return Result{Points: w.Exact, Reason: ReasonLocationMatches}
			}
		}
	}

	for _, pref := range wanted {
		for _, target := range targets {
			if overlaps(pref, target) {
				return Result{Points: w.Partial, Reason: ReasonLocationPartialMatches}
			}
		}
	}

	return Result{}
}

// EvaluateLevel compares the candidate's preferred level with the levels offered.
func EvaluateLevel(preferred string, offered models.StringSet, w LevelWeights) Result {
	levels := nonEmpty(offered.Lower()...)
	if len(levels) == 0 {
		return Result{Points: w.Unspecified}
	}

	level := normalize(preferred)
	if anyLevelTokens[level] {
		return Result{Points: w.Flexible, Reason: ReasonOpenToAnyLevel}
	}
	if level == "" {
		return Result{Points: w.Unspecified}
	}

	for _, l := range levels {
		if overlaps(level, l) {
			return Result{Points: w.Match, Reason: ReasonLevelMatches}
		}
	}

	return Result{Points: w.Differs, Reason: ReasonLevelDiffers}
}

// EvaluateSubject compares the candidate's specialty with the subjects needed.
func EvaluateSubject(specialty string, subjects models.StringSet, w SubjectWeights) Result {
	needed := nonEmpty(subjects.Lower()...)
	if len(needed) == 0 {
		return Result{Points: w.Unspecified}
	}

	subject := normalize(specialty)
	if subject == "" {
		return Result{Points: w.Unspecified}
	}

	for _, s := range needed {
		if overlaps(subject, s) {
			return Result{Points: w.Match, Reason: ReasonSubjectMatches}
		}
	}

	return Result{Points: w.Differs, Reason: ReasonSubjectDiffers}
}

// EvaluateExperience compares experience buckets such as "3-5".
func EvaluateExperience(candidate, required string, w ExperienceWeights) Result {
	half := w.Match / 2

	have, want := normalize(candidate), normalize(required)
	if have == "" || want == "" {
		return Result{Points: half}
	}

	if overlaps(have, want) {
		return Result{Points: w.Match, Reason: ReasonExperienceMatches}
	}

	return Result{Points: half, Reason: ReasonExperienceDiffers}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// overlaps reports a substring match in either direction. Both sides must be non-empty.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalize(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(values []string, tokens map[string]bool) bool {
	for _, v := range values {
		if tokens[normalize(v)] {
			return true
		}
	}
	return false
}
