package matching

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LocationWeights struct {
	Exact        int `yaml:"exact"`
	Partial      int `yaml:"partial"`
	NoPreference int `yaml:"no_preference"`
}

type LevelWeights struct {
	Match       int `yaml:"match"`
	Flexible    int `yaml:"flexible"`
	Unspecified int `yaml:"unspecified"`
	Differs     int `yaml:"differs"`
}

type SubjectWeights struct {
	Match       int `yaml:"match"`
	Unspecified int `yaml:"unspecified"`
	Differs     int `yaml:"differs"`
}

// ExperienceWeights awards Match on a match and half of it otherwise.
type ExperienceWeights struct {
	Match int `yaml:"match"`
}

// Weights is the points table shared by every scoring direction.
type Weights struct {
	Location   LocationWeights   `yaml:"location"`
	Level      LevelWeights      `yaml:"level"`
	Subject    SubjectWeights    `yaml:"subject"`
	Experience ExperienceWeights `yaml:"experience"`
}

// DefaultWeights is the canonical 40/30/30 table with experience folded to 0.
func DefaultWeights() Weights {
	return Weights{
		Location:   LocationWeights{Exact: 40, Partial: 30, NoPreference: 20},
		Level:      LevelWeights{Match: 30, Flexible: 20, Unspecified: 15, Differs: 10},
		Subject:    SubjectWeights{Match: 30, Unspecified: 10, Differs: 5},
		Experience: ExperienceWeights{Match: 0},
	}
}

// LegacySchoolWeights reproduces the 40/25/25/10 table historically used when
// scoring schools for a candidate.
func LegacySchoolWeights() Weights {
	return Weights{
		Location:   LocationWeights{Exact: 40, Partial: 30, NoPreference: 20},
		Level:      LevelWeights{Match: 25, Flexible: 15, Unspecified: 10, Differs: 10},
		Subject:    SubjectWeights{Match: 25, Unspecified: 10, Differs: 5},
		Experience: ExperienceWeights{Match: 10},
	}
}

// Max is the best achievable total before clamping.
func (w Weights) Max() int {
	return w.Location.Exact + w.Level.Match + w.Subject.Match + w.Experience.Match
}

func (w Weights) Validate() error {
	values := map[string]int{
		"location.exact":         w.Location.Exact,
		"location.partial":       w.Location.Partial,
		"location.no_preference": w.Location.NoPreference,
		"level.match":            w.Level.Match,
		"level.flexible":         w.Level.Flexible,
		"level.unspecified":      w.Level.Unspecified,
		"level.differs":          w.Level.Differs,
		"subject.match":          w.Subject.Match,
		"subject.unspecified":    w.Subject.Unspecified,
		"subject.differs":        w.Subject.Differs,
		"experience.match":       w.Experience.Match,
	}
	for name, v := range values {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %d", name, v)
		}
	}

	if w.Location.Partial > w.Location.Exact {
		return fmt.Errorf("location.partial (%d) exceeds location.exact (%d)", w.Location.Partial, w.Location.Exact)
	}

	return nil
}

// LoadWeights reads a YAML weight table. Keys missing from the file keep
// their DefaultWeights value.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}

	if err := yaml.Unmarshal(b, &w); err != nil {
		return w, fmt.Errorf("parse weights file: %w", err)
	}

	if err := w.Validate(); err != nil {
		return w, err
	}

	return w, nil
}
