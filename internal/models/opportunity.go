package models

import "time"

type OpportunityKind string

const (
	OpportunityKindJob    OpportunityKind = "job"
	OpportunityKindSchool OpportunityKind = "school"
)

// Opportunity is a job posting or a school profile.
type Opportunity struct {
	ID                 string          `json:"id"`
	Kind               OpportunityKind `json:"kind"`
	Title              string          `json:"title"`
	Location           string          `json:"location"`
	City               string          `json:"city,omitempty"`
	LevelsOffered      StringSet       `json:"levelsOffered"`
	SubjectsNeeded     StringSet       `json:"subjectsNeeded"`
	Functions          StringSet       `json:"functions,omitempty"` // legacy free-text subjects
	ExperienceRequired string          `json:"experienceRequired"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`

	Malformed []string `json:"malformed,omitempty"`
}

// Subjects returns the structured subjects merged with the legacy functions field.
func (o *Opportunity) Subjects() StringSet {
	return o.SubjectsNeeded.Union(o.Functions)
}
