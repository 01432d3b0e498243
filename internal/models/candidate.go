package models

import (
	"strings"
	"time"
)

type CandidateStatus string

const (
	CandidateStatusNew       CandidateStatus = "new"
	CandidateStatusReviewing CandidateStatus = "reviewing"
	CandidateStatusActive    CandidateStatus = "active"
	CandidateStatusPlaced    CandidateStatus = "placed"
	CandidateStatusInactive  CandidateStatus = "inactive"
	CandidateStatusWithdrawn CandidateStatus = "withdrawn"
	CandidateStatusArchived  CandidateStatus = "archived"
)

// IsInactive reports whether the application reached a state that takes the
// candidate out of batch matching.
func (s CandidateStatus) IsInactive() bool {
	switch CandidateStatus(strings.ToLower(strings.TrimSpace(string(s)))) {
	case CandidateStatusInactive, CandidateStatusWithdrawn, CandidateStatusArchived:
		return true
	}
	return false
}

// Candidate is a teaching applicant as seen by the matching engine.
type Candidate struct {
	ID                 string          `json:"id"`
	FullName           string          `json:"fullName"`
	PreferredLocations StringSet       `json:"preferredLocations"`
	PreferredLevel     string          `json:"preferredLevel"`
	SubjectSpecialty   string          `json:"subjectSpecialty"`
	YearsExperience    string          `json:"yearsExperience"`
	Status             CandidateStatus `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`

	// Malformed lists the fields whose raw value could not be parsed.
	Malformed []string `json:"malformed,omitempty"`
}

func (c *Candidate) IsInactive() bool {
	return c.Status.IsInactive()
}
