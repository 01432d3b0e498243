package models

import (
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending     MatchStatus = "pending"
	MatchStatusContacted   MatchStatus = "contacted"
	MatchStatusInterviewed MatchStatus = "interviewed"
	MatchStatusPlaced      MatchStatus = "placed"
	MatchStatusRejected    MatchStatus = "rejected"
)

// matchStatusOrder is the conventional progression used for advisory checks.
var matchStatusOrder = map[MatchStatus]int{
	MatchStatusPending:     0,
	MatchStatusContacted:   1,
	MatchStatusInterviewed: 2,
	MatchStatusPlaced:      3,
	MatchStatusRejected:    3,
}

func MatchStatuses() []MatchStatus {
	return []MatchStatus{
		MatchStatusPending,
		MatchStatusContacted,
		MatchStatusInterviewed,
		MatchStatusPlaced,
		MatchStatusRejected,
	}
}

// ParseMatchStatus converts a raw string to a MatchStatus, returning an error
// for unknown values.
func ParseMatchStatus(s string) (MatchStatus, error) {
	st := MatchStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := matchStatusOrder[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTerminal reports whether the status conventionally ends the workflow.
// Nothing prevents further edits.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusPlaced || s == MatchStatusRejected
}

// IsForwardTransition reports whether moving from -> to follows the usual
// pending -> contacted -> interviewed -> placed|rejected progression.
// It is advisory only; the repository accepts any transition.
func IsForwardTransition(from, to MatchStatus) bool {
	if from.IsTerminal() {
		return false
	}
	fromRank, okFrom := matchStatusOrder[from]
	toRank, okTo := matchStatusOrder[to]
	if !okFrom || !okTo {
		return false
	}
	if to == MatchStatusRejected {
		return true
	}
	return toRank == fromRank+1
}

// Match is the persisted compatibility record for one candidate/opportunity pair.
type Match struct {
	ID            int64       `db:"id" json:"id"`
	CandidateID   string      `db:"candidate_id" json:"candidateId"`
	OpportunityID string      `db:"opportunity_id" json:"opportunityId"`
	Score         int         `db:"score" json:"score"`
	Reasons       StringList  `db:"reasons" json:"reasons"`
	Status        MatchStatus `db:"status" json:"status"`
	Notes         *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	// Hydrated for display. Absent when the referenced record is gone.
	Candidate   *Candidate   `db:"-" json:"candidate,omitempty"`
	Opportunity *Opportunity `db:"-" json:"opportunity,omitempty"`
}

// MatchUpsert carries the values written by an insert-or-update.
// A nil Status keeps the stored status of an existing row.
type MatchUpsert struct {
	CandidateID   string
	OpportunityID string
	Score         int
	Reasons       []string
	Status        *MatchStatus
}

// MatchFilter narrows ListMatches. Zero values mean "any".
type MatchFilter struct {
	CandidateID   string
	OpportunityID string
	Status        MatchStatus
	MinScore      int
	Limit         int
}

// Suggestion is an on-demand, non-persisted scoring result.
type Suggestion struct {
	Candidate   *Candidate   `json:"candidate,omitempty"`
	Opportunity *Opportunity `json:"opportunity,omitempty"`
	Score       int          `json:"score"`
	Reasons     []string     `json:"reasons"`
}

// ReconcileSummary reports the outcome of a batch reconciliation run.
type ReconcileSummary struct {
	RunID                   string        `json:"runId"`
	Direction               string        `json:"direction"`
	Threshold               int           `json:"threshold"`
	MatchesCreatedOrUpdated int           `json:"matchesCreatedOrUpdated"`
	CandidatesProcessed     int           `json:"candidatesProcessed"`
	OpportunitiesProcessed  int           `json:"opportunitiesProcessed"`
	PairsAttempted          int           `json:"pairsAttempted"`
	Failures                int           `json:"failures"`
	StartedAt               time.Time     `json:"startedAt"`
	Duration                time.Duration `json:"duration"`
	Cancelled               bool          `json:"cancelled,omitempty"`
}
