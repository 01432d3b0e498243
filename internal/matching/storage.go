package matching

import (
	"context"

	"recruit-matcher/internal/models"
)

// CandidateReader reads candidates owned by the intake subsystem.
// GetCandidate returns (nil, nil) when the id is unknown.
type CandidateReader interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
}

// OpportunityReader reads job postings and school profiles.
// GetOpportunity returns (nil, nil) when the id is unknown.
type OpportunityReader interface {
	ListOpportunities(ctx context.Context, activeOnly bool) ([]models.Opportunity, error)
	GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error)
}

// CandidateBatchReader and OpportunityBatchReader are optional; stores that
// implement them let match listings hydrate in one query per side.
type CandidateBatchReader interface {
	GetCandidatesByIDs(ctx context.Context, ids []string) ([]models.Candidate, error)
}

type OpportunityBatchReader interface {
	GetOpportunitiesByIDs(ctx context.Context, ids []string) ([]models.Opportunity, error)
}

// MatchRepository persists matches. UpsertMatch must be a single atomic
// insert-or-update on the (candidate, opportunity) unique key.
// UpdateStatus reports false when no match has the given id.
type MatchRepository interface {
	UpsertMatch(ctx context.Context, in models.MatchUpsert) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, error)
	UpdateStatus(ctx context.Context, matchID int64, status models.MatchStatus, notes *string) (bool, error)
}

// Store is implemented by every storage backend.
type Store interface {
	CandidateReader
	OpportunityReader
	MatchRepository
}
