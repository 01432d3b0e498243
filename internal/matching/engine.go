package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"recruit-matcher/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultCache keeps on-demand suggestions and the last batch summary.
// A cache miss is (false, nil).
type ResultCache interface {
	GetSuggestions(ctx context.Context, key string) ([]models.Suggestion, bool, error)
	SetSuggestions(ctx context.Context, key string, suggestions []models.Suggestion) error
	InvalidateSuggestions(ctx context.Context) error
	SaveSummary(ctx context.Context, summary *models.ReconcileSummary) error
}

// Locker guards batch reconciliation across replicas.
type Locker interface {
	TryLock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, owner string) error
}

type Options struct {
	Weights         Weights
	Threshold       int
	Direction       Direction
	Workers         int
	WritesPerSecond float64
	LockTTL         time.Duration

	Cache  ResultCache
	Locker Locker
}

// Engine exposes the matching operations used by the CLI, the scheduler and the reviewer bot.
type Engine struct {
	store      Store
	scorer     *Scorer
	matcher    *Matcher
	reconciler *Reconciler
	threshold  int
	direction  Direction
	lockTTL    time.Duration
	cache      ResultCache
	locker     Locker
	logger     *zap.Logger
}

func NewEngine(store Store, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}

	scorer := NewScorer(opts.Weights)
	matcher := NewMatcher(scorer, store, logger)

	return &Engine{
		store:   store,
		scorer:  scorer,
		matcher: matcher,
		reconciler: NewReconciler(store, store, matcher, ReconcilerOptions{
			Workers:         opts.Workers,
			WritesPerSecond: opts.WritesPerSecond,
		}, logger),
		threshold: opts.Threshold,
		direction: opts.Direction,
		lockTTL:   lockTTL,
		cache:     opts.Cache,
		locker:    opts.Locker,
		logger:    logger,
	}
}

func (e *Engine) Threshold() int { return e.threshold }

func (e *Engine) Scorer() *Scorer { return e.scorer }

// MatchOne scores and, above threshold, persists a single pair.
func (e *Engine) MatchOne(ctx context.Context, candidateID, opportunityID string) (*models.Match, error) {
	c, err := e.candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	o, err := e.opportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	return e.matcher.MatchOne(ctx, c, o, e.threshold, ForCandidate)
}

// FindMatchesForCandidate scores the candidate against every active
// opportunity without persisting anything. Results are ordered by score
// descending, then opportunity id.
func (e *Engine) FindMatchesForCandidate(ctx context.Context, candidateID string) ([]models.Suggestion, error) {
	key := "candidate:" + candidateID
	if cached, ok := e.cachedSuggestions(ctx, key); ok {
		return cached, nil
	}

	c, err := e.candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	opportunities, err := e.store.ListOpportunities(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(opportunities))
	for i := range opportunities {
		o := &opportunities[i]
		if !o.IsActive {
			continue
		}
		score, reasons := e.scorer.Score(c, o, ForCandidate)
		suggestions = append(suggestions, models.Suggestion{Opportunity: o, Score: score, Reasons: reasons})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Opportunity.ID < suggestions[j].Opportunity.ID
	})

	e.storeSuggestions(ctx, key, suggestions)
	return suggestions, nil
}

// FindMatchesForOpportunity scores every active candidate against the opportunity.
func (e *Engine) FindMatchesForOpportunity(ctx context.Context, opportunityID string) ([]models.Suggestion, error) {
	key := "opportunity:" + opportunityID
	if cached, ok := e.cachedSuggestions(ctx, key); ok {
		return cached, nil
	}

	o, err := e.opportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.IsInactive() {
			continue
		}
		score, reasons := e.scorer.Score(c, o, ForOpportunity)
		suggestions = append(suggestions, models.Suggestion{Candidate: c, Score: score, Reasons: reasons})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Candidate.ID < suggestions[j].Candidate.ID
	})

	e.storeSuggestions(ctx, key, suggestions)
	return suggestions, nil
}

// RunBatchReconciliation recomputes every pair in the configured direction.
// With a Locker configured only one replica runs at a time.
func (e *Engine) RunBatchReconciliation(ctx context.Context) (*models.ReconcileSummary, error) {
	if e.locker != nil {
		owner := uuid.NewString()
		acquired, err := e.locker.TryLock(ctx, owner, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire reconcile lock: %w", err)
		}
		if !acquired {
			return nil, ErrReconcileInProgress
		}
		defer func() {
			if err := e.locker.Unlock(context.Background(), owner); err != nil {
				e.logger.Warn("failed to release reconcile lock", zap.Error(err))
			}
		}()
	}

	summary, err := e.reconciler.Run(ctx, e.threshold, e.direction)

	if e.cache != nil && summary != nil {
		// Suggestions computed before this run may now disagree with stored matches.
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := e.cache.InvalidateSuggestions(cacheCtx); cerr != nil {
			e.logger.Warn("failed to invalidate suggestion cache", zap.Error(cerr))
		}
		if cerr := e.cache.SaveSummary(cacheCtx, summary); cerr != nil {
			e.logger.Warn("failed to save reconcile summary", zap.Error(cerr))
		}
	}

	return summary, err
}

// ListPersistedMatches lists stored matches with their candidate and
// opportunity attached. A side that cannot be loaded is left nil.
func (e *Engine) ListPersistedMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, error) {
	matches, err := e.store.ListMatches(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	candidates, opportunities := e.prefetch(ctx, matches)

	for i := range matches {
		m := &matches[i]

		c, seen := candidates[m.CandidateID]
		if !seen {
			c, err = e.store.GetCandidate(ctx, m.CandidateID)
			if err != nil {
				e.logger.Warn("failed to hydrate match candidate",
					zap.Int64("match_id", m.ID),
					zap.String("candidate_id", m.CandidateID),
					zap.Error(err),
				)
				c = nil
			}
			candidates[m.CandidateID] = c
		}
		m.Candidate = c

		o, seen := opportunities[m.OpportunityID]
		if !seen {
			o, err = e.store.GetOpportunity(ctx, m.OpportunityID)
			if err != nil {
				e.logger.Warn("failed to hydrate match opportunity",
					zap.Int64("match_id", m.ID),
					zap.String("opportunity_id", m.OpportunityID),
					zap.Error(err),
				)
				o = nil
			}
			opportunities[m.OpportunityID] = o
		}
		m.Opportunity = o
	}

	return matches, nil
}

// prefetch loads both sides in bulk when the store supports it. Anything it
// cannot resolve is left for the per-id lookup.
func (e *Engine) prefetch(ctx context.Context, matches []models.Match) (map[string]*models.Candidate, map[string]*models.Opportunity) {
	candidates := make(map[string]*models.Candidate)
	opportunities := make(map[string]*models.Opportunity)

	if len(matches) == 0 {
		return candidates, opportunities
	}

	var candidateIDs, opportunityIDs []string
	seenC, seenO := map[string]bool{}, map[string]bool{}
	for _, m := range matches {
		if !seenC[m.CandidateID] {
			seenC[m.CandidateID] = true
			candidateIDs = append(candidateIDs, m.CandidateID)
		}
		if !seenO[m.OpportunityID] {
			seenO[m.OpportunityID] = true
			opportunityIDs = append(opportunityIDs, m.OpportunityID)
		}
	}

	if r, ok := e.store.(CandidateBatchReader); ok {
		found, err := r.GetCandidatesByIDs(ctx, candidateIDs)
		if err != nil {
			e.logger.Warn("bulk candidate lookup failed", zap.Error(err))
		} else {
			for i := range found {
				candidates[found[i].ID] = &found[i]
			}
		}
	}

	if r, ok := e.store.(OpportunityBatchReader); ok {
		found, err := r.GetOpportunitiesByIDs(ctx, opportunityIDs)
		if err != nil {
			e.logger.Warn("bulk opportunity lookup failed", zap.Error(err))
		} else {
			for i := range found {
				opportunities[found[i].ID] = &found[i]
			}
		}
	}

	return candidates, opportunities
}

// SetMatchStatus writes a reviewer status. Any transition is accepted.
func (e *Engine) SetMatchStatus(ctx context.Context, matchID int64, status string, notes *string) error {
	st, err := models.ParseMatchStatus(status)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	updated, err := e.store.UpdateStatus(ctx, matchID, st, notes)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if !updated {
		return ErrMatchNotFound
	}

	e.logger.Info("match status updated",
		zap.Int64("match_id", matchID),
		zap.String("status", string(st)),
	)

	return nil
}

func (e *Engine) candidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := e.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	if c == nil {
		return nil, ErrCandidateNotFound
	}
	return c, nil
}

func (e *Engine) opportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	o, err := e.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	if o == nil {
		return nil, ErrOpportunityNotFound
	}
	return o, nil
}

func (e *Engine) cachedSuggestions(ctx context.Context, key string) ([]models.Suggestion, bool) {
	if e.cache == nil {
		return nil, false
	}
	suggestions, ok, err := e.cache.GetSuggestions(ctx, key)
	if err != nil {
		e.logger.Warn("failed to read suggestion cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return suggestions, ok
}

func (e *Engine) storeSuggestions(ctx context.Context, key string, suggestions []models.Suggestion) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetSuggestions(ctx, key, suggestions); err != nil {
		e.logger.Warn("failed to write suggestion cache", zap.String("key", key), zap.Error(err))
	}
}
