package matching

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"recruit-matcher/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ReconcilerOptions tune the batch loop. Zero values give the sequential,
// unthrottled behaviour.
type ReconcilerOptions struct {
	Workers         int
	WritesPerSecond float64
}

// Reconciler recomputes matches over the whole active population.
type Reconciler struct {
	candidates    CandidateReader
	opportunities OpportunityReader
	matcher       *Matcher
	workers       int
	limiter       *rate.Limiter
	logger        *zap.Logger
	now           func() time.Time
}

func NewReconciler(
	candidates CandidateReader,
	opportunities OpportunityReader,
	matcher *Matcher,
	opts ReconcilerOptions,
	logger *zap.Logger,
) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var limiter *rate.Limiter
	if opts.WritesPerSecond > 0 {
		burst := int(opts.WritesPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.WritesPerSecond), burst)
	}

	return &Reconciler{
		candidates:    candidates,
		opportunities: opportunities,
		matcher:       matcher,
		workers:       workers,
		limiter:       limiter,
		logger:        logger,
		now:           time.Now,
	}
}

// RunForAllCandidates matches every active candidate against every active opportunity.
func (r *Reconciler) RunForAllCandidates(ctx context.Context, threshold int) (*models.ReconcileSummary, error) {
	return r.run(ctx, threshold, ForCandidate)
}

// RunForAllOpportunities is the same cross-product driven from the opportunity side.
func (r *Reconciler) RunForAllOpportunities(ctx context.Context, threshold int) (*models.ReconcileSummary, error) {
	return r.run(ctx, threshold, ForOpportunity)
}

// Run dispatches on direction.
func (r *Reconciler) Run(ctx context.Context, threshold int, dir Direction) (*models.ReconcileSummary, error) {
	return r.run(ctx, threshold, dir)
}

type pair struct {
	candidate   *models.Candidate
	opportunity *models.Opportunity
}

func (r *Reconciler) run(ctx context.Context, threshold int, dir Direction) (*models.ReconcileSummary, error) {
	started := r.now()
	summary := &models.ReconcileSummary{
		RunID:     uuid.NewString(),
		Direction: dir.String(),
		Threshold: threshold,
		StartedAt: started,
	}

	log := r.logger.With(
		zap.String("run_id", summary.RunID),
		zap.String("direction", summary.Direction),
	)
	log.Info("starting batch reconciliation",
		zap.Int("threshold", threshold),
		zap.Int("workers", r.workers),
	)

	candidates, err := r.activeCandidates(ctx)
	if err != nil {
		return summary, err
	}

	opportunities, err := r.opportunities.ListOpportunities(ctx, true)
	if err != nil {
		return summary, fmt.Errorf("list opportunities: %w", err)
	}
	opportunities = activeOnly(opportunities)

	var (
		persisted atomic.Int64
		attempted atomic.Int64
		failures  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	submit := func(p pair) {
		g.Go(func() error {
			attempted.Add(1)
			ok, err := r.reconcilePair(gctx, p, threshold, dir)
			if err != nil {
				failures.Add(1)
				log.Error("failed to reconcile pair",
					zap.String("candidate_id", p.candidate.ID),
					zap.String("opportunity_id", p.opportunity.ID),
					zap.Error(err),
				)
				return nil
			}
			if ok {
				persisted.Add(1)
			}
			return nil
		})
	}

	// Outer loop is the driving side; only the outer count grows as we go.
	switch dir {
	case ForOpportunity:
		summary.CandidatesProcessed = len(candidates)
	outerOpp:
		for i := range opportunities {
			if ctx.Err() != nil {
				break outerOpp
			}
			summary.OpportunitiesProcessed++
			for j := range candidates {
				if ctx.Err() != nil {
					break outerOpp
				}
				submit(pair{candidate: &candidates[j], opportunity: &opportunities[i]})
			}
		}
	default:
		summary.OpportunitiesProcessed = len(opportunities)
	outerCand:
		for i := range candidates {
			if ctx.Err() != nil {
				break outerCand
			}
			summary.CandidatesProcessed++
			for j := range opportunities {
				if ctx.Err() != nil {
					break outerCand
				}
				submit(pair{candidate: &candidates[i], opportunity: &opportunities[j]})
			}
		}
	}

	_ = g.Wait()

	summary.MatchesCreatedOrUpdated = int(persisted.Load())
	summary.PairsAttempted = int(attempted.Load())
	summary.Failures = int(failures.Load())
	summary.Duration = r.now().Sub(started)

	if err := ctx.Err(); err != nil {
		summary.Cancelled = true
		log.Warn("batch reconciliation cancelled",
			zap.Int("pairs_attempted", summary.PairsAttempted),
			zap.Error(err),
		)
		return summary, err
	}

	log.Info("finished batch reconciliation",
		zap.Int("matches", summary.MatchesCreatedOrUpdated),
		zap.Int("candidates", summary.CandidatesProcessed),
		zap.Int("opportunities", summary.OpportunitiesProcessed),
		zap.Int("pairs_attempted", summary.PairsAttempted),
		zap.Int("failures", summary.Failures),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// reconcilePair reports whether a match row was written.
func (r *Reconciler) reconcilePair(ctx context.Context, p pair, threshold int, dir Direction) (bool, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	match, err := r.matcher.MatchOne(ctx, p.candidate, p.opportunity, threshold, dir)
	if err != nil {
		return false, err
	}
	return match != nil, nil
}

func (r *Reconciler) activeCandidates(ctx context.Context) ([]models.Candidate, error) {
	all, err := r.candidates.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	active := make([]models.Candidate, 0, len(all))
	for _, c := range all {
		if c.IsInactive() {
			r.logger.Debug("skipping inactive candidate",
				zap.String("candidate_id", c.ID),
				zap.String("status", string(c.Status)),
			)
			continue
		}
		active = append(active, c)
	}
	return active, nil
}

func activeOnly(opportunities []models.Opportunity) []models.Opportunity {
	out := opportunities[:0:0]
	for _, o := range opportunities {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out
}
