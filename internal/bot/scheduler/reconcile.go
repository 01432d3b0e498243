// Package scheduler runs batch reconciliation on a cron schedule and tells
// reviewers how it went.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"recruit-matcher/internal/bot/utils"
	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type Runner interface {
	RunBatchReconciliation(ctx context.Context) (*models.ReconcileSummary, error)
}

// Notifier is satisfied by *tele.Bot.
type Notifier interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Options struct {
	// Spec is a standard cron expression or a descriptor such as "@every 6h".
	// Empty disables the schedule; RunOnce still works.
	Spec      string
	Reviewers []int64
	Timeout   time.Duration
}

type Reconciler struct {
	cron     *cron.Cron
	runner   Runner
	notifier Notifier
	opts     Options
	logger   *zap.Logger

	mu      sync.Mutex
	started bool
}

func New(runner Runner, notifier Notifier, opts Options, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Hour
	}

	cl := cronLogger{s: logger.Named("cron").Sugar()}

	return &Reconciler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:   runner,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Start registers the job and starts the cron loop. The job stops picking up
// new runs once ctx is done.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.opts.Spec == "" {
		r.logger.Info("reconcile schedule not configured")
		return nil
	}

	_, err := r.cron.AddFunc(r.opts.Spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("scheduled reconciliation failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", r.opts.Spec, err)
	}

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()

	r.cron.Start()
	r.logger.Info("reconcile scheduler started", zap.String("spec", r.opts.Spec))

	return nil
}

// Stop halts the schedule and waits for a running job to return.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	started := r.started
	r.started = false
	r.mu.Unlock()

	if !started {
		return
	}

	<-r.cron.Stop().Done()
	r.logger.Info("reconcile scheduler stopped")
}

// RunOnce runs a reconciliation and sends the summary to every reviewer.
// A run refused because another one holds the lock is not an error.
func (r *Reconciler) RunOnce(ctx context.Context) (*models.ReconcileSummary, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	summary, err := r.runner.RunBatchReconciliation(runCtx)
	if errors.Is(err, matching.ErrReconcileInProgress) {
		r.logger.Info("reconciliation already running elsewhere, skipping")
		return nil, nil
	}

	if summary != nil {
		r.notify(summary)
	}

	return summary, err
}

func (r *Reconciler) notify(summary *models.ReconcileSummary) {
	if r.notifier == nil || len(r.opts.Reviewers) == 0 {
		return
	}

	msg := utils.FormatSummary(summary)
	for _, id := range r.opts.Reviewers {
		if _, err := r.notifier.Send(&tele.User{ID: id}, msg, tele.ModeMarkdownV2); err != nil {
			r.logger.Error("failed to send reconcile summary",
				zap.Int64("reviewer_id", id),
				zap.Error(err),
			)
		}
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
