package bot

import (
	"context"
	"fmt"
	"time"

	"recruit-matcher/internal/bot/handlers"
	"recruit-matcher/internal/bot/middleware"
	"recruit-matcher/internal/config"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Deps are the services the reviewer bot talks to. RateCounter and
// Summaries are nil when Redis is not configured.
type Deps struct {
	Engine      handlers.Engine
	Summaries   handlers.SummaryStore
	RateCounter middleware.RateCounter
}

// Bot represents the reviewer Telegram bot
type Bot struct {
	bot    *tele.Bot
	deps   Deps
	config *config.Config
	logger *zap.Logger

	reconciler handlers.Reconciler
}

func New(cfg *config.Config, deps Deps, logger *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		deps:   deps,
		config: cfg,
		logger: logger,
	}

	bot.setupMiddleware()

	logger.Info("bot initialized successfully", zap.Int("reviewers", len(cfg.TelegramReviewers)))

	return bot, nil
}

func (b *Bot) setupMiddleware() {
	b.bot.Use(middleware.Recovery(b.logger))

	b.bot.Use(middleware.Logger(b.logger))

	b.bot.Use(middleware.Reviewers(b.config.IsReviewer, b.logger))

	if b.deps.RateCounter != nil {
		b.bot.Use(middleware.RateLimit(b.deps.RateCounter, middleware.MaxRequestsPerMinute, b.logger))
	}
}

// RegisterHandlers wires commands. The reconciler is passed separately
// because the scheduler needs the bot as its notifier first.
func (b *Bot) RegisterHandlers(reconciler handlers.Reconciler) {
	b.reconciler = reconciler

	ctx := &handlers.Context{
		Engine:           b.deps.Engine,
		Reconciler:       reconciler,
		Summaries:        b.deps.Summaries,
		Config:           b.config,
		Logger:           b.logger,
		ReconcileTimeout: b.config.LockTTL,
	}

	b.bot.Handle("/start", handlers.HandleStart(ctx))
	b.bot.Handle("/help", handlers.HandleHelp(ctx))
	b.bot.Handle("/candidate", handlers.HandleCandidate(ctx))
	b.bot.Handle("/opportunity", handlers.HandleOpportunity(ctx))
	b.bot.Handle("/matches", handlers.HandleMatches(ctx))
	b.bot.Handle("/setstatus", handlers.HandleSetStatus(ctx))
	b.bot.Handle("/reconcile", handlers.HandleReconcile(ctx))
	b.bot.Handle("/lastrun", handlers.HandleLastRun(ctx))

	b.bot.Handle(tele.OnText, handlers.HandleText(ctx))

	b.bot.Handle(tele.OnCallback, handlers.HandleCallback(ctx))

	b.logger.Info("handlers registered")
}

// Start polls until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if b.reconciler == nil {
		return fmt.Errorf("handlers not registered")
	}

	b.logger.Info("starting bot...")

	go b.bot.Start()

	<-ctx.Done()

	b.logger.Info("stopping bot...")
	b.bot.Stop()

	return nil
}

func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
