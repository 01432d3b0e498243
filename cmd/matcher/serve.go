package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recruit-matcher/internal/bot"
	"recruit-matcher/internal/bot/scheduler"
	"recruit-matcher/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reviewer Telegram bot and the reconcile schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		cfg, log := svc.cfg, svc.log

		if cfg.TelegramToken == "" {
			return fmt.Errorf("%s is required for serve", config.KeyTelegramToken)
		}
		if len(cfg.TelegramReviewers) == 0 {
			log.Warn("no reviewers configured; the bot will refuse everyone")
		}

		log.Info("starting recruit matcher",
			zap.String("version", version),
			zap.String("storage", cfg.StorageDriver),
			zap.String("schedule", cfg.Schedule),
		)

		deps := bot.Deps{Engine: svc.engine}
		if svc.cache != nil {
			deps.Summaries = svc.cache
			deps.RateCounter = svc.cache
		}

		log.Info("initializing Telegram bot...")
		tgBot, err := bot.New(cfg, deps, log)
		if err != nil {
			return err
		}

		sched := scheduler.New(svc.engine, tgBot.GetBot(), scheduler.Options{
			Spec:      cfg.Schedule,
			Reviewers: cfg.TelegramReviewers,
			Timeout:   cfg.LockTTL,
		}, log)

		tgBot.RegisterHandlers(sched)

		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		log.Info("bot is running, press Ctrl+C to stop")

		if err := tgBot.Start(ctx); err != nil {
			log.Error("bot stopped with error", zap.Error(err))
			return err
		}

		log.Info("shutting down gracefully...")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String(config.KeyTelegramToken, "", "Telegram bot token")
	serveCmd.Flags().String(config.KeySchedule, "", `cron schedule for reconciliation, e.g. "@every 6h"`)

	v.BindPFlag(config.KeyTelegramToken, serveCmd.Flags().Lookup(config.KeyTelegramToken))
	v.BindPFlag(config.KeySchedule, serveCmd.Flags().Lookup(config.KeySchedule))
}
