package main

import (
	"context"
	"fmt"

	"recruit-matcher/internal/config"
	"recruit-matcher/internal/logger"
	"recruit-matcher/internal/matching"
	"recruit-matcher/internal/storage/memory"
	"recruit-matcher/internal/storage/postgres"
	"recruit-matcher/internal/storage/redis"
	"recruit-matcher/internal/storage/sqlite"

	"go.uber.org/zap"
)

// services holds everything a command needs, built from the loaded config.
type services struct {
	cfg    *config.Config
	log    *zap.Logger
	store  matching.Store
	cache  *redis.Cache
	engine *matching.Engine

	closers []func() error
}

func newServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	rt := &services{cfg: cfg, log: log}

	if err := rt.openStore(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	if cfg.RedisAddr != "" {
		cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		rt.cache = cache.WithSuggestionTTL(cfg.MatchCacheTTL)
		rt.closers = append(rt.closers, cache.Close)
	}

	weights, err := cfg.Weights()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load weights: %w", err)
	}

	opts := matching.Options{
		Weights:         weights,
		Threshold:       cfg.Threshold,
		Direction:       cfg.ReconcileDirection(),
		Workers:         cfg.Workers,
		WritesPerSecond: cfg.WritesPerSecond,
		LockTTL:         cfg.LockTTL,
	}
	if rt.cache != nil {
		opts.Cache = rt.cache
		opts.Locker = rt.cache
	}

	rt.engine = matching.NewEngine(rt.store, opts, log)

	log.Debug("services ready",
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("redis", rt.cache != nil),
		zap.Int("threshold", cfg.Threshold),
	)

	return rt, nil
}

func (rt *services) openStore(ctx context.Context) error {
	switch rt.cfg.StorageDriver {
	case config.DriverPostgres:
		rt.log.Info("connecting to PostgreSQL...")
		store, err := postgres.New(rt.cfg.PostgresDSN, rt.log)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		rt.closers = append(rt.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		rt.store = store
	case config.DriverSQLite:
		store, err := sqlite.Open(rt.cfg.SQLitePath, rt.log)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		rt.closers = append(rt.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		rt.store = store
	case config.DriverMemory:
		rt.log.Warn("using the in-memory store; nothing survives this process")
		rt.store = memory.New()
	default:
		return fmt.Errorf("unknown storage driver: %q", rt.cfg.StorageDriver)
	}

	return nil
}

// Close releases connections in reverse order of opening.
func (rt *services) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.log.Warn("failed to close resource", zap.Error(err))
		}
	}
	rt.closers = nil
	_ = rt.log.Sync()
}
