package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recruit-matcher/internal/matching"

	"github.com/spf13/viper"
)

// Keys double as flag names; the environment form upper-cases them and
// replaces dashes with underscores (storage-driver -> STORAGE_DRIVER).
const (
	KeyStorageDriver   = "storage-driver"
	KeyPostgresDSN     = "postgres-dsn"
	KeySQLitePath      = "sqlite-path"
	KeyRedisAddr       = "redis-addr"
	KeyRedisPassword   = "redis-password"
	KeyRedisDB         = "redis-db"
	KeyTelegramToken   = "telegram-token"
	KeyReviewers       = "telegram-reviewers"
	KeyThreshold       = "persistence-threshold"
	KeyDirection       = "reconcile-direction"
	KeySchedule        = "reconcile-schedule"
	KeyWorkers         = "batch-workers"
	KeyWritesPerSecond = "batch-writes-per-second"
	KeyWeightsFile     = "weights-file"
	KeyMatchCacheTTL   = "match-cache-ttl"
	KeyLockFile        = "reconcile-lock-file"
	KeyLockTTL         = "reconcile-lock-ttl"
	KeyLogLevel        = "log-level"
	KeyLogJSON         = "log-json"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	// Storage
	StorageDriver string `mapstructure:"storage-driver"`
	PostgresDSN   string `mapstructure:"postgres-dsn"`
	SQLitePath    string `mapstructure:"sqlite-path"`

	// Redis is optional; an empty address disables caching and the distributed lock.
	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`

	// Telegram reviewer bot
	TelegramToken     string  `mapstructure:"telegram-token"`
	TelegramReviewers []int64 `mapstructure:"telegram-reviewers"`

	// Matching
	Threshold       int           `mapstructure:"persistence-threshold"`
	Direction       string        `mapstructure:"reconcile-direction"`
	Schedule        string        `mapstructure:"reconcile-schedule"`
	Workers         int           `mapstructure:"batch-workers"`
	WritesPerSecond float64       `mapstructure:"batch-writes-per-second"`
	WeightsFile     string        `mapstructure:"weights-file"`
	MatchCacheTTL   time.Duration `mapstructure:"match-cache-ttl"`
	LockFile        string        `mapstructure:"reconcile-lock-file"`
	LockTTL         time.Duration `mapstructure:"reconcile-lock-ttl"`

	// Logging
	LogLevel string `mapstructure:"log-level"`
	LogJSON  bool   `mapstructure:"log-json"`
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyStorageDriver, DriverPostgres)
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeySQLitePath, "matcher.db")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyTelegramToken, "")
	v.SetDefault(KeyReviewers, []int64{})
	v.SetDefault(KeyThreshold, 50)
	v.SetDefault(KeyDirection, matching.ForCandidate.String())
	v.SetDefault(KeySchedule, "")
	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyWritesPerSecond, 0)
	v.SetDefault(KeyWeightsFile, "")
	v.SetDefault(KeyMatchCacheTTL, 10*time.Minute)
	v.SetDefault(KeyLockFile, filepath.Join(os.TempDir(), "recruit-matcher.lock"))
	v.SetDefault(KeyLockTTL, 30*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
}

// Load reads the configuration from v, which must have been prepared with SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres storage driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite storage driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.StorageDriver)
	}

	if c.Threshold < matching.MinScore || c.Threshold > matching.MaxScore+1 {
		return fmt.Errorf("persistence threshold must be between %d and %d, got %d",
			matching.MinScore, matching.MaxScore+1, c.Threshold)
	}

	if _, ok := matching.ParseDirection(c.Direction); !ok {
		return fmt.Errorf("invalid reconcile direction: %q", c.Direction)
	}

	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("batch workers must be between 1 and 64, got %d", c.Workers)
	}

	if c.WritesPerSecond < 0 {
		return fmt.Errorf("batch writes per second must not be negative")
	}

	if c.MatchCacheTTL < 0 || c.LockTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// ReconcileDirection returns the parsed direction. Validate guarantees it parses.
func (c *Config) ReconcileDirection() matching.Direction {
	d, _ := matching.ParseDirection(c.Direction)
	return d
}

// Weights loads WeightsFile, or returns the default table when it is unset.
func (c *Config) Weights() (matching.Weights, error) {
	if c.WeightsFile == "" {
		return matching.DefaultWeights(), nil
	}
	return matching.LoadWeights(c.WeightsFile)
}

// IsReviewer reports whether the Telegram user may use the reviewer bot.
// An empty allow-list admits nobody.
func (c *Config) IsReviewer(userID int64) bool {
	for _, id := range c.TelegramReviewers {
		if id == userID {
			return true
		}
	}
	return false
}
