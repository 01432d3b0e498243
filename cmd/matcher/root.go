package main

import (
	"errors"
	"log"

	"recruit-matcher/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "recruit-matcher"

var (
	// Used for flags.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "recruit-matcher scores candidates against schools and job openings and keeps the matches reviewers work through",
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults(v)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "a config file (default is recruit-matcher.yaml in current directory, if present)")

	pf.String(config.KeyStorageDriver, "", "storage backend: postgres, sqlite or memory")
	pf.String(config.KeyPostgresDSN, "", "PostgreSQL connection string")
	pf.String(config.KeySQLitePath, "", "SQLite database file")
	pf.String(config.KeyRedisAddr, "", "Redis address; enables the suggestion cache and the reconcile lock")
	pf.String(config.KeyRedisPassword, "", "Redis password")
	pf.Int(config.KeyRedisDB, 0, "Redis database number")
	pf.Int(config.KeyThreshold, 0, "minimum score for a match to be stored")
	pf.String(config.KeyDirection, "", "reconcile direction: candidates or opportunities")
	pf.Int(config.KeyWorkers, 0, "concurrent pair workers during reconciliation")
	pf.Float64(config.KeyWritesPerSecond, 0, "pairs processed per second during reconciliation, 0 for unlimited")
	pf.String(config.KeyWeightsFile, "", "YAML file overriding the scoring weights")
	pf.StringP(config.KeyLogLevel, "l", "", "log level: debug, info, warn or error")
	pf.BoolP(config.KeyLogJSON, "j", false, "json format for logging")

	for _, key := range []string{
		config.KeyStorageDriver,
		config.KeyPostgresDSN,
		config.KeySQLitePath,
		config.KeyRedisAddr,
		config.KeyRedisPassword,
		config.KeyRedisDB,
		config.KeyThreshold,
		config.KeyDirection,
		config.KeyWorkers,
		config.KeyWritesPerSecond,
		config.KeyWeightsFile,
		config.KeyLogLevel,
		config.KeyLogJSON,
	} {
		if err := v.BindPFlag(key, pf.Lookup(key)); err != nil {
			log.Fatalf("binding flag %s: %v", key, err)
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("reading config %s: %v", cfgFile, err)
		}
		return
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)

	// The default file is optional; environment variables are enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("reading config: %v", err)
		}
	}
}
