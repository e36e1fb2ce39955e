package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hongminglow/group-accounts/internal/config"
	"github.com/hongminglow/group-accounts/internal/storage/postgres"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "group-accounts",
	Short: "User accounts and sessions for group members",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel != "" {
			setLogging(logLevel)
		}
		return nil
	},
	SilenceUsage: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "log level (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, migrateCmd, flushTokensCmd)
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// configureLogging applies LOG_LEVEL unless --log was given.
func configureLogging(cfg config.Config) {
	if logLevel == "" {
		setLogging(cfg.LogLevel)
	}
}

// openStore loads config and connects to Postgres. Callers close the store.
func openStore(ctx context.Context) (config.Config, *postgres.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	configureLogging(cfg)
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}
