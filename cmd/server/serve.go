package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/config"
	"github.com/hongminglow/group-accounts/internal/groups"
	"github.com/hongminglow/group-accounts/internal/server"
	"github.com/hongminglow/group-accounts/internal/storage"
	"github.com/hongminglow/group-accounts/internal/storage/postgres"
	"github.com/hongminglow/group-accounts/internal/storage/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.RunMigrations {
			if err := store.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		blacklist, closeBlacklist, err := buildBlacklist(ctx, cfg, store)
		if err != nil {
			return err
		}
		defer closeBlacklist()

		notifier, err := buildNotifier(cfg)
		if err != nil {
			return err
		}
		defer notifier.Close()

		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL, blacklist)
		srv := server.New(cfg, server.Deps{
			Users:         store,
			Groups:        store,
			Tokens:        tokens,
			Authenticator: auth.NewAuthenticator(store),
			Notifier:      notifier,
			DB:            store,
		})

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.HTTPAddress()).Msg("group-accounts listening")
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("graceful shutdown error")
		}
		return nil
	},
}

func buildBlacklist(ctx context.Context, cfg config.Config, store *postgres.Store) (storage.TokenBlacklist, func(), error) {
	if cfg.BlacklistBackend != config.BlacklistRedis {
		return store, func() {}, nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return redis.NewBlacklist(client, log.Logger), func() { _ = client.Close() }, nil
}

func buildNotifier(cfg config.Config) (groups.Notifier, error) {
	switch cfg.NotifierBackend {
	case config.NotifierRabbitMQ:
		return groups.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQQueue, log.Logger)
	case config.NotifierPulsar:
		return groups.NewPulsarNotifier(cfg.PulsarURL, cfg.PulsarTopic, log.Logger)
	default:
		return groups.NewLogNotifier(log.Logger), nil
	}
}
