package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hongminglow/group-accounts/internal/storage"
)

var _ storage.TokenBlacklist = (*Blacklist)(nil)

// Blacklist keeps revoked refresh-token IDs in Redis until the token would
// have expired on its own.
type Blacklist struct {
	client *goredis.Client
	logger zerolog.Logger
}

// NewBlacklist creates a Redis-backed token blacklist.
func NewBlacklist(client *goredis.Client, logger zerolog.Logger) *Blacklist {
	return &Blacklist{
		client: client,
		logger: logger.With().Str("component", "redis-blacklist").Logger(),
	}
}

func key(jti string) string {
	return fmt.Sprintf("blacklist:refresh:%s", jti)
}

// Blacklist stores jti with SETNX so concurrent revocations of the same token
// have exactly one winner; the loser gets storage.ErrAlreadyExists.
func (b *Blacklist) Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := b.client.SetNX(ctx, key(jti), strconv.FormatInt(userID, 10), ttl).Result()
	if err != nil {
		b.logger.Error().Err(err).Str("jti", jti).Msg("failed to blacklist token")
		return fmt.Errorf("blacklist token in redis: %w", err)
	}
	if !ok {
		return storage.ErrAlreadyExists
	}
	b.logger.Debug().Str("jti", jti).Int64("user_id", userID).Dur("ttl", ttl).Msg("token blacklisted")
	return nil
}

// IsBlacklisted reports whether jti has been revoked.
func (b *Blacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token in redis: %w", err)
	}
	return n > 0, nil
}
