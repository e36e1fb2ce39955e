package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hongminglow/group-accounts/internal/storage"
)

// Blacklist records jti as revoked. The insert is a no-op when the token is
// already present, which is reported as storage.ErrAlreadyExists.
func (s *Store) Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO blacklisted_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`, jti, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

// IsBlacklisted reports whether jti has been revoked.
func (s *Store) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blacklisted_tokens WHERE jti = $1)`, jti).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check blacklisted token: %w", err)
	}
	return found, nil
}

// FlushExpiredTokens deletes blacklist rows whose tokens have expired anyway.
func (s *Store) FlushExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blacklisted_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("flush expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
