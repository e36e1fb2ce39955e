package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

// GroupExists reports whether a group with code exists.
func (s *Store) GroupExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check group %q: %w", code, err)
	}
	return exists, nil
}

// GetGroup fetches a group by code.
func (s *Store) GetGroup(ctx context.Context, code string) (models.Group, error) {
	var g models.Group
	err := s.pool.QueryRow(ctx, `SELECT code, name, admin_id FROM groups WHERE code = $1`, code).
		Scan(&g.Code, &g.Name, &g.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("get group %q: %w", code, err)
	}
	return g, nil
}
