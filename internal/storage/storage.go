package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/group-accounts/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrMissingReference indicates a write pointed at a record that does not exist.
var ErrMissingReference = errors.New("referenced record does not exist")

// ErrConflict indicates the record changed since it was read.
var ErrConflict = errors.New("record modified concurrently")

// UserStore captures persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser saves user if its Version still matches the stored row and
	// returns the row with the bumped version. A stale version yields ErrConflict.
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
}

// GroupStore reads groups owned by the group-management service.
type GroupStore interface {
	GroupExists(ctx context.Context, code string) (bool, error)
	GetGroup(ctx context.Context, code string) (models.Group, error)
}

// TokenBlacklist records revoked refresh tokens by their ID.
type TokenBlacklist interface {
	// Blacklist marks jti revoked until expiresAt. Revoking the same jti twice
	// yields ErrAlreadyExists.
	Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
