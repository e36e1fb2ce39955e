package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

// Authenticator verifies username/password pairs against stored users.
type Authenticator struct {
	users storage.UserStore
}

// NewAuthenticator creates an authenticator backed by users.
func NewAuthenticator(users storage.UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the matching user and true, or false when the
// credentials do not match. An unknown username and a wrong password are
// indistinguishable. Errors are reserved for storage faults.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (models.User, bool, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			equalizeTiming(password)
			return models.User{}, false, nil
		}
		return models.User{}, false, fmt.Errorf("find user: %w", err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return models.User{}, false, nil
	}
	return user, true, nil
}
