package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("Abcdefg1")
	require.NoError(t, err)
	stored := models.User{ID: 7, Username: "alice", PasswordHash: hash}

	store := new(mockUserStore)
	store.On("FindByUsername", mock.Anything, "alice").Return(stored, nil)
	store.On("FindByUsername", mock.Anything, "ghost").Return(models.User{}, storage.ErrNotFound)
	store.On("FindByUsername", mock.Anything, "broken").Return(models.User{}, errors.New("connection reset"))

	a := NewAuthenticator(store)
	ctx := context.Background()

	user, ok, err := a.Authenticate(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), user.ID)

	_, ok, err = a.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = a.Authenticate(ctx, "ghost", "Abcdefg1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = a.Authenticate(ctx, "broken", "Abcdefg1")
	assert.Error(t, err)
	assert.False(t, ok)

	store.AssertExpectations(t)
}
