package auth

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	err     error
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{entries: map[string]time.Time{}}
}

func (m *memoryBlacklist) Blacklist(_ context.Context, jti string, _ int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.entries[jti]; ok {
		return storage.ErrAlreadyExists
	}
	m.entries[jti] = expiresAt
	return nil
}

func (m *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.entries[jti]
	return ok, nil
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockUserStore) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}
