package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/groups"
	"github.com/hongminglow/group-accounts/internal/middleware"
	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

type memoryStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]models.User
	groups    map[string]models.Group
	revoked   map[string]time.Time
	updateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:   map[int64]models.User{},
		groups:  map[string]models.Group{},
		revoked: map[string]time.Time{},
	}
}

func (s *memoryStore) addGroup(code string, adminID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[code] = models.Group{Code: code, Name: code, AdminID: adminID}
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memoryStore) get(id int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memoryStore) usernameTaken(username string, except int64) bool {
	for _, u := range s.users {
		if u.Username == username && u.ID != except {
			return true
		}
	}
	return false
}

func (s *memoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(user.Username, 0) {
		return models.User{}, storage.ErrAlreadyExists
	}
	if user.GroupCode != nil {
		if _, ok := s.groups[*user.GroupCode]; !ok {
			return models.User{}, storage.ErrMissingReference
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.Version = 1
	user.DateJoined = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *memoryStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return models.User{}, s.updateErr
	}
	current, ok := s.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if current.Version != user.Version {
		return models.User{}, storage.ErrConflict
	}
	if s.usernameTaken(user.Username, user.ID) {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.Version++
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryStore) GroupExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groups[code]
	return ok, nil
}

func (s *memoryStore) GetGroup(_ context.Context, code string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[code]
	if !ok {
		return models.Group{}, storage.ErrNotFound
	}
	return g, nil
}

func (s *memoryStore) Blacklist(_ context.Context, jti string, _ int64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[jti]; ok {
		return storage.ErrAlreadyExists
	}
	s.revoked[jti] = expiresAt
	return nil
}

func (s *memoryStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

// recordingNotifier captures events and, through onSend, lets tests observe
// store state at the moment of notification.
type recordingNotifier struct {
	events []groups.AdminLeaving
	err    error
	onSend func(groups.AdminLeaving)
}

func (n *recordingNotifier) AdminLeaving(_ context.Context, event groups.AdminLeaving) error {
	if n.onSend != nil {
		n.onSend(event)
	}
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

type testEnv struct {
	store    *memoryStore
	tokens   *auth.TokenManager
	notifier *recordingNotifier
	router   *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemoryStore()
	tokens := auth.NewTokenManager("test-secret", "group-accounts-test", 5*time.Minute, time.Hour, store)
	notifier := &recordingNotifier{}

	r := mux.NewRouter()
	r.Use(middleware.WithLogger, middleware.Authenticate(tokens))
	NewUserHandler(store, store, tokens, notifier).Register(r)
	NewSessionHandler(auth.NewAuthenticator(store), tokens).Register(r)
	NewHealthHandler(time.Now(), nil).Register(r)

	return &testEnv{store: store, tokens: tokens, notifier: notifier, router: r}
}

// seedUser stores a user with a hashed password and returns it with an access token.
func (e *testEnv) seedUser(t *testing.T, username, password string, staff bool, group string) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Username: username, PasswordHash: hash, IsStaff: staff}
	if group != "" {
		u.GroupCode = &group
	}
	created, err := e.store.CreateUser(context.Background(), u)
	require.NoError(t, err)
	pair, err := e.tokens.Issue(created)
	require.NoError(t, err)
	return created, pair.Access
}

func (e *testEnv) do(t *testing.T, method, path string, body any, access string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
