package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/group-accounts/internal/models"
)

func newTestManager(bl *memoryBlacklist) *TokenManager {
	return NewTokenManager("test-secret", "group-accounts-test", 5*time.Minute, time.Hour, bl)
}

func TestIssueProducesPairForUser(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	pair, err := tm.Issue(models.User{ID: 42, Username: "bob", IsStaff: true})
	require.NoError(t, err)
	require.NotEmpty(t, pair.Refresh)
	require.NotEmpty(t, pair.Access)
	assert.NotEqual(t, pair.Refresh, pair.Access)

	claims, err := tm.ParseAccess(pair.Access)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "bob", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestParseAccessRejectsRefreshToken(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	pair, err := tm.Issue(models.User{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignatureAndGarbage(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	other := NewTokenManager("other-secret", "group-accounts-test", time.Minute, time.Hour, newMemoryBlacklist())
	pair, err := other.Issue(models.User{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	claims := Claims{TokenType: AccessToken, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "group-accounts-test",
		Subject:   "1",
		ID:        "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	bl := newMemoryBlacklist()
	tm := newTestManager(bl)
	ctx := context.Background()
	pair, err := tm.Issue(models.User{ID: 3, Username: "carol"})
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(ctx, pair.Refresh))
	assert.Len(t, bl.entries, 1)

	err = tm.Revoke(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "second revoke must fail as invalid token")

	err = tm.Revoke(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot be revoked as refresh tokens")

	err = tm.Revoke(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeExpiredToken(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	issuedAt := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issuedAt }
	pair, err := tm.Issue(models.User{ID: 3, Username: "carol"})
	require.NoError(t, err)

	tm.now = time.Now
	err = tm.Revoke(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeSurfacesStoreFaults(t *testing.T) {
	bl := newMemoryBlacklist()
	tm := newTestManager(bl)
	pair, err := tm.Issue(models.User{ID: 3, Username: "carol"})
	require.NoError(t, err)

	bl.err = errors.New("redis down")
	err = tm.Revoke(context.Background(), pair.Refresh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	tm := newTestManager(newMemoryBlacklist())
	ctx := context.Background()
	pair, err := tm.Issue(models.User{ID: 9, Username: "dave"})
	require.NoError(t, err)

	access, err := tm.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err := tm.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "dave", claims.Username)

	require.NoError(t, tm.Revoke(ctx, pair.Refresh))
	_, err = tm.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
