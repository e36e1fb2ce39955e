package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

// ErrInvalidToken covers malformed, expired, mistyped and revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenType distinguishes refresh tokens from access tokens.
type TokenType string

const (
	RefreshToken TokenType = "refresh"
	AccessToken  TokenType = "access"
)

// Claims is the JWT payload shared by both token types.
type Claims struct {
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenPair is a refresh token and the access token minted from it.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// TokenManager issues, refreshes and revokes signed JWTs.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  storage.TokenBlacklist
	now        func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, lifetimes and blacklist.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration, blacklist storage.TokenBlacklist) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
		now:        time.Now,
	}
}

// Issue mints a refresh token for user and an access token derived from it.
func (t *TokenManager) Issue(user models.User) (TokenPair, error) {
	now := t.now()
	refreshClaims := Claims{
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		TokenType: RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
			ID:        uuid.NewString(),
		},
	}
	refresh, err := t.sign(refreshClaims)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	access, err := t.sign(t.accessFrom(refreshClaims, now))
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// Refresh mints a new access token from a refresh token that has not been revoked.
func (t *TokenManager) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := t.parse(refresh, RefreshToken)
	if err != nil {
		return "", err
	}
	revoked, err := t.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return "", fmt.Errorf("%w: blacklisted", ErrInvalidToken)
	}
	access, err := t.sign(t.accessFrom(claims, t.now()))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Revoke blacklists a refresh token. It fails with ErrInvalidToken when the
// token does not verify or was already revoked.
func (t *TokenManager) Revoke(ctx context.Context, refresh string) error {
	claims, err := t.parse(refresh, RefreshToken)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	err = t.blacklist.Blacklist(ctx, claims.ID, userID, claims.ExpiresAt.Time)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("%w: already blacklisted", ErrInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}
	return nil
}

// ParseAccess verifies an access token and returns its claims.
func (t *TokenManager) ParseAccess(access string) (Claims, error) {
	return t.parse(access, AccessToken)
}

func (t *TokenManager) accessFrom(refresh Claims, now time.Time) Claims {
	access := refresh
	access.TokenType = AccessToken
	access.ID = uuid.NewString()
	access.IssuedAt = jwt.NewNumericDate(now)
	access.NotBefore = jwt.NewNumericDate(now)
	access.ExpiresAt = jwt.NewNumericDate(now.Add(t.accessTTL))
	return access
}

func (t *TokenManager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenManager) parse(raw string, want TokenType) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != want {
		return Claims{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims, nil
}
