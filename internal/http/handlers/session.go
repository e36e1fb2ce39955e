package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/http/respond"
	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/models/dto"
	"github.com/hongminglow/group-accounts/internal/permissions"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgNoRefreshToken     = "No refresh token provided."
	msgInvalidRefresh     = "Invalid refresh token."
	msgLoggedOut          = "Successfully logged out."
)

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.User, bool, error)
}

// SessionTokens is the token lifecycle the session endpoints need.
type SessionTokens interface {
	TokenIssuer
	Refresh(ctx context.Context, refresh string) (string, error)
	Revoke(ctx context.Context, refresh string) error
}

type SessionHandler struct {
	authenticator Authenticator
	tokens        SessionTokens
}

func NewSessionHandler(authenticator Authenticator, tokens SessionTokens) *SessionHandler {
	return &SessionHandler{authenticator: authenticator, tokens: tokens}
}

// Register attaches login, logout and token refresh routes to the router.
func (h *SessionHandler) Register(r *mux.Router) {
	handle(r, "/login", http.HandlerFunc(h.handleLogin), http.MethodPost)
	handle(r, "/logout", http.HandlerFunc(h.handleLogout), http.MethodPost)
	handle(r, "/token/refresh", http.HandlerFunc(h.handleRefresh), http.MethodPost)
}

func (h *SessionHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	user, ok, err := h.authenticator.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		loginAttemptsTotal.WithLabelValues("error").Inc()
		respond.Fault(w, r, err)
		return
	}
	if !ok {
		loginAttemptsTotal.WithLabelValues("failure").Inc()
		logger.Info().Str("username", req.Username).Msg("login rejected")
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	pair, err := h.tokens.Issue(user)
	if err != nil {
		loginAttemptsTotal.WithLabelValues("error").Inc()
		respond.Fault(w, r, err)
		return
	}
	loginAttemptsTotal.WithLabelValues("success").Inc()
	logger.Info().Int64("user_id", user.ID).Msg("login succeeded")
	respond.JSON(w, http.StatusOK, pair)
}

func (h *SessionHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, permissions.ActionLogout, 0) {
		return
	}
	var req dto.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		respond.Message(w, http.StatusBadRequest, msgNoRefreshToken)
		return
	}

	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respond.Message(w, http.StatusUnauthorized, msgInvalidRefresh)
			return
		}
		respond.Fault(w, r, err)
		return
	}
	logoutsTotal.Inc()
	zerolog.Ctx(r.Context()).Info().Msg("refresh token revoked")
	respond.Message(w, http.StatusResetContent, msgLoggedOut)
}

func (h *SessionHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return
	}
	token := strings.TrimSpace(req.Refresh)
	if token == "" {
		respond.Fields(w, map[string]string{"refresh": "This field is required."})
		return
	}

	access, err := h.tokens.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respond.Message(w, http.StatusUnauthorized, msgInvalidRefresh)
			return
		}
		respond.Fault(w, r, err)
		return
	}
	refreshesTotal.Inc()
	respond.JSON(w, http.StatusOK, dto.AccessResponse{Access: access})
}
