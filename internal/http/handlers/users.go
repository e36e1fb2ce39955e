package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/groups"
	"github.com/hongminglow/group-accounts/internal/http/respond"
	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/models/dto"
	"github.com/hongminglow/group-accounts/internal/permissions"
	"github.com/hongminglow/group-accounts/internal/storage"
)

const (
	msgGroupMissing  = "Group does not exist."
	msgUsernameTaken = "A user with that username already exists."
	msgConflict      = "User was modified concurrently; retry."
)

// TokenIssuer mints a token pair for a freshly registered user.
type TokenIssuer interface {
	Issue(user models.User) (auth.TokenPair, error)
}

// UserHandler serves the user resource: registration, profile reads and updates.
type UserHandler struct {
	users      storage.UserStore
	groupStore storage.GroupStore
	tokens     TokenIssuer
	notifier   groups.Notifier
	now        func() time.Time
}

// NewUserHandler constructs the handler.
func NewUserHandler(users storage.UserStore, groupStore storage.GroupStore, tokens TokenIssuer, notifier groups.Notifier) *UserHandler {
	return &UserHandler{
		users:      users,
		groupStore: groupStore,
		tokens:     tokens,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Register attaches user routes to the router.
func (h *UserHandler) Register(r *mux.Router) {
	handle(r, "/users", http.HandlerFunc(h.handleList), http.MethodGet)
	handle(r, "/users", http.HandlerFunc(h.handleCreate), http.MethodPost)
	handle(r, "/users/{id:[0-9]+}", http.HandlerFunc(h.handleRetrieve), http.MethodGet)
	handle(r, "/users/{id:[0-9]+}", http.HandlerFunc(h.handleUpdate), http.MethodPut, http.MethodPatch)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, permissions.ActionList, 0) {
		return
	}
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respond.Fault(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, permissions.ActionCreate, 0) {
		return
	}
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	errs := map[string]string{}
	if !auth.ValidPassword(req.Password) {
		errs["password"] = auth.PasswordPolicyMessage
	}
	if req.GroupID != "" {
		ok, err := h.groupStore.GroupExists(ctx, req.GroupID)
		if err != nil {
			respond.Fault(w, r, err)
			return
		}
		if !ok {
			errs["group_id"] = msgGroupMissing
		}
	}
	if len(errs) > 0 {
		respond.Fields(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Fault(w, r, err)
		return
	}
	user := models.User{Username: req.Username, PasswordHash: hash}
	if req.GroupID != "" {
		code := req.GroupID
		user.GroupCode = &code
	}

	created, err := h.users.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Fields(w, map[string]string{"username": msgUsernameTaken})
		case errors.Is(err, storage.ErrMissingReference):
			respond.Fields(w, map[string]string{"group_id": msgGroupMissing})
		default:
			respond.Fault(w, r, err)
		}
		return
	}

	pair, err := h.tokens.Issue(created)
	if err != nil {
		respond.Fault(w, r, err)
		return
	}
	registrationsTotal.Inc()
	logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	respond.JSON(w, http.StatusCreated, dto.CreateUserResponse{User: created, Token: pair})
}

func (h *UserHandler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	if !authenticated(w, r) {
		return
	}
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if !authorize(w, r, permissions.ActionRetrieve, user.ID) {
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	partial := r.Method == http.MethodPatch

	if !authenticated(w, r) {
		return
	}
	current, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if !authorize(w, r, permissions.ActionUpdate, current.ID) {
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, respond.MsgInvalidJSON)
		return
	}
	if err := req.Validate(partial); err != nil {
		validationFailed(w, err)
		return
	}

	errs := map[string]string{}
	newPassword := ""
	if req.Password != nil {
		newPassword = *req.Password
	}
	if newPassword != "" && !auth.ValidPassword(newPassword) {
		errs["password"] = auth.PasswordPolicyMessage
	}
	nextCode := req.GroupID.Code()
	if req.GroupID.Set && nextCode != "" {
		exists, err := h.groupStore.GroupExists(ctx, nextCode)
		if err != nil {
			respond.Fault(w, r, err)
			return
		}
		if !exists {
			errs["group_id"] = msgGroupMissing
		}
	}
	if len(errs) > 0 {
		respond.Fields(w, errs)
		return
	}

	next := current
	if req.Username != nil {
		next.Username = *req.Username
	}
	if newPassword != "" {
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			respond.Fault(w, r, err)
			return
		}
		next.PasswordHash = hash
	}
	if req.GroupID.Set {
		next.GroupCode = nil
		if nextCode != "" {
			next.GroupCode = &nextCode
		}
	}

	if current.InGroup() && req.GroupID.Set && nextCode != *current.GroupCode {
		if err := h.notifyIfAdminLeaving(ctx, current, next.GroupCode); err != nil {
			respond.Fault(w, r, err)
			return
		}
	}

	saved, err := h.users.UpdateUser(ctx, next)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			respond.Message(w, http.StatusConflict, msgConflict)
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Fields(w, map[string]string{"username": msgUsernameTaken})
		case errors.Is(err, storage.ErrMissingReference):
			respond.Fields(w, map[string]string{"group_id": msgGroupMissing})
		case errors.Is(err, storage.ErrNotFound):
			respond.Message(w, http.StatusNotFound, respond.MsgNotFound)
		default:
			respond.Fault(w, r, err)
		}
		return
	}
	logger.Info().Int64("user_id", saved.ID).Msg("user updated")
	respond.JSON(w, http.StatusOK, saved)
}

// notifyIfAdminLeaving sends a reassignment request when user administers
// the group they are leaving. It runs before the membership change is saved.
func (h *UserHandler) notifyIfAdminLeaving(ctx context.Context, user models.User, nextCode *string) error {
	group, err := h.groupStore.GetGroup(ctx, *user.GroupCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if !group.IsAdmin(user.ID) {
		return nil
	}
	event := groups.AdminLeaving{
		UserID:        user.ID,
		Username:      user.Username,
		GroupCode:     group.Code,
		NextGroupCode: nextCode,
		OccurredAt:    h.now().UTC(),
	}
	if err := h.notifier.AdminLeaving(ctx, event); err != nil {
		return err
	}
	adminReassignmentsTotal.Inc()
	return nil
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Message(w, http.StatusNotFound, respond.MsgNotFound)
		return models.User{}, false
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, respond.MsgNotFound)
		} else {
			respond.Fault(w, r, err)
		}
		return models.User{}, false
	}
	return user, true
}
