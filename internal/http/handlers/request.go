package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/group-accounts/internal/http/respond"
	"github.com/hongminglow/group-accounts/internal/middleware"
	"github.com/hongminglow/group-accounts/internal/models/dto"
	"github.com/hongminglow/group-accounts/internal/permissions"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// validationFailed answers 400 with field errors, or a generic message when
// err is not field-shaped.
func validationFailed(w http.ResponseWriter, err error) {
	if fields, ok := dto.FieldErrors(err); ok {
		respond.Fields(w, fields)
		return
	}
	respond.Message(w, http.StatusBadRequest, err.Error())
}

// authorize applies the permission policy and writes 401/403 on denial.
func authorize(w http.ResponseWriter, r *http.Request, action permissions.Action, ownerID int64) bool {
	err := permissions.Check(middleware.PrincipalFrom(r.Context()), action, ownerID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, permissions.ErrUnauthenticated):
		respond.Message(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
	default:
		respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
	}
	return false
}

// authenticated writes 401 for anonymous callers. Object-level actions call it
// before the lookup so anonymous callers never learn which ids exist.
func authenticated(w http.ResponseWriter, r *http.Request) bool {
	if middleware.PrincipalFrom(r.Context()) == nil {
		respond.Message(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
		return false
	}
	return true
}

// handle registers f for path with and without a trailing slash.
func handle(r *mux.Router, path string, f http.Handler, methods ...string) {
	r.Handle(path, f).Methods(methods...)
	r.Handle(path+"/", f).Methods(methods...)
}
