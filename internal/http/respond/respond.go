package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Generic messages shared across handlers.
const (
	MsgInvalidJSON      = "Invalid JSON payload."
	MsgNotFound         = "Not found."
	MsgUnauthenticated  = "Authentication credentials were not provided."
	MsgForbidden        = "You do not have permission to perform this action."
	MsgUnexpected       = "An unexpected error occurred."
	MsgMethodNotAllowed = "Method not allowed."
)

// Detail is the body used for non-field errors and informational replies.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Message writes a {"detail": message} body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Detail{Detail: message})
}

// Fields writes a 400 with a field to message map.
func Fields(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, errs)
}

// Fault logs err against the request logger and answers 500 with a generic message.
func Fault(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled fault")
	Message(w, http.StatusInternalServerError, MsgUnexpected)
}
