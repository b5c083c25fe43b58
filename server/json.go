package server

import (
	"encoding/json"
	"net/http"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/auth"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError responds with the standard {"detail": "..."} error body.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps domain errors onto HTTP statuses, exposing the
// error's own message as the detail for client-caused failures and a
// generic message for everything else.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *auth.ValidationError
	if ierrors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case ierrors.Is(err, ierrors.ErrInvalidCredentials),
		ierrors.Is(err, ierrors.ErrAccountDeactivated),
		ierrors.Is(err, ierrors.ErrInvalidToken),
		ierrors.Is(err, ierrors.ErrTokenExpired),
		ierrors.Is(err, ierrors.ErrTokenRevoked),
		ierrors.Is(err, ierrors.ErrInvalidRefreshToken),
		ierrors.Is(err, ierrors.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case ierrors.Is(err, ierrors.ErrEmailTaken),
		ierrors.Is(err, ierrors.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case ierrors.Is(err, ierrors.ErrNotFound),
		ierrors.Is(err, ierrors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case ierrors.Is(err, ierrors.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case ierrors.Is(err, ierrors.ErrVersionConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
