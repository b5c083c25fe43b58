package server

import (
	"net/http"

	"github.com/aibanker/go-aibanker/api"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/internal/utils"
	"github.com/aibanker/go-aibanker/users"
)

// isManager reports whether the caller can see accounts beyond their own.
func isManager(r *http.Request) bool {
	role := users.RoleType(roleFromContext(r.Context()))
	return role == users.RoleAdmin || role == users.RoleManager
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.repos.Users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	user.FirstName = utils.ValueOr(req.FirstName, user.FirstName)
	user.LastName = utils.ValueOr(req.LastName, user.LastName)
	user.CompanyName = utils.ValueOr(req.CompanyName, user.CompanyName)
	user.JobTitle = utils.ValueOr(req.JobTitle, user.JobTitle)
	user.Phone = utils.ValueOr(req.Phone, user.Phone)

	if err := s.repos.Users.Update(r.Context(), user); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !isManager(r) {
		s.writeServiceError(w, ierrors.ErrAccessDenied)
		return
	}

	role := users.RoleType(r.URL.Query().Get("role"))
	if role != "" && !users.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "invalid role filter")
		return
	}
	status := users.StatusType(r.URL.Query().Get("status"))
	if status != "" && !users.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	offset, limit := listParams(r)
	if role == "" && status == "" {
		userList, err := s.repos.Users.List(r.Context(), offset, limit)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userList)
		return
	}

	// Filters apply before pagination, so fetch everything first.
	userList, err := s.repos.Users.List(r.Context(), 0, 0)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filtered := make([]*users.User, 0, len(userList))
	for _, u := range userList {
		if role != "" && u.Role != role {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		filtered = append(filtered, u)
	}

	if offset >= len(filtered) {
		filtered = filtered[:0]
	} else {
		filtered = filtered[offset:]
	}
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeServiceError(w, ierrors.ErrUserNotFound)
		return
	}
	if !isManager(r) && id != userIDFromContext(r.Context()) {
		s.writeServiceError(w, ierrors.ErrAccessDenied)
		return
	}

	user, err := s.repos.Users.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		s.writeServiceError(w, ierrors.ErrAccessDenied)
		return
	}

	id, ok := pathID(r)
	if !ok {
		s.writeServiceError(w, ierrors.ErrUserNotFound)
		return
	}
	if id == userIDFromContext(r.Context()) {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := s.repos.Users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	// The account is gone; its refresh token must not outlive it.
	if stored, err := s.repos.RefreshTokens.GetByUserID(r.Context(), id); err == nil {
		_ = s.repos.RefreshTokens.Delete(r.Context(), stored.Token)
	}
	writeJSON(w, http.StatusNoContent, nil)
}
