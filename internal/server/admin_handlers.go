package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/httputil"
)

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	grants, err := s.authz.List(r.Context(), emailFromContext(r.Context()))
	if err != nil {
		s.writeAdminError(w, err, "could not list admins")
		return
	}
	if grants == nil {
		grants = []authz.Grant{}
	}
	httputil.WriteJSON(w, http.StatusOK, grants)
}

type grantRequest struct {
	Email       string              `json:"email"`
	Permissions authz.PermissionSet `json:"permissions"`
	OwnerCode   string              `json:"ownerCode"`
}

func (s *Server) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		httputil.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	grant, err := s.authz.Grant(r.Context(), emailFromContext(r.Context()), req.Email, req.Permissions, req.OwnerCode)
	if err != nil {
		s.writeAdminError(w, err, "could not grant admin access")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, grant)
}

func (s *Server) handleRevokeAdmin(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := s.authz.Revoke(r.Context(), emailFromContext(r.Context()), email); err != nil {
		s.writeAdminError(w, err, "could not revoke admin access")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (s *Server) writeAdminError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, "owner access required")
	case errors.Is(err, authz.ErrInvalidCode):
		httputil.WriteError(w, http.StatusForbidden, "invalid owner code")
	default:
		slog.Error("admin operation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, fallback)
	}
}
