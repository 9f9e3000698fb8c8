package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/holymotion/holymotion/internal/httputil"
	"github.com/holymotion/holymotion/internal/identity"
)

type contextKey string

const emailKey contextKey = "email"

func emailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := validateToken(s.jwtSecret, tokenStr)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), emailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	IsOwner bool   `json:"isOwner"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		httputil.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	id, err := s.identity.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidPassword):
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrDuplicateUser):
			httputil.WriteError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("register failed", "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	s.writeSession(w, id.Email)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.identity.Login(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNoSuchAccount), errors.Is(err, identity.ErrWrongPassword):
			httputil.WriteError(w, http.StatusUnauthorized, err.Error())
		default:
			slog.Error("login failed", "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	s.writeSession(w, id.Email)
}

func (s *Server) writeSession(w http.ResponseWriter, email string) {
	token, err := generateAccessToken(s.jwtSecret, email)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:   token,
		Email:   email,
		IsOwner: s.authz.IsOwner(email),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.Logout(r.Context()); err != nil {
		slog.Error("logout failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type meResponse struct {
	Email      string `json:"email"`
	IsOwner    bool   `json:"isOwner"`
	IsAdmin    bool   `json:"isAdmin"`
	CanPublish bool   `json:"canPublish"`
	CanEdit    bool   `json:"canEdit"`
	CanDelete  bool   `json:"canDelete"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())

	perms, isAdmin, err := s.authz.Resolve(r.Context(), email)
	if err != nil {
		slog.Error("permission resolution failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load account")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, meResponse{
		Email:      email,
		IsOwner:    s.authz.IsOwner(email),
		IsAdmin:    isAdmin,
		CanPublish: perms.CanPublish,
		CanEdit:    perms.CanEdit,
		CanDelete:  perms.CanDelete,
	})
}
