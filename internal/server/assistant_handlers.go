package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/holymotion/holymotion/internal/assistant"
	"github.com/holymotion/holymotion/internal/httputil"
	"github.com/holymotion/holymotion/internal/validate"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		httputil.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	if msg := validate.ChatMessage(req.Message); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	movies, err := s.catalog.List(r.Context())
	if err != nil {
		slog.Error("catalog list failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load catalog")
		return
	}

	reply, err := s.assistant.Chat(r.Context(), assistant.CatalogContext(movies), req.Message)
	if err != nil {
		// The chat window always gets an answer; a broken upstream turns
		// into the canned in-character apology.
		slog.Error("assistant chat failed", "error", err)
		httputil.WriteJSON(w, http.StatusOK, chatResponse{Reply: assistant.FallbackReply})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type movieDetailsRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}
	if !perms.CanPublish && !perms.CanEdit {
		httputil.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req movieDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if msg := validate.Title(req.Title); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	details, err := s.assistant.GenerateMovieDetails(r.Context(), req.Title)
	if err != nil {
		if errors.Is(err, assistant.ErrService) {
			httputil.WriteError(w, http.StatusBadGateway, "assistant service unavailable")
			return
		}
		slog.Error("movie details generation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not generate details")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}
