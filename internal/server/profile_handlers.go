package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holymotion/holymotion/internal/catalog"
	"github.com/holymotion/holymotion/internal/httputil"
	"github.com/holymotion/holymotion/internal/profile"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	agg, err := s.profile.Get(r.Context(), emailFromContext(r.Context()))
	if err != nil {
		slog.Error("profile load failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agg)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	agg, err := s.profile.ToggleFavorite(r.Context(), emailFromContext(r.Context()), chi.URLParam(r, "movieID"))
	if err != nil {
		slog.Error("favorite toggle failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not update favorites")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agg)
}

type playbackRequest struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

func (s *Server) handleRecordPlayback(w http.ResponseWriter, r *http.Request) {
	var req playbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ElapsedSeconds < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "elapsedSeconds must not be negative")
		return
	}

	email := emailFromContext(r.Context())
	if err := s.profile.RecordPlayback(r.Context(), email, chi.URLParam(r, "movieID"), req.ElapsedSeconds); err != nil {
		slog.Error("playback record failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not record playback")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handlePlaybackPosition(w http.ResponseWriter, r *http.Request) {
	position, err := s.profile.PlaybackPosition(r.Context(), emailFromContext(r.Context()), chi.URLParam(r, "movieID"))
	if err != nil {
		slog.Error("playback position load failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load playback position")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]float64{"elapsedSeconds": position})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.profile.SetLanguage(r.Context(), emailFromContext(r.Context()), req.Language); err != nil {
		if errors.Is(err, profile.ErrUnsupportedLanguage) {
			httputil.WriteError(w, http.StatusBadRequest, "unsupported language")
			return
		}
		slog.Error("language update failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not update language")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

type historyEntryResponse struct {
	MovieID   string         `json:"movieId"`
	Timestamp int64          `json:"timestamp"`
	Movie     *catalog.Movie `json:"movie,omitempty"`
}

// handleHistory joins the watch history with the current catalog so deleted
// movies still show up as bare entries instead of breaking the page.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	agg, err := s.profile.Get(r.Context(), emailFromContext(r.Context()))
	if err != nil {
		slog.Error("profile load failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	movies, err := s.catalog.List(r.Context())
	if err != nil {
		slog.Error("catalog list failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	byID := make(map[string]catalog.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	entries := make([]historyEntryResponse, 0, len(agg.History))
	for _, h := range agg.History {
		entry := historyEntryResponse{MovieID: h.MovieID, Timestamp: h.Timestamp}
		if m, ok := byID[h.MovieID]; ok {
			movie := m
			entry.Movie = &movie
		}
		entries = append(entries, entry)
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
