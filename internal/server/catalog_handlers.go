package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/catalog"
	"github.com/holymotion/holymotion/internal/httputil"
	"github.com/holymotion/holymotion/internal/validate"
)

const mediaURLExpiry = 15 * time.Minute

type catalogResponse struct {
	Movies   []catalog.Movie `json:"movies"`
	Trending []catalog.Movie `json:"trending"`
	Genres   []string        `json:"genres"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.catalog.List(r.Context())
	if err != nil {
		slog.Error("catalog list failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load catalog")
		return
	}

	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		httputil.WriteJSON(w, http.StatusOK, catalog.Search(movies, query))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, catalogResponse{
		Movies:   ensureMovies(movies),
		Trending: ensureMovies(catalog.Trending(movies)),
		Genres:   ensureStrings(catalog.Genres(movies)),
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "movie not found")
			return
		}
		slog.Error("catalog get failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load movie")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, movie)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}

	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}

	movie, err := s.catalog.Add(r.Context(), perms, draft)
	if err != nil {
		s.writeCatalogError(w, err, "could not add movie")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, movie)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}

	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}

	movie, err := s.catalog.Update(r.Context(), perms, chi.URLParam(r, "id"), draft)
	if err != nil {
		s.writeCatalogError(w, err, "could not update movie")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, movie)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}

	if err := s.catalog.Delete(r.Context(), perms, chi.URLParam(r, "id")); err != nil {
		s.writeCatalogError(w, err, "could not delete movie")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRecordWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.catalog.Get(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "movie not found")
			return
		}
		slog.Error("catalog get failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load movie")
		return
	}

	if err := s.analytics.Record(r.Context(), id, r.UserAgent(), r.RemoteAddr); err != nil {
		slog.Error("watch event record failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not record watch event")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleWatchStats(w http.ResponseWriter, r *http.Request) {
	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}
	if !perms.CanPublish && !perms.CanEdit {
		httputil.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	events, err := s.analytics.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("watch stats failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load watch events")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

type uploadURLRequest struct {
	Kind          string `json:"kind"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

func (s *Server) handleMediaUploadURL(w http.ResponseWriter, r *http.Request) {
	perms, ok := s.resolvePerms(w, r)
	if !ok {
		return
	}
	if !perms.CanPublish && !perms.CanEdit {
		httputil.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind != "cover" && req.Kind != "video" {
		httputil.WriteError(w, http.StatusBadRequest, "kind must be cover or video")
		return
	}

	key := fmt.Sprintf("%s/%s", req.Kind, uuid.NewString())
	url, err := s.storage.GenerateUploadURL(r.Context(), key, req.ContentType, req.ContentLength, mediaURLExpiry)
	if err != nil {
		slog.Error("upload url generation failed", "error", err)
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, uploadURLResponse{UploadURL: url, Key: key})
}

func (s *Server) handleMediaDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		httputil.WriteError(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := s.storage.GenerateDownloadURL(r.Context(), key, mediaURLExpiry)
	if err != nil {
		slog.Error("download url generation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not generate download url")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"downloadUrl": url})
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (catalog.Draft, bool) {
	var draft catalog.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return catalog.Draft{}, false
	}

	checks := []string{
		validate.Title(draft.Title),
		validate.Description(draft.Description),
		validate.Genre(draft.Genre),
	}
	for _, name := range append(draft.Directors, draft.Producers...) {
		checks = append(checks, validate.PersonName(name))
	}
	for _, msg := range checks {
		if msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return catalog.Draft{}, false
		}
	}
	return draft, true
}

func (s *Server) resolvePerms(w http.ResponseWriter, r *http.Request) (authz.PermissionSet, bool) {
	perms, _, err := s.authz.Resolve(r.Context(), emailFromContext(r.Context()))
	if err != nil {
		slog.Error("permission resolution failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not resolve permissions")
		return authz.PermissionSet{}, false
	}
	return perms, true
}

func (s *Server) writeCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, "admin access required")
	case errors.Is(err, catalog.ErrIncompleteMovie):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "movie not found")
	default:
		slog.Error("catalog operation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

func ensureMovies(movies []catalog.Movie) []catalog.Movie {
	if movies == nil {
		return []catalog.Movie{}
	}
	return movies
}

func ensureStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
