package server

import (
	"context"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/holymotion/holymotion/internal/analytics"
	"github.com/holymotion/holymotion/internal/assistant"
	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/catalog"
	"github.com/holymotion/holymotion/internal/httputil"
	"github.com/holymotion/holymotion/internal/identity"
	"github.com/holymotion/holymotion/internal/languages"
	"github.com/holymotion/holymotion/internal/metrics"
	"github.com/holymotion/holymotion/internal/profile"
	"github.com/holymotion/holymotion/internal/ratelimit"
	"github.com/holymotion/holymotion/internal/storage"
	"github.com/holymotion/holymotion/internal/validate"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Pinger           Pinger
	Identity         *identity.Service
	Authz            *authz.Service
	Catalog          *catalog.Service
	Profile          *profile.Service
	Analytics        *analytics.Service
	Assistant        *assistant.Client
	Storage          *storage.Storage
	WebFS            fs.FS
	JWTSecret        string
	BaseURL          string
	S3PublicEndpoint string
}

type Server struct {
	router    chi.Router
	pinger    Pinger
	identity  *identity.Service
	authz     *authz.Service
	catalog   *catalog.Service
	profile   *profile.Service
	analytics *analytics.Service
	assistant *assistant.Client
	storage   *storage.Storage
	webFS     fs.FS
	jwtSecret string
}

func New(cfg Config) *Server {
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required; set the environment variable")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)
	r.Use(metrics.Middleware)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
	}))

	s := &Server{
		router:    r,
		pinger:    cfg.Pinger,
		identity:  cfg.Identity,
		authz:     cfg.Authz,
		catalog:   cfg.Catalog,
		profile:   cfg.Profile,
		analytics: cfg.Analytics,
		assistant: cfg.Assistant,
		storage:   cfg.Storage,
		webFS:     cfg.WebFS,
		jwtSecret: cfg.JWTSecret,
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/languages", s.handleLanguages)
	s.router.Get("/api/limits", s.handleLimits)
	s.router.Handle("/metrics", metrics.Handler())

	authLimiter := ratelimit.NewLimiter(0.5, 5)
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth).Post("/logout", s.handleLogout)
		r.With(s.requireAuth).Get("/me", s.handleMe)
	})

	s.router.Route("/api/movies", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListMovies)
		r.Post("/", s.handleAddMovie)
		r.Get("/{id}", s.handleGetMovie)
		r.Patch("/{id}", s.handleUpdateMovie)
		r.Delete("/{id}", s.handleDeleteMovie)
		r.Post("/{id}/watch", s.handleRecordWatch)
		r.Get("/{id}/stats", s.handleWatchStats)
		if s.storage != nil {
			r.Post("/media/upload-url", s.handleMediaUploadURL)
			r.Get("/media/download-url", s.handleMediaDownloadURL)
		}
	})

	s.router.Route("/api/profile", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleGetProfile)
		r.Post("/favorites/{movieID}", s.handleToggleFavorite)
		r.Post("/playback/{movieID}", s.handleRecordPlayback)
		r.Get("/playback/{movieID}", s.handlePlaybackPosition)
		r.Put("/language", s.handleSetLanguage)
		r.Get("/history", s.handleHistory)
	})

	s.router.Route("/api/admins", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListAdmins)
		r.Post("/", s.handleGrantAdmin)
		r.Delete("/{email}", s.handleRevokeAdmin)
	})

	if s.assistant != nil {
		assistantLimiter := ratelimit.NewLimiter(1, 5)
		s.router.Route("/api/assistant", func(r chi.Router) {
			r.Use(assistantLimiter.Middleware)
			r.Use(s.requireAuth)
			r.Post("/chat", s.handleAssistantChat)
			r.Post("/movie-details", s.handleMovieDetails)
		})
	}

	if s.webFS != nil {
		spa := newSPAFileServer(s.webFS)
		s.router.NotFound(spa.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"store unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, languages.All())
}

func (s *Server) handleLimits(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
