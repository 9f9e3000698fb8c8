package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holymotion/holymotion/internal/analytics"
	"github.com/holymotion/holymotion/internal/assistant"
	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/catalog"
	"github.com/holymotion/holymotion/internal/config"
	"github.com/holymotion/holymotion/internal/database"
	"github.com/holymotion/holymotion/internal/identity"
	"github.com/holymotion/holymotion/internal/profile"
	"github.com/holymotion/holymotion/internal/server"
	"github.com/holymotion/holymotion/internal/storage"
	"github.com/holymotion/holymotion/internal/store"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		st     store.Store
		pinger server.Pinger
	)

	switch {
	case cfg.DatabaseURL != "":
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		log.Println("database migrations applied")

		st = store.NewPostgres(db.Pool)
		pinger = db

	case cfg.RedisAddr != "":
		rs, err := store.NewRedis(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		st = rs
		pinger = rs
		log.Println("redis store ready")

	default:
		st = store.NewMemory()
		log.Println("no DATABASE_URL or REDIS_ADDR set, state is in-memory only")
	}

	var mediaStorage *storage.Storage
	if cfg.S3Endpoint != "" {
		s, err := storage.New(ctx, storage.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Region:         cfg.S3Region,
			MaxUploadBytes: cfg.MaxUploadBytes,
		})
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := s.EnsureBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		mediaStorage = s
		log.Println("media storage bucket ready")
	}

	geo, err := analytics.NewGeoResolver(cfg.GeoIPDBPath)
	if err != nil {
		log.Fatalf("geoip initialization failed: %v", err)
	}
	defer geo.Close()

	var aiClient *assistant.Client
	if cfg.AIEnabled {
		aiClient = assistant.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		log.Printf("assistant enabled (model: %s)", cfg.AIModel)
	}

	var webFS fs.FS
	if cfg.FrontendDir != "" {
		if _, err := os.Stat(cfg.FrontendDir); err == nil {
			webFS = os.DirFS(cfg.FrontendDir)
			log.Printf("serving frontend from %s", cfg.FrontendDir)
		} else {
			log.Printf("frontend dir %s not found, SPA serving disabled", cfg.FrontendDir)
		}
	}

	identitySvc := identity.NewService(st, cfg.OwnerEmail, cfg.OwnerPassword)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if notifier, ok := st.(store.Notifier); ok {
		go func() {
			if err := identitySvc.WatchSessions(watchCtx, notifier); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("session change subscription ended", "error", err)
			}
		}()
	}

	srv := server.New(server.Config{
		Pinger:           pinger,
		Identity:         identitySvc,
		Authz:            authz.NewService(st, cfg.OwnerEmail, cfg.OwnerCode),
		Catalog:          catalog.NewService(st),
		Profile:          profile.NewService(st),
		Analytics:        analytics.NewService(st, geo),
		Assistant:        aiClient,
		Storage:          mediaStorage,
		WebFS:            webFS,
		JWTSecret:        cfg.JWTSecret,
		BaseURL:          cfg.BaseURL,
		S3PublicEndpoint: cfg.S3PublicEndpoint,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("holymotion listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}
