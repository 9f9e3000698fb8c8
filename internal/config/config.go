// Package config loads every runtime setting from the environment.
package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port    string `env:"PORT" env-default:"8080"`
	BaseURL string `env:"BASE_URL" env-default:"http://localhost:8080"`

	// One of DATABASE_URL or REDIS_ADDR selects the store backend; with
	// neither set, state lives in process memory only.
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	JWTSecret string `env:"JWT_SECRET"`

	// Bootstrap owner account. The defaults reproduce the account the
	// frontend always shipped with; override them on any real deployment.
	OwnerEmail    string `env:"OWNER_EMAIL" env-default:"robloxura727@gmail.com"`
	OwnerPassword string `env:"OWNER_PASSWORD" env-default:"admin123"`
	OwnerCode     string `env:"OWNER_CODE" env-default:"13.01"`

	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3PublicEndpoint string `env:"S3_PUBLIC_ENDPOINT"`
	S3Bucket         string `env:"S3_BUCKET" env-default:"holymotion"`
	S3AccessKey      string `env:"S3_ACCESS_KEY"`
	S3SecretKey      string `env:"S3_SECRET_KEY"`
	S3Region         string `env:"S3_REGION" env-default:"eu-central-1"`
	MaxUploadBytes   int64  `env:"MAX_UPLOAD_BYTES" env-default:"2147483648"`

	FrontendDir string `env:"FRONTEND_DIR"`
	GeoIPDBPath string `env:"GEOIP_DB_PATH"`

	AIEnabled bool   `env:"AI_ENABLED" env-default:"false"`
	AIBaseURL string `env:"AI_BASE_URL"`
	AIAPIKey  string `env:"AI_API_KEY"`
	AIModel   string `env:"AI_MODEL" env-default:"mistral-small-latest"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	return cfg
}
