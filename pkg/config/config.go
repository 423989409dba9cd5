package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port               string   `env:"PORT"                 envDefault:"8080"`
	DatabaseURL        string   `env:"DATABASE_URL"         envDefault:"file:db.sqlite"`
	AppEnv             string   `env:"APP_ENV"              envDefault:"local"`
	BaseURL            string   `env:"BASE_URL"             envDefault:"http://localhost:8080"`
	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `env:"GOOGLE_REDIRECT_URL"  envDefault:"http://localhost:8080/auth/google/callback"`
	JWTSecret          string   `env:"JWT_SECRET"           envDefault:"secret"`
	FrontendURL        string   `env:"FRONTEND_URL"         envDefault:"http://localhost:8080/dashboard"`
	AllowedEmails      []string `env:"ALLOWED_EMAILS"       envSeparator:","`

	// ReservedUsernames extends the built-in reserved path segments.
	ReservedUsernames []string `env:"RESERVED_USERNAMES" envSeparator:","`

	// RedisURL enables the tenant page cache, e.g. redis://localhost:6379/0.
	RedisURL     string        `env:"REDIS_URL"`
	PageCacheTTL time.Duration `env:"PAGE_CACHE_TTL" envDefault:"5m"`

	// Avatar uploads are disabled unless AvatarBucket is set.
	AvatarBucket    string        `env:"AVATAR_BUCKET"`
	AvatarRegion    string        `env:"AVATAR_REGION"     envDefault:"us-east-1"`
	AvatarEndpoint  string        `env:"AVATAR_ENDPOINT"`
	AvatarAccessKey string        `env:"AVATAR_ACCESS_KEY"`
	AvatarSecretKey string        `env:"AVATAR_SECRET_KEY"`
	AvatarURLTTL    time.Duration `env:"AVATAR_URL_TTL"    envDefault:"15m"`
	AvatarMaxBytes  int64         `env:"AVATAR_MAX_BYTES"  envDefault:"5242880"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
