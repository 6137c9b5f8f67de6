package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	ResendAPIKey   string
	EmailFrom      string
	ClientURL      string
	AbstractAPIKey string

	AppEnv             string
	UseEmailReputation bool
}

// Load reads .env (if present) and then the process environment.
// DATABASE_URL and JWT_SECRET are required; everything else has a
// development default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		AbstractAPIKey:     os.Getenv("ABSTRACT_EMAIL_API_KEY"),
		EmailFrom:          getEnv("EMAIL_FROM", "General Hardware <onboarding@resend.dev>"),
		ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
		AppEnv:             getEnv("APP_ENV", "development"),
		UseEmailReputation: os.Getenv("USE_EMAIL_REPUTATION") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return cfg, nil
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
