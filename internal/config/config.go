package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	CloudinaryUploadFolder string

	LoginMaxAttempts int
	LoginWindow      time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "siakad_submissions"),
	}

	ttlMinutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "720"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %w", err)
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	cfg.LoginMaxAttempts, err = strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	cfg.LoginWindow, err = time.ParseDuration(getEnv("LOGIN_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
