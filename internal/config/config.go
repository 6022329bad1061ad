package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything loaded from the environment at startup. It is
// built once in main and passed to the components that need it.
type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Port            string
	AllowedOrigin   string
	Env             string
}

// Production reports whether the process runs with production cookie policy.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	cfg := Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "coffee-shop"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 15, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		Port:            getEnvOrDefault("PORT", "3000"),
		AllowedOrigin:   getEnvOrDefault("ALLOWED_ORIGIN", "*"),
		Env:             getEnvOrDefault("NODE_ENV", "development"),
	}

	if cfg.MongoURI == "" {
		log.Fatal("ENV MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("ENV JWT_SECRET is required")
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
