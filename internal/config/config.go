package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application settings loaded from environment variables
type Config struct {
	Port         string
	JWTSecret    string
	TokenExpiry  time.Duration
	CookieName   string
	CORSOrigin   string
	SecureCookie bool

	AdminName     string
	AdminEmail    string
	AdminPhone    string
	AdminPassword string
}

// Load reads the application configuration from environment variables.
// JWT_SECRET is required; everything else has a sensible default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set in environment")
	}

	expirySeconds := int64(3600)
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid JWT_EXPIRES_IN %q", v)
		}
		expirySeconds = parsed
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     secret,
		TokenExpiry:   time.Duration(expirySeconds) * time.Second,
		CookieName:    getEnv("COOKIE_NAME", "access_token"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
		SecureCookie:  os.Getenv("APP_ENV") == "production",
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPhone:    getEnv("ADMIN_PHONE", "+595000000000"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
