package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// Realtime delivery
	BroadcastRetryDelay = 100 * time.Millisecond
	BroadcastChannel    = "chat:events"

	// WebSocket timings
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096

	// Auth
	TokenTTL = 7 * 24 * time.Hour

	// Caching
	UnreadCacheTTL = 30 * time.Second
)

// Config holds the environment-backed settings read at startup.
type Config struct {
	Port          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	FrontendURL   string
	TelegramToken string
	TelegramChat  string
}

// Load reads the configuration from environment variables, applying local
// development defaults where a variable is unset.
func Load() Config {
	return Config{
		Port: getenv("PORT", "5000"),
		PostgresDSN: fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getenv("DB_HOST", "localhost"),
			getenv("DB_USER", "user"),
			getenv("DB_PASSWORD", "password"),
			getenv("DB_NAME", "consultdb"),
			getenv("DB_PORT", "5432"),
		),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "your-secret-key"),
		FrontendURL:   getenv("FRONTEND_URL", "http://localhost:3000"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChat:  os.Getenv("TELEGRAM_OPS_CHAT_ID"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
