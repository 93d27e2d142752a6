package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Значения по умолчанию
const (
	defaultPort        = "8080"
	defaultSQLitePath  = "bakery.db"
	defaultCORSOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	defaultJWTSecret   = "bakery-secret-key-change-in-production"
	defaultPageSize    = 5
)

// Config содержит настройки приложения, прочитанные из окружения
type Config struct {
	Port          string
	DatabaseURL   string // PostgreSQL; если пусто - используется SQLite
	SQLitePath    string
	JWTSecret     string
	CORSOrigins   string
	LogLevel      string
	AdminEmail    string
	AdminPassword string
	Location      *time.Location // часовой пояс для определения "сегодня"
	PageSize      int
}

// Load загружает .env (если есть) и читает конфигурацию из переменных окружения
func Load() *Config {
	// .env необязателен, поэтому ошибку игнорируем
	_ = godotenv.Load()

	cfg := &Config{
		Port:          envOrDefault("PORT", defaultPort),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    envOrDefault("SQLITE_PATH", defaultSQLitePath),
		JWTSecret:     envOrDefault("JWT_SECRET", defaultJWTSecret),
		CORSOrigins:   envOrDefault("CORS_ORIGINS", defaultCORSOrigins),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		AdminEmail:    strings.ToLower(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Location:      time.Local,
		PageSize:      intFromEnv("PAGE_SIZE", defaultPageSize),
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Location = loc
		} else {
			GetLogger().WithField("timezone", tz).Warn("unknown TIMEZONE, falling back to local time")
		}
	}

	return cfg
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
