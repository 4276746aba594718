package config

import (
	"os"
	"strconv"
	"time"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	// Logging
	LogLevel  string
	LogFormat string

	// Backend (home service) для сохранения и загрузки планировок
	BackendURL     string
	BackendTimeout time.Duration

	// Live-канал
	LiveURL   string
	LiveToken string

	// Redis для live-состояния; при пустом адресе хранение в памяти
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// SQLite home-сервиса
	DBPath    string
	AdminUser string
	AdminPass string

	// Адреса сервисов за gateway
	EditorURL string
	HomeURL   string

	CORSOrigins string
	DocsPath    string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:3002"),
		BackendTimeout: time.Duration(getEnvAsInt("BACKEND_TIMEOUT", 10)) * time.Second,

		LiveURL:   getEnv("LIVE_URL", ""),
		LiveToken: getEnv("LIVE_TOKEN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "live:"),

		DBPath:    getEnv("HOME_DB_PATH", "data/db/home.db"),
		AdminUser: getEnv("ADMIN_USER", "admin"),
		AdminPass: getEnv("ADMIN_PASSWORD", "admin"),

		EditorURL: getEnv("EDITOR_URL", "http://localhost:3001"),
		HomeURL:   getEnv("HOME_URL", "http://localhost:3002"),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		DocsPath:    getEnv("DOCS_PATH", "docs/openapi.yaml"),
	}
}

// PortOr возвращает порт по умолчанию сервиса, если PORT не задан.
func (c *Config) PortOr(def string) string {
	if os.Getenv("PORT") == "" {
		return def
	}
	return c.Port
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
