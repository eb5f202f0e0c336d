package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string // CORS allow-list; empty allows any origin
	DevTokens      bool     // enables POST /dev/token
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type UploadConfig struct {
	MaxFileSize int64 // bytes
	MaxRows     int
}

// ImportConfig configures the import client used by the CLI: where the
// backend lives and how long a single request may take.
type ImportConfig struct {
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),
			DevTokens:      getEnv("ENABLE_DEV_TOKENS", "true") == "true",
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "myhometown"),
			Password: getEnv("DB_PASSWORD", "myhometown_dev_password"),
			DBName:   getEnv("DB_NAME", "myhometown"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Issuer:      getEnv("JWT_ISSUER", "myhometown"),
			ExpiryHours: getIntEnv("JWT_EXPIRY_HOURS", 24),
		},
		Upload: UploadConfig{
			MaxFileSize: int64(getIntEnv("UPLOAD_MAX_SIZE_MB", 10)) * 1024 * 1024,
			MaxRows:     getIntEnv("UPLOAD_MAX_ROWS", 5000),
		},
		Import: ImportConfig{
			APIBaseURL:     getEnv("IMPORT_API_BASE_URL", "http://localhost:8080"),
			APIToken:       getEnv("IMPORT_API_TOKEN", ""),
			RequestTimeout: getDurationEnv("IMPORT_REQUEST_TIMEOUT", 60*time.Second),
		},
	}
}

// DSN returns the Postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
