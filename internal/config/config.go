package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// defaultJWTSecret is only acceptable for local development. Load refuses to
// start a production process with it.
const defaultJWTSecret = "change-me"

// ErrDefaultSecret is returned when a production process is started without an
// explicit JWT signing secret.
var ErrDefaultSecret = errors.New("JWT_SECRET must be set explicitly in production")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort         string
	MySQLDSN           string
	RedisAddr          string
	RedisDB            int
	RedisPass          string
	JWTSecret          string
	FrontendOrigin     string
	Env                string
	UploadMaxFiles     int
	UploadMaxFileBytes int64
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UploadBodyLimit returns the request body cap for the upload routes: a full
// batch at the per-file maximum plus headroom for multipart framing and form
// fields, in the size syntax echo's BodyLimit middleware accepts.
func (c *Config) UploadBodyLimit() string {
	total := int64(c.UploadMaxFiles)*c.UploadMaxFileBytes + (64 << 10)
	return strconv.FormatInt((total+1023)/1024, 10) + "K"
}

// Load builds Config from environment with sensible development defaults.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "3001"),
		MySQLDSN:           getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/bluecarbon?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:8080"),
		Env:                getEnv("APP_ENV", "development"),
		UploadMaxFiles:     getEnvInt("UPLOAD_MAX_FILES", 10),
		UploadMaxFileBytes: int64(getEnvInt("UPLOAD_MAX_FILE_MB", 10)) << 20,
	}

	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, ErrDefaultSecret
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
