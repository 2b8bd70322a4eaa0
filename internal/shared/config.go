package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	GoogleClientID string

	CloudinaryCloud  string
	CloudinaryPreset string
	UploadWorkers    int

	SeedFile    string
	SeedWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/wanderwise?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		JWTSecret: env("JWT_SECRET", ""),
		TokenTTL:  time.Duration(atoi("TOKEN_TTL_MINUTES", 7*24*60)) * time.Minute,

		GoogleClientID: env("GOOGLE_CLIENT_ID", ""),

		CloudinaryCloud:  env("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryPreset: env("CLOUDINARY_UPLOAD_PRESET", ""),
		UploadWorkers:    atoi("UPLOAD_WORKERS", 4),

		SeedFile:    env("SEED_FILE", "seed/demo.json"),
		SeedWorkers: atoi("SEED_WORKERS", 8),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens will not survive restarts safely")
	}
	if c.GoogleClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID is empty; Google sign-in disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
