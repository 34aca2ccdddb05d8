package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional external calendar authority. Empty means arithmetic
	// conversion only.
	HijriAPIBaseURL string
	HijriAPITimeout time.Duration

	SettlementChannel string
}

// Load reads configuration from the environment, optionally seeded from
// a .env file. DATABASE_URL wins over the individual DB_* parts.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		HijriAPIBaseURL:   os.Getenv("HIJRI_API_BASE_URL"),
		HijriAPITimeout:   getEnvDuration("HIJRI_API_TIMEOUT", 5*time.Second),
		SettlementChannel: getEnv("SETTLEMENT_CHANNEL", "qaza:settled"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "qaza"),
		)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
