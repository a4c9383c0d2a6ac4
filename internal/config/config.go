package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the engine's explicit context object: every store handle and
// tunable a component needs is injected from here. There is no ambient
// settings singleton.
type Config struct {
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// SnapshotKey is the shared hash all processes read and write.
	SnapshotKey string

	// HistoryWindowDays bounds the snapshot's trailing day-score window.
	// The entitlement collaborator may lower it for free-tier users.
	HistoryWindowDays int

	// RefreshInterval is the timeline scheduler's pull interval.
	RefreshInterval time.Duration

	// MaxFreezeDaysPerMonth comes from the entitlement collaborator.
	MaxFreezeDaysPerMonth int
}

// Load reads configuration from the environment, seeded by a .env file when
// one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SnapshotKey:       getEnv("SNAPSHOT_KEY", "activity:snapshot"),
		HistoryWindowDays: getEnvInt("HISTORY_WINDOW_DAYS", 35),
		RefreshInterval:   getEnvDuration("REFRESH_INTERVAL", time.Hour),

		MaxFreezeDaysPerMonth: getEnvInt("MAX_FREEZE_DAYS_PER_MONTH", 2),
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
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
