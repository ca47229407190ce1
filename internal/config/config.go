package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverBadger = "badger"
	StoreDriverSQL    = "sql"
)

// Cache drivers
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	RemoteEndpoint string
	RemoteTimezone string
	RemoteTimeout  time.Duration

	StoreDriver string
	BadgerPath  string
	SQLitePath  string
	Postgres    PostgresConfig

	CacheDriver string
	CacheTTL    time.Duration
	Redis       RedisConfig

	JWTSecret   string
	JWTTTL      time.Duration
	RosterFile  string
	SyncOnStart bool

	SyncInterval  time.Duration
	PushWorkers   int
	PushQueueSize int

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	DBName   string
	Password string
}

// Enabled reports whether a Postgres host was configured. Without one the
// service keeps its SQL tables in a local SQLite file.
func (p PostgresConfig) Enabled() bool { return p.Host != "" }

// DSN returns the postgres connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DBName)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%s", r.Host, r.Port) }

// Load reads the process environment, after merging an optional .env file.
func Load() Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return Config{
		AppEnv:   getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		RemoteEndpoint: getenv("REMOTE_ENDPOINT", ""),
		RemoteTimezone: getenv("REMOTE_TIMEZONE", "Europe/Madrid"),
		RemoteTimeout:  getenvDuration("REMOTE_TIMEOUT", 30*time.Second),

		StoreDriver: getenv("STORE_DRIVER", StoreDriverBadger),
		BadgerPath:  getenv("BADGER_PATH", "./data/badger"),
		SQLitePath:  getenv("SQLITE_PATH", "./data/logbook.db"),
		Postgres: PostgresConfig{
			Host:     os.Getenv("PG_HOST"),
			Port:     getenv("PG_PORT", "5432"),
			User:     os.Getenv("PG_USER"),
			DBName:   os.Getenv("PG_DB"),
			Password: os.Getenv("PG_PASSWORD"),
		},

		CacheDriver: getenv("CACHE_DRIVER", CacheDriverMemory),
		CacheTTL:    getenvDuration("CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},

		JWTSecret:   getenv("JWT_SECRET", "dev-secret"),
		JWTTTL:      getenvDuration("JWT_TTL", 12*time.Hour),
		RosterFile:  os.Getenv("ROSTER_FILE"),
		SyncOnStart: getenvBool("SYNC_ON_START", true),

		SyncInterval:  getenvDuration("SYNC_INTERVAL", 15*time.Minute),
		PushWorkers:   getenvInt("PUSH_WORKERS", 2),
		PushQueueSize: getenvInt("PUSH_QUEUE_SIZE", 256),

		CORSOrigins:    getenvList("CORS_ORIGINS", []string{"https://*", "http://localhost:5173"}),
		RateLimitRPS:   getenvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 20),
	}
}

// Location resolves RemoteTimezone, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.RemoteTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getenvList splits a comma separated variable, dropping blanks.
func getenvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
