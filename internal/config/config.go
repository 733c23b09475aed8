package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends for the directory snapshot.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Directory    DirectoryConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Provisioning ProvisioningConfig
	Sync         SyncConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DirectoryConfig selects where the provisioned user list is persisted.
type DirectoryConfig struct {
	Store      string
	StorageKey string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ProvisioningConfig tunes the simulated provisioning step.
type ProvisioningConfig struct {
	DelayMillis  int
	Workers      int
	QueueSize    int
	DefaultTitle string
}

// SyncConfig tunes the simulated connect and sync actions.
type SyncConfig struct {
	DelayMillis int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
	FeedSize   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "directory-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Directory: DirectoryConfig{
			Store:      strings.ToLower(getEnv("DIRECTORY_STORE", StoreMemory)),
			StorageKey: getEnv("DIRECTORY_STORAGE_KEY", "internal-directory-users"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Provisioning: ProvisioningConfig{
			DelayMillis:  getEnvAsInt("PROVISIONING_DELAY_MS", 3000),
			Workers:      getEnvAsInt("PROVISIONING_WORKERS", 2),
			QueueSize:    getEnvAsInt("PROVISIONING_QUEUE_SIZE", 64),
			DefaultTitle: getEnv("PROVISIONING_DEFAULT_TITLE", "New Employee"),
		},
		Sync: SyncConfig{
			DelayMillis: getEnvAsInt("SYNC_DELAY_MS", 2000),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			FeedSize:   getEnvAsInt("NOTIFICATION_FEED_SIZE", 50),
		},
	}

	switch cfg.Directory.Store {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return nil, fmt.Errorf("invalid DIRECTORY_STORE %q", cfg.Directory.Store)
	}
	if cfg.Directory.Store == StorePostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DIRECTORY_STORE=postgres requires POSTGRES_DSN")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Delay returns the simulated provisioning latency.
func (p ProvisioningConfig) Delay() time.Duration {
	return millis(p.DelayMillis)
}

// Delay returns the simulated connect/sync latency.
func (s SyncConfig) Delay() time.Duration {
	return millis(s.DelayMillis)
}

func millis(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
