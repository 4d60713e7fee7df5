// Package config loads draftd settings from the environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/tierdraft/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds everything draftd needs at startup.
type Config struct {
	Port            string
	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration

	StoreDriver string
	Database    dbconfig.Config

	TierListDir string
	SeedFile    string

	NATSURL           string
	NATSMaxReconnects int
	NATSReconnectWait time.Duration

	SchedulerWorkers   int
	SchedulerQueueSize int
	PersistJobs        bool

	OutboxChannel   string
	OutboxBatchSize int
	OutboxFallback  time.Duration
	OutboxPing      time.Duration
	OutboxStale     time.Duration

	NotifyPrefix string
}

// Load reads .env when present and builds the config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv builds the config from environment variables with defaults.
func FromEnv() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", true),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		Database:    dbconfig.NewConfigFromEnv(),

		TierListDir: getEnv("TIERLIST_DIR", "config/tierlists"),
		SeedFile:    getEnv("SEED_FILE", ""),

		NATSURL:           getEnv("NATS_URL", ""),
		NATSMaxReconnects: getEnvAsInt("NATS_MAX_RECONNECTS", 10),
		NATSReconnectWait: getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),

		SchedulerWorkers:   getEnvAsInt("SCHEDULER_WORKERS", 4),
		SchedulerQueueSize: getEnvAsInt("SCHEDULER_QUEUE_SIZE", 64),
		PersistJobs:        getEnvAsBool("SCHEDULER_PERSIST_JOBS", true),

		OutboxChannel:   getEnv("OUTBOX_CHANNEL", "division_outbox_events"),
		OutboxBatchSize: getEnvAsInt("OUTBOX_BATCH_SIZE", 100),
		OutboxFallback:  getEnvAsDuration("OUTBOX_FALLBACK_INTERVAL", 30*time.Second),
		OutboxPing:      getEnvAsDuration("OUTBOX_PING_INTERVAL", 90*time.Second),
		OutboxStale:     getEnvAsDuration("OUTBOX_STALE_AFTER", 5*time.Minute),

		NotifyPrefix: getEnv("NOTIFY_SUBJECT_PREFIX", "tierdraft.notify"),
	}
}

// Validate rejects settings draftd cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SchedulerWorkers < 1 {
		return fmt.Errorf("SCHEDULER_WORKERS must be positive, got %d", c.SchedulerWorkers)
	}
	if c.OutboxBatchSize < 1 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

// Postgres reports whether durable storage is configured.
func (c Config) Postgres() bool {
	return c.StoreDriver == StorePostgres
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer env value")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-boolean env value")
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or bare seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration env value")
	return defaultValue
}
