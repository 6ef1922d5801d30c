package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	CalendarStorePrimary = "primary"
	CalendarStoreScylla  = "scylla"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	StorageMode   string
	CalendarStore string

	MongoURI string
	MongoDB  string

	KafkaBrokers     []string
	KafkaTopicPrefix string
	KafkaGroupID     string

	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	ScyllaHosts             []string
	ScyllaKeyspace          string
	ScyllaUsername          string
	ScyllaPassword          string
	ScyllaConsistency       string
	ScyllaTimeout           time.Duration
	ScyllaEnsureSchema      bool
	ScyllaReplicationFactor int

	HostTimezone            *time.Location
	LeadTimeCutoffHour      int
	SnapshotRefreshInterval time.Duration
	ListingsFixtures        string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StorageMode:       strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		CalendarStore:     strings.ToLower(getEnv("CALENDAR_STORE", CalendarStorePrimary)),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "staybook"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "staybook-calendar"),
		ScyllaHosts:       splitList(getEnv("SCYLLA_HOSTS", "")),
		ScyllaKeyspace:    getEnv("SCYLLA_KEYSPACE", "staybook"),
		ScyllaUsername:    os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword:    os.Getenv("SCYLLA_PASSWORD"),
		ScyllaConsistency: strings.ToUpper(getEnv("SCYLLA_CONSISTENCY", "QUORUM")),
		ListingsFixtures:  os.Getenv("LISTINGS_FIXTURES"),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.ScyllaTimeout, err = parseDurationEnv("SCYLLA_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ScyllaEnsureSchema, err = parseBoolEnv("SCYLLA_ENSURE_SCHEMA", true); err != nil {
		return Config{}, err
	}
	if cfg.ScyllaReplicationFactor, err = parseIntEnv("SCYLLA_REPLICATION_FACTOR", 1); err != nil {
		return Config{}, err
	}
	if cfg.SnapshotRefreshInterval, err = parseDurationEnv("SNAPSHOT_REFRESH_INTERVAL", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LeadTimeCutoffHour, err = parseIntEnv("LEAD_TIME_CUTOFF_HOUR", 18); err != nil {
		return Config{}, err
	}
	if cfg.LeadTimeCutoffHour < 0 || cfg.LeadTimeCutoffHour > 23 {
		return Config{}, fmt.Errorf("LEAD_TIME_CUTOFF_HOUR must be within 0..23, got %d", cfg.LeadTimeCutoffHour)
	}

	tz := getEnv("HOST_TIMEZONE", "Asia/Manila")
	if cfg.HostTimezone, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid HOST_TIMEZONE %q: %w", tz, err)
	}

	for _, raw := range splitList(getEnv("RETRY_BACKOFF", "1s,5s,30s")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
	switch cfg.CalendarStore {
	case CalendarStorePrimary:
	case CalendarStoreScylla:
		if len(cfg.ScyllaHosts) == 0 {
			return Config{}, fmt.Errorf("SCYLLA_HOSTS is required when CALENDAR_STORE=scylla")
		}
	default:
		return Config{}, fmt.Errorf("unknown CALENDAR_STORE %q", cfg.CalendarStore)
	}
	return cfg, nil
}

// Dev reports whether human-friendly logging should be used.
func (c Config) Dev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
