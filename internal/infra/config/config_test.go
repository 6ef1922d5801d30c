package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("CALENDAR_STORE", "")
	t.Setenv("HOST_TIMEZONE", "UTC")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.StorageMode != StorageMemory || cfg.CalendarStore != CalendarStorePrimary {
		t.Fatalf("unexpected storage defaults %+v", cfg)
	}
	if cfg.LeadTimeCutoffHour != 18 || cfg.SnapshotRefreshInterval != 15*time.Second {
		t.Fatalf("unexpected calendar defaults %+v", cfg)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("unexpected retry backoff %v", cfg.RetryBackoff)
	}
	if !cfg.ScyllaEnsureSchema {
		t.Fatalf("schema creation should default on")
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"cutoff out of range": {"LEAD_TIME_CUTOFF_HOUR", "24"},
		"cutoff not a number": {"LEAD_TIME_CUTOFF_HOUR", "six"},
		"unknown timezone":    {"HOST_TIMEZONE", "Mars/Olympus"},
		"bad duration":        {"SNAPSHOT_REFRESH_INTERVAL", "soon"},
		"bad storage":         {"STORAGE_MODE", "postgres"},
		"mongo without uri":   {"STORAGE_MODE", "mongo"},
		"scylla without host": {"CALENDAR_STORE", "scylla"},
		"bad bool":            {"SCYLLA_ENSURE_SCHEMA", "maybe"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MONGO_URI", "")
			t.Setenv("SCYLLA_HOSTS", "")
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestFromEnvLists(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("HOST_TIMEZONE", "UTC")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
