package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/gocql/gocql"

	"staybook/internal/infra/config"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewSession connects to the configured keyspace, creating the keyspace and
// calendar tables first when SCYLLA_ENSURE_SCHEMA is on.
func NewSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(cfg.ScyllaKeyspace) {
		return nil, fmt.Errorf("invalid keyspace name: %s", cfg.ScyllaKeyspace)
	}
	consistency, err := gocql.ParseConsistencyWrapper(cfg.ScyllaConsistency)
	if err != nil {
		return nil, fmt.Errorf("scylla consistency: %w", err)
	}

	if cfg.ScyllaEnsureSchema {
		baseSession, err := newCluster(cfg, consistency, "").CreateSession()
		if err != nil {
			return nil, fmt.Errorf("connect to scylla: %w", err)
		}
		err = ensureKeyspace(ctx, baseSession, cfg)
		baseSession.Close()
		if err != nil {
			return nil, err
		}
	}

	session, err := newCluster(cfg, consistency, cfg.ScyllaKeyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", cfg.ScyllaKeyspace, err)
	}
	if cfg.ScyllaEnsureSchema {
		if err := ensureTables(ctx, session, cfg.ScyllaKeyspace); err != nil {
			session.Close()
			return nil, err
		}
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", cfg.ScyllaHosts, "keyspace", cfg.ScyllaKeyspace)
	}
	return session, nil
}

func newCluster(cfg config.Config, consistency gocql.Consistency, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Timeout = cfg.ScyllaTimeout
	cluster.ConnectTimeout = cfg.ScyllaTimeout
	cluster.Consistency = consistency
	cluster.Keyspace = keyspace
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}
	return cluster
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, cfg config.Config) error {
	rf := cfg.ScyllaReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		cfg.ScyllaKeyspace, rf,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}
	return nil
}

var tables = []struct {
	name string
	cql  string
}{
	{"blocked_ranges", `
CREATE TABLE IF NOT EXISTS %s.blocked_ranges (
	scope_key text,
	id text,
	listing_id text,
	scope text,
	start_date text,
	end_date text,
	reason text,
	created_at timestamp,
	PRIMARY KEY (scope_key, id)
);`},
	{"blocked_ranges_by_id", `
CREATE TABLE IF NOT EXISTS %s.blocked_ranges_by_id (
	id text PRIMARY KEY,
	scope_key text
);`},
	{"price_rules", `
CREATE TABLE IF NOT EXISTS %s.price_rules (
	listing_id text,
	seq timeuuid,
	id text,
	start_date text,
	end_date text,
	nightly_price bigint,
	created_at timestamp,
	PRIMARY KEY (listing_id, seq)
) WITH CLUSTERING ORDER BY (seq ASC);`},
	{"price_rules_by_id", `
CREATE TABLE IF NOT EXISTS %s.price_rules_by_id (
	id text PRIMARY KEY,
	listing_id text,
	seq timeuuid
);`},
}

func ensureTables(ctx context.Context, session *gocql.Session, keyspace string) error {
	for _, t := range tables {
		if err := session.Query(fmt.Sprintf(t.cql, keyspace)).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	return nil
}
