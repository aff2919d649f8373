// Package config reads process configuration from the environment so main
// stays lean. No globals: FromEnv returns an explicit struct that callers
// pass down.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is everything the server needs to come up.
type Config struct {
	// HTTPAddr is the listen address of the query facade.
	HTTPAddr string
	// LogFormat is "text" or "json" for the process logger.
	LogFormat string
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string

	// SelfDID is the identity responses and problem reports are sent from.
	SelfDID string
	// AdminDIDs is the allow-list for the admin protocol.
	AdminDIDs []string
	// AuditLogFormat is "text" or "json" for admin audit entries.
	AuditLogFormat string

	// StorageBackend selects the admin repository: memory, csv or redis.
	StorageBackend string
	// QueryBackend optionally selects a separate read backend (postgres);
	// empty means queries hit the admin repository.
	QueryBackend string

	FilePath         string
	FileSyncInterval time.Duration

	RedisURL string

	PostgresDSN   string
	PostgresTable string

	// KafkaBrokers empty means the in-memory transport (local runs).
	KafkaBrokers       []string
	KafkaInboundTopic  string
	KafkaOutboundTopic string
	KafkaGroup         string
}

// FromEnv builds a Config from environment variables, applying defaults
// suitable for a local run.
func FromEnv() Config {
	return Config{
		HTTPAddr:  envOr("TR_HTTP_ADDR", ":8080"),
		LogFormat: envOr("LOG_FORMAT", "text"),
		LogLevel:  envOr("LOG_LEVEL", "info"),

		SelfDID:        envOr("TR_DID", "did:web:trustregistry.dev"),
		AdminDIDs:      envList("ADMIN_DIDS"),
		AuditLogFormat: envOr("AUDIT_LOG_FORMAT", "text"),

		StorageBackend: envOr("TR_STORAGE_BACKEND", "memory"),
		QueryBackend:   os.Getenv("TR_QUERY_BACKEND"),

		FilePath:         envOr("FILE_STORAGE_PATH", "trust_records.csv"),
		FileSyncInterval: envSeconds("FILE_STORAGE_UPDATE_INTERVAL_SEC", 10*time.Second),

		RedisURL: envOr("REDIS_URL", "redis://localhost:6379"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		PostgresTable: envOr("PG_TABLE", "trust_records"),

		KafkaBrokers:       envList("KAFKA_BROKERS"),
		KafkaInboundTopic:  envOr("KAFKA_INBOUND_TOPIC", "didcomm.inbound"),
		KafkaOutboundTopic: envOr("KAFKA_OUTBOUND_TOPIC", "didcomm.outbound"),
		KafkaGroup:         envOr("KAFKA_GROUP", "trust-registry"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envList splits a comma-separated variable, trimming blanks.
func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
