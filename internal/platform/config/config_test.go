package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Empty(t, cfg.QueryBackend)
	assert.Equal(t, 10*time.Second, cfg.FileSyncInterval)
	assert.Equal(t, "trust_records", cfg.PostgresTable)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.AdminDIDs)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TR_STORAGE_BACKEND", "csv")
	t.Setenv("TR_QUERY_BACKEND", "postgres")
	t.Setenv("FILE_STORAGE_PATH", "/var/lib/tr/records.csv")
	t.Setenv("FILE_STORAGE_UPDATE_INTERVAL_SEC", "30")
	t.Setenv("ADMIN_DIDS", "did:example:alice, did:example:bob,")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg := FromEnv()

	assert.Equal(t, "csv", cfg.StorageBackend)
	assert.Equal(t, "postgres", cfg.QueryBackend)
	assert.Equal(t, "/var/lib/tr/records.csv", cfg.FilePath)
	assert.Equal(t, 30*time.Second, cfg.FileSyncInterval)
	assert.Equal(t, []string{"did:example:alice", "did:example:bob"}, cfg.AdminDIDs)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestFromEnvRejectsBadInterval(t *testing.T) {
	t.Setenv("FILE_STORAGE_UPDATE_INTERVAL_SEC", "not-a-number")
	assert.Equal(t, 10*time.Second, FromEnv().FileSyncInterval)

	t.Setenv("FILE_STORAGE_UPDATE_INTERVAL_SEC", "-5")
	assert.Equal(t, 10*time.Second, FromEnv().FileSyncInterval)
}
