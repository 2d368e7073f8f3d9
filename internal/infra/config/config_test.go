package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, DriverMemory, cfg.StorageDriver)
	require.Equal(t, 366, cfg.MaxRangeNights)
	require.Equal(t, 500*time.Millisecond, cfg.OutboxInterval)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/stayhost")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MAX_RANGE_NIGHTS", "90")
	t.Setenv("S3_USE_SSL", "yes")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.StorageDriver)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 90, cfg.MaxRangeNights)
	require.True(t, cfg.S3UseSSL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := FromEnv()
	require.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("OUTBOX_INTERVAL", "soon")
	_, err = FromEnv()
	require.ErrorContains(t, err, "OUTBOX_INTERVAL")

	t.Setenv("OUTBOX_INTERVAL", "")
	t.Setenv("MAX_RANGE_NIGHTS", "0")
	_, err = FromEnv()
	require.Error(t, err)
}
