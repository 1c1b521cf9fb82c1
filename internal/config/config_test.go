package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Draft.TTL)
	assert.Equal(t, "khata.documents", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KHATA_REDIS_ADDR", "redis:6379")
	t.Setenv("KHATA_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KHATA_DRAFT_TTL", "30m")
	t.Setenv("KHATA_DB_PORT", "6543")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Draft.TTL)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("KHATA_SERVER_ENVIRONMENT", "production")

	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("KHATA_JWT_SECRET", "s3cr3t")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.IsProduction())
}

func TestLoad_RejectsNonPositiveDraftTTL(t *testing.T) {
	t.Setenv("KHATA_DRAFT_TTL", "0s")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "khata", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/khata?sslmode=disable", db.DSN())
}
