package config_test

import (
	"testing"
	"time"

	"github.com/epluris/epluris/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "vault", cfg.ElasticsearchIndex)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 10, cfg.DefaultResults)
	require.Equal(t, 50, cfg.MaxResults)
	require.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, 1000, cfg.CacheCapacity)
	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "vault_saves", cfg.KafkaTopic)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_DEFAULT_RESULTS", "5")
	t.Setenv("API_MAX_RESULTS", "25")
	t.Setenv("API_PROVIDER_TIMEOUT", "10s")
	t.Setenv("API_CACHE_TTL", "90s")
	t.Setenv("API_CACHE_CAPACITY", "42")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "saves_custom")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 5, cfg.DefaultResults)
	require.Equal(t, 25, cfg.MaxResults)
	require.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	require.Equal(t, 90*time.Second, cfg.CacheTTL)
	require.Equal(t, 42, cfg.CacheCapacity)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-b:29093", cfg.KafkaBrokers[1])
	require.Equal(t, "saves_custom", cfg.KafkaTopic)
}

func TestLoadAPIRejectsDefaultAboveMax(t *testing.T) {
	t.Setenv("API_DEFAULT_RESULTS", "100")
	t.Setenv("API_MAX_RESULTS", "10")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "custom")
	t.Setenv("KAFKA_BROKERS", "broker:29092")
	t.Setenv("KAFKA_TOPIC", "saves")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_TAG_LIMIT", "12")
	t.Setenv("WORKER_TAG_MIN_LEN", "5")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "7")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "custom", cfg.ElasticsearchIndex)
	require.Equal(t, "saves", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 12, cfg.TagLimit)
	require.Equal(t, 5, cfg.TagMinLength)
	require.Equal(t, 7, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("RETENTION_INTERVAL", "12h")
	t.Setenv("RETENTION_TRASH_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.TrashMaxAge)
	require.Equal(t, 123, cfg.BatchSize)
}
