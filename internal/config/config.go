package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr        string
	DefaultResults  int
	MaxResults      int
	ProviderTimeout time.Duration
	CacheTTL        time.Duration
	CacheCapacity   int
	KafkaBrokers    []string
	KafkaTopic      string
}

// Worker holds configuration for the Kafka -> Elasticsearch save pipeline.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	TagLimit       int
	TagMinLength   int
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the trash purge loop.
type Retention struct {
	Common
	Interval    time.Duration
	TrashMaxAge time.Duration
	BatchSize   int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:          loadCommon(),
		BindAddr:        getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultResults:  getInt("API_DEFAULT_RESULTS", 10),
		MaxResults:      getInt("API_MAX_RESULTS", 50),
		ProviderTimeout: getDuration("API_PROVIDER_TIMEOUT", "30s"),
		CacheTTL:        getDuration("API_CACHE_TTL", "5m"),
		CacheCapacity:   getInt("API_CACHE_CAPACITY", 1000),
		KafkaBrokers:    splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "vault_saves"),
	}

	if c.DefaultResults <= 0 {
		return nil, fmt.Errorf("API_DEFAULT_RESULTS must be positive")
	}
	if c.MaxResults <= 0 {
		return nil, fmt.Errorf("API_MAX_RESULTS must be positive")
	}
	if c.DefaultResults > c.MaxResults {
		return nil, fmt.Errorf("API_DEFAULT_RESULTS cannot exceed API_MAX_RESULTS")
	}
	if c.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("API_PROVIDER_TIMEOUT must be positive")
	}
	if c.CacheTTL <= 0 {
		return nil, fmt.Errorf("API_CACHE_TTL must be positive")
	}
	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("API_CACHE_CAPACITY must be positive")
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "vault_saves"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "vault-worker"),
		TagLimit:       getInt("WORKER_TAG_LIMIT", 6),
		TagMinLength:   getInt("WORKER_TAG_MIN_LEN", 4),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.TagLimit <= 0 {
		return nil, fmt.Errorf("WORKER_TAG_LIMIT must be positive")
	}
	if c.TagMinLength < 0 {
		return nil, fmt.Errorf("WORKER_TAG_MIN_LEN cannot be negative")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:      loadCommon(),
		Interval:    getDuration("RETENTION_INTERVAL", "24h"),
		TrashMaxAge: getDuration("RETENTION_TRASH_MAX_AGE", "720h"),
		BatchSize:   getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.TrashMaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_TRASH_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "vault"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
