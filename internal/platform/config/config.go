// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Config carries everything the server needs at boot. The sensitive-field
// list is read once here and is static for the process lifetime.
type Config struct {
	Addr string

	// StreamBackend selects the durable event store: "redis", "kafka",
	// "postgres" or "memory".
	StreamBackend string

	Redis    RedisConfig
	Kafka    KafkaConfig
	Postgres PostgresConfig

	// SettingsKey is the Redis key holding the platform settings document.
	SettingsKey string

	// EnterpriseEdition and ListenersUsers seed the in-memory settings
	// provider when no Redis cache is configured.
	EnterpriseEdition string
	ListenersUsers    []string

	// RedactedFields lists the context-data keys masked before emission.
	RedactedFields []string
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the Kafka stream backend.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PostgresConfig configures the Postgres stream backend.
type PostgresConfig struct {
	URL string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          getenv("VIGIL_ADDR", ":8080"),
		StreamBackend: getenv("VIGIL_STREAM_BACKEND", "memory"),
		Redis: RedisConfig{
			URL:          os.Getenv("VIGIL_REDIS_URL"),
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("VIGIL_KAFKA_BROKERS")),
			Topic:   os.Getenv("VIGIL_KAFKA_TOPIC"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("VIGIL_POSTGRES_URL"),
		},
		SettingsKey:       os.Getenv("VIGIL_SETTINGS_KEY"),
		EnterpriseEdition: os.Getenv("VIGIL_ENTERPRISE_EDITION"),
		ListenersUsers:    splitList(os.Getenv("VIGIL_ACTIVITY_LISTENERS")),
		RedactedFields:    splitList(getenv("VIGIL_REDACTED_FIELDS", "password,secret,token,api_key")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
