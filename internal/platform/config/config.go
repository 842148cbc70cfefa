package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// PostgresConfig configures the relational store. An empty DSN selects the
// in-memory stores.
type PostgresConfig struct {
	DSN           string
	MigrationsURL string
}

// RedisConfig configures the advisory marker store. An empty URL selects the
// in-memory markers.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the domain event publisher. Empty brokers select the
// in-process worker sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LIFELINK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("LIFELINK_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	migrationsURL := os.Getenv("LIFELINK_MIGRATIONS_URL")
	if migrationsURL == "" {
		migrationsURL = "file://migrations"
	}

	topic := os.Getenv("LIFELINK_KAFKA_TOPIC")
	if topic == "" {
		topic = "lifelink.events"
	}

	var brokers []string
	if raw := os.Getenv("LIFELINK_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     "lifelink",
		JWTAudience:   "lifelink-api",
		Postgres: PostgresConfig{
			DSN:           os.Getenv("LIFELINK_POSTGRES_DSN"),
			MigrationsURL: migrationsURL,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("LIFELINK_REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
