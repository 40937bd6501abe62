// Package config loads process configuration from the environment, reading
// a local .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Config aggregates application configuration values.
type Config struct {
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	Store    StoreConfig
	Firebase FirebaseConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

// StoreConfig selects the profile storage backend.
type StoreConfig struct {
	Backend string
}

// FirebaseConfig locates the Firestore project.
type FirebaseConfig struct {
	ProjectID                    string
	GoogleApplicationCredentials string
}

// PostgresConfig holds the storage connection string and schema options.
type PostgresConfig struct {
	DSN         string
	AutoMigrate bool
}

// RedisConfig enables the profile cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig enables lifecycle events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// PublishTimeout bounds how long a mutation waits on its event.
	PublishTimeout time.Duration
}

// TracingConfig enables OTLP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// Load reads .env (if present) and then the environment. Values already set
// in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Firebase: FirebaseConfig{
			ProjectID: firstNonEmpty(
				os.Getenv("FIREBASE_PROJECT_ID"),
				os.Getenv("GOOGLE_CLOUD_PROJECT"),
			),
			GoogleApplicationCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "profiles.events"),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "profile-directory"),
		},
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.Postgres.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.TTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.Kafka.PublishTimeout, err = getDuration("KAFKA_PUBLISH_TIMEOUT", 2*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.Tracing.SampleRatio, err = getFloat("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		errs = append(errs, err)
	}

	cfg.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", ""))
	switch cfg.Store.Backend {
	case "", "auto":
		cfg.Store.Backend = cfg.defaultBackend()
	case BackendFirestore:
		if cfg.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("STORE_BACKEND=firestore requires FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT"))
		}
	case BackendPostgres:
		if cfg.Postgres.DSN == "" {
			errs = append(errs, errors.New("STORE_BACKEND=postgres requires DATABASE_URL"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) defaultBackend() string {
	switch {
	case c.Firebase.ProjectID != "":
		return BackendFirestore
	case c.Postgres.DSN != "":
		return BackendPostgres
	default:
		return BackendMemory
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
