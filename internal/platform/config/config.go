package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "onboarding/pkg/platform/strings"
)

// Config is the full runtime configuration, built from the environment so main stays lean.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Analyzer AnalyzerConfig
	Kafka    KafkaConfig
	Sweeper  SweeperConfig
	Limits   RateLimitConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	SeedDemoData    bool
}

// DatabaseConfig selects the Postgres stores when URL is set.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the report memo backend. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ReportTTL    time.Duration
}

// AnalyzerConfig points at the document analyzer collaborator.
type AnalyzerConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	Concurrency      int
	FailureThreshold int
	Cooldown         time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string
	AuditTopic  string
	CreateTopic bool
}

// SweeperConfig drives the background expiration sweep.
type SweeperConfig struct {
	Enabled  bool
	Interval time.Duration
}

// RateLimitConfig throttles analyzer-backed endpoints per caller.
type RateLimitConfig struct {
	Disabled bool
	Requests int
	Window   time.Duration
}

// AuthConfig holds the HMAC key used to verify reviewer and admin tokens.
type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
}

// CatalogConfig points at an optional YAML document type catalog.
type CatalogConfig struct {
	Path string
}

// LogConfig selects level and handler format (json or text).
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables, falling back to development defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("ONBOARDING_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
			SeedDemoData:    getEnvBool("SEED_DEMO_DATA", false),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ReportTTL:    getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		},
		Analyzer: AnalyzerConfig{
			BaseURL:          getEnv("ANALYZER_URL", ""),
			APIKey:           getEnv("ANALYZER_API_KEY", ""),
			Timeout:          getEnvDuration("ANALYZER_TIMEOUT", 20*time.Second),
			Concurrency:      getEnvInt("ANALYZER_CONCURRENCY", 4),
			FailureThreshold: getEnvInt("ANALYZER_FAILURE_THRESHOLD", 5),
			Cooldown:         getEnvDuration("ANALYZER_COOLDOWN", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     pstrings.SplitList(getEnv("KAFKA_BROKERS", "")),
			AuditTopic:  getEnv("KAFKA_AUDIT_TOPIC", "onboarding.audit"),
			CreateTopic: getEnvBool("KAFKA_CREATE_TOPIC", true),
		},
		Sweeper: SweeperConfig{
			Enabled:  getEnvBool("SWEEPER_ENABLED", true),
			Interval: getEnvDuration("SWEEPER_INTERVAL", 24*time.Hour),
		},
		Limits: RateLimitConfig{
			Disabled: getEnvBool("DISABLE_RATE_LIMITING", false),
			Requests: getEnvInt("COHERENCE_RATE_LIMIT", 30),
			Window:   getEnvDuration("COHERENCE_RATE_WINDOW", time.Minute),
		},
		Auth: AuthConfig{
			// Development default; override in every deployed environment.
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "onboarding"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("DOCUMENT_CATALOG_PATH", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
