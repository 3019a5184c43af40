// Package config loads the immutable service configuration from the
// environment exactly once at startup. Business logic receives Config by
// injection and never reads the environment directly.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

type Config struct {
	Environment string

	Server        ServerConfig
	Database      DatabaseConfig
	Quota         QuotaConfig
	Cache         CacheConfig
	Compose       ComposeConfig
	Generator     GeneratorConfig
	Observability ObservabilityConfig

	AdminToken string
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	DSN    string
}

// QuotaConfig enumerates the quota guard knobs. CountCacheHits and
// FailOpen are deliberate configuration choices, not fallbacks: the
// first decides whether a cache hit still consumes a quota unit, the
// second whether an unreachable quota store admits or rejects requests.
type QuotaConfig struct {
	DailyLimit     int
	MonthlyLimit   int
	PremiumBypass  bool
	CountCacheHits bool
	FailOpen       bool

	// Burst limiting is a per-identity flood guard in front of the
	// daily/monthly counters, not part of them.
	BurstLimit  int
	BurstWindow time.Duration
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration

	// HotTTL bounds the in-process read-through layer; the shared
	// store remains the source of truth.
	HotTTL time.Duration
}

// ComposeConfig carries the segmentation defaults applied when a request
// leaves an option unset.
type ComposeConfig struct {
	MaxLength        int
	WarningThreshold int
	AddNumbers       bool
	NumberFormat     string
}

type GeneratorConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string

	TracingEnabled   bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads the environment into a Config. Called once by the fx module.
func Load() Config {
	return Config{
		Environment: envString("THREADLY_ENV", "development"),
		Server: ServerConfig{
			Addr: envString("THREADLY_HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Driver: envString("THREADLY_DB_DRIVER", "sqlite"),
			DSN:    envString("THREADLY_DB_DSN", "file:threadly.db?cache=shared"),
		},
		Quota: QuotaConfig{
			DailyLimit:     envInt("THREADLY_QUOTA_DAILY_LIMIT", 10),
			MonthlyLimit:   envInt("THREADLY_QUOTA_MONTHLY_LIMIT", 100),
			PremiumBypass:  envBool("THREADLY_QUOTA_PREMIUM_BYPASS", true),
			CountCacheHits: envBool("THREADLY_QUOTA_COUNT_CACHE_HITS", true),
			FailOpen:       envBool("THREADLY_QUOTA_FAIL_OPEN", false),
			BurstLimit:     envInt("THREADLY_QUOTA_BURST_LIMIT", 10),
			BurstWindow:    envDuration("THREADLY_QUOTA_BURST_WINDOW", time.Minute),
		},
		Cache: CacheConfig{
			Enabled: envBool("THREADLY_CACHE_ENABLED", true),
			TTL:     envDuration("THREADLY_CACHE_TTL", 24*time.Hour),
			HotTTL:  envDuration("THREADLY_CACHE_HOT_TTL", time.Minute),
		},
		Compose: ComposeConfig{
			MaxLength:        envInt("THREADLY_MAX_LENGTH", 280),
			WarningThreshold: envInt("THREADLY_WARNING_THRESHOLD", 260),
			AddNumbers:       envBool("THREADLY_ADD_NUMBERS", true),
			NumberFormat:     envString("THREADLY_NUMBER_FORMAT", "{current}/{total} "),
		},
		Generator: GeneratorConfig{
			Provider: envString("THREADLY_GENERATOR_PROVIDER", "openai"),
			APIKey:   envString("OPENAI_API_KEY", ""),
			Model:    envString("THREADLY_GENERATOR_MODEL", "gpt-4o-mini"),
			BaseURL:  envString("THREADLY_GENERATOR_BASE_URL", ""),
			Timeout:  envDuration("THREADLY_GENERATOR_TIMEOUT", 30*time.Second),
		},
		Observability: ObservabilityConfig{
			ServiceName:      envString("THREADLY_SERVICE_NAME", "threadly"),
			ServiceVersion:   envString("THREADLY_SERVICE_VERSION", "dev"),
			TracingEnabled:   envBool("THREADLY_TRACING_ENABLED", false),
			ExporterEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    envFloat("THREADLY_TRACING_SAMPLING_RATIO", 0.1),
		},
		AdminToken: envString("THREADLY_ADMIN_TOKEN", ""),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
