package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig
	Log      LogConfig
	DB       DBConfig
	Redis    RedisConfig
	GRPC     GRPCConfig
	HTTP     HTTPConfig
	NATS     NATSConfig
	Auth     AuthConfig
	Matching MatchingConfig
}

type AppConfig struct {
	ENV string
}

type LogConfig struct {
	Level     string
	Format    string
	Component string
	Source    bool
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxOpen  int
	MaxIdle  int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GRPCConfig struct {
	Host string
	Port string
}

// HTTPConfig is the ops listener (/healthz, /readyz, /metrics).
type HTTPConfig struct {
	Host string
	Port string
}

// NATSConfig enables the event publisher when URL is set.
type NATSConfig struct {
	URL  string
	Name string
}

// AuthConfig enables bearer-token verification when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string
}

// MatchingConfig holds the tunables of the matching engine. It can be overlaid
// from a YAML file named by MATCHING_CONFIG.
type MatchingConfig struct {
	Weights         WeightsConfig   `yaml:"weights"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	CandidatePool   int             `yaml:"candidate_pool"`
	SuggestLimit    LimitConfig     `yaml:"suggest_limit"`
	ListLimit       LimitConfig     `yaml:"list_limit"`
	RepoTimeout     time.Duration   `yaml:"repo_timeout"`
	DispatchTimeout time.Duration   `yaml:"dispatch_timeout"`
	LikeCountTTL    time.Duration   `yaml:"like_count_ttl"`
}

// WeightsConfig are the additive scoring weights.
type WeightsConfig struct {
	Tag         float64 `yaml:"tag"`
	Language    float64 `yaml:"language"`
	Appearance  float64 `yaml:"appearance"`
	City        float64 `yaml:"city"`
	Country     float64 `yaml:"country"`
	DistanceMax float64 `yaml:"distance_max"`
}

type RateLimitConfig struct {
	// Backend is "redis" or "ledger".
	Backend string        `yaml:"backend"`
	Limit   int           `yaml:"limit"`
	Window  time.Duration `yaml:"window"`
}

type LimitConfig struct {
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
	Default int `yaml:"default"`
}

// Clamp applies the default to non-positive values and bounds the rest.
func (l LimitConfig) Clamp(n int) int {
	if n <= 0 {
		n = l.Default
	}
	if n < l.Min {
		return l.Min
	}
	if n > l.Max {
		return l.Max
	}
	return n
}

// DefaultMatching returns the engine defaults.
func DefaultMatching() MatchingConfig {
	return MatchingConfig{
		Weights: WeightsConfig{
			Tag:         5,
			Language:    2,
			Appearance:  1,
			City:        1,
			Country:     1,
			DistanceMax: 2,
		},
		RateLimit: RateLimitConfig{
			Backend: "redis",
			Limit:   40,
			Window:  30 * time.Second,
		},
		CandidatePool:   100,
		SuggestLimit:    LimitConfig{Min: 5, Max: 50, Default: 20},
		ListLimit:       LimitConfig{Min: 5, Max: 100, Default: 50},
		RepoTimeout:     3 * time.Second,
		DispatchTimeout: 5 * time.Second,
		LikeCountTTL:    time.Hour,
	}
}

// New builds the config from the environment. A .env file in the working
// directory is loaded first when present.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matching")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "matching")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
	cfg.DB.MaxOpen = getEnvInt("DB_MAX_OPEN", 20)
	cfg.DB.MaxIdle = getEnvInt("DB_MAX_IDLE", 10)

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Ops HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "9090")

	// NATS (optional)
	cfg.NATS.URL = getEnvDefault("NATS_URL", "")
	cfg.NATS.Name = getEnvDefault("NATS_NAME", "matching")

	// Auth (optional)
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "")

	// Matching
	cfg.Matching = DefaultMatching()
	if v := getEnvDefault("RATE_LIMIT_BACKEND", ""); v != "" {
		cfg.Matching.RateLimit.Backend = v
	}
	cfg.Matching.RateLimit.Limit = getEnvInt("RATE_LIMIT", cfg.Matching.RateLimit.Limit)
	cfg.Matching.RateLimit.Window = getEnvDuration("RATE_LIMIT_WINDOW", cfg.Matching.RateLimit.Window)

	return cfg
}

// Load is New plus the optional MATCHING_CONFIG overlay and validation.
func Load() (*Config, error) {
	cfg := New()
	if path := getEnvDefault("MATCHING_CONFIG", ""); path != "" {
		if err := cfg.LoadMatchingFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMatchingFile overlays the matching section from a YAML file. Keys absent
// from the file keep their current values.
func (c *Config) LoadMatchingFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read matching config: %w", err)
	}
	var file struct {
		Matching *MatchingConfig `yaml:"matching"`
	}
	file.Matching = &c.Matching
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse matching config: %w", err)
	}
	return nil
}

// Validate checks the values the engine cannot run without.
func (c *Config) Validate() error {
	m := c.Matching
	switch m.RateLimit.Backend {
	case "redis", "ledger":
	default:
		return fmt.Errorf("matching.rate_limit.backend must be redis or ledger, got %q", m.RateLimit.Backend)
	}
	if m.RateLimit.Limit <= 0 {
		return fmt.Errorf("matching.rate_limit.limit must be positive")
	}
	if m.RateLimit.Window <= 0 {
		return fmt.Errorf("matching.rate_limit.window must be positive")
	}
	if m.CandidatePool <= 0 {
		return fmt.Errorf("matching.candidate_pool must be positive")
	}
	for name, l := range map[string]LimitConfig{"suggest_limit": m.SuggestLimit, "list_limit": m.ListLimit} {
		if l.Min <= 0 || l.Max < l.Min || l.Default < l.Min || l.Default > l.Max {
			return fmt.Errorf("matching.%s must satisfy 0 < min <= default <= max", name)
		}
	}
	if m.RepoTimeout <= 0 || m.DispatchTimeout <= 0 {
		return fmt.Errorf("matching timeouts must be positive")
	}
	return nil
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
