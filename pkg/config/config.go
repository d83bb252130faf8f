// Package config loads engine configuration from config.yaml with environment
// variable overrides. Secrets (passwords, API keys) come only from the
// environment and are never read from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for metaquery-engine.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Graph catalog (Neo4j) configuration
	Graph GraphConfig `yaml:"graph"`

	// Warehouse connection for executing generated SQL
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Model backend configuration (two-backend switch)
	AI AIConfig `yaml:"ai"`

	// Session result storage
	Session SessionConfig `yaml:"session"`

	// API authentication
	Auth AuthConfig `yaml:"auth"`
}

// GraphConfig holds graph store connection settings.
type GraphConfig struct {
	URI      string `yaml:"uri" env:"NEO4J_URI" env-default:"bolt://localhost:7687"`
	Username string `yaml:"username" env:"NEO4J_USERNAME" env-default:"neo4j"`
	Password string `yaml:"-" env:"NEO4J_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"NEO4J_DATABASE" env-default:""`

	// ConnectTimeoutSeconds bounds socket establishment, not query time;
	// per-question deadlines are owned by the caller's context.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"NEO4J_CONNECT_TIMEOUT_SECONDS" env-default:"10"`
	MaxPoolSize           int `yaml:"max_pool_size" env:"NEO4J_MAX_POOL_SIZE" env-default:"50"`
}

// WarehouseConfig holds the analytical warehouse connection.
type WarehouseConfig struct {
	// Type selects the adapter: "postgres" or "sqlserver".
	Type     string `yaml:"type" env:"WAREHOUSE_TYPE" env-default:"postgres"`
	Host     string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"WAREHOUSE_USER" env-default:""`
	Password string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:""`
	SSLMode  string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"disable"`

	MaxConnections int32 `yaml:"max_connections" env:"WAREHOUSE_MAX_CONNECTIONS" env-default:"10"`
	MaxResultRows  int   `yaml:"max_result_rows" env:"WAREHOUSE_MAX_RESULT_ROWS" env-default:"1000"`
}

// AIConfig selects and configures the model backend. Exactly one backend is
// active per process; the retrieval core never inspects which.
type AIConfig struct {
	// Provider is "anthropic" or "openai" (any OpenAI-compatible endpoint).
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"anthropic"`

	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
}

// AnthropicConfig holds settings for the Anthropic backend.
type AnthropicConfig struct {
	APIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
	Model  string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-20250514"`
}

// OpenAIConfig holds settings for an OpenAI-compatible backend.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey  string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
}

// SessionConfig holds session result storage settings. With an empty Redis
// host the engine falls back to the in-memory store.
type SessionConfig struct {
	RedisHost     string `yaml:"redis_host" env:"REDIS_HOST" env-default:""`
	RedisPort     int    `yaml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	TTLMinutes int `yaml:"ttl_minutes" env:"SESSION_TTL_MINUTES" env-default:"60"`
}

// AuthConfig holds API authentication settings. With an empty signing key the
// API runs unauthenticated (local development).
type AuthConfig struct {
	SigningKey string `yaml:"-" env:"API_SIGNING_KEY"` // Secret - not in YAML
	Issuer     string `yaml:"issuer" env:"API_TOKEN_ISSUER" env-default:"metaquery-engine"`
}

// Load reads configuration from config.yaml (if present) with environment
// variable overrides.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Warehouse.Type {
	case "postgres", "sqlserver":
	default:
		return fmt.Errorf("unsupported warehouse type %q", c.Warehouse.Type)
	}

	switch c.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unsupported AI provider %q", c.AI.Provider)
	}

	return nil
}
