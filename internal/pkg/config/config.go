package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Guard   GuardConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=https://teamc-backend.onrender.com/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=30s"`
	// PingInterval is the minimum spacing between activity pings.
	PingInterval time.Duration `env:"PING_INTERVAL, default=1m"`
}

type SessionConfig struct {
	Backend string `env:"SESSION_BACKEND, default=file"`
	File    string `env:"SESSION_FILE,    default=.account-console/session.json"`
	Key     string `env:"SESSION_KEY,     default=user"`
}

type GuardConfig struct {
	RoleAware bool `env:"GUARD_ROLE_AWARE, default=true"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether pretty logging and verbose docs apply.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.File == "" {
			return fmt.Errorf("config: SESSION_FILE is required for the file session backend")
		}
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("config: BACKEND_URL is required")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
