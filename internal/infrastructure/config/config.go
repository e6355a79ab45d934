package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Gateway GatewayConfig
	Console ConsoleConfig
	Redis   RedisConfig
}

type GatewayConfig struct {
	// Endpoint is the single GraphQL endpoint every query and mutation goes to.
	Endpoint string        `env:"GRAPHQL_ENDPOINT, default=http://localhost:8080/graphql"`
	Timeout  time.Duration `env:"GRAPHQL_TIMEOUT,  default=15s"`
}

type ConsoleConfig struct {
	PageLimit      int           `env:"PAGE_LIMIT,       default=5"`
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW,  default=500ms"`
	ToastDuration  time.Duration `env:"TOAST_DURATION,   default=4s"`
	CacheMaxAge    time.Duration `env:"CACHE_MAX_AGE,    default=5m"`
}

type RedisConfig struct {
	// Addr enables the shared Redis-backed query cache when non-empty.
	// Leave empty to use the in-process cache.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
