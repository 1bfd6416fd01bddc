package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// RequireProfile enables the guard's redirect to /profile for users with
	// an incomplete profile.
	RequireProfile bool `env:"GUARD_REQUIRE_PROFILE, default=false"`

	API   APIConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://127.0.0.1:8000"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=file"`
	Path    string `env:"STORE_PATH,    default=.portal/session.json"`
	// Secret seals the file backend when set.
	Secret    string `env:"STORE_SECRET"`
	Namespace string `env:"STORE_NAMESPACE, default=portal"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=diplomatch_portal"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	TTL      time.Duration `env:"REDIS_TTL,      default=0s"`
}

// IsDevelopment reports whether console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory, when present, fills variables that
// are not already set.
func Load() *Config {
	_ = godotenv.Load()
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch cfg.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %s", cfg.API.Timeout)
	}
	return &cfg, nil
}
