package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type BillingConfig struct {
	QueueSize int
	MaxRetry  int
}

type CacheConfig struct {
	TenantTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Concurrency int
}

var defaults = map[string]any{
	"SERVER_HOST":        "0.0.0.0",
	"SERVER_PORT":        8080,
	"DATABASE_URL":       "",
	"DB_MAX_CONNS":       20,
	"DB_MIN_CONNS":       5,
	"MIGRATIONS_PATH":    "migrations",
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"JWT_SECRET":         "",
	"JWT_ISSUER":         "tenantplatform",
	"AUTH_TOKEN_TTL":     "60m",
	"BILLING_QUEUE_SIZE": 256,
	"BILLING_MAX_RETRY":  3,
	"TENANT_CACHE_TTL":   "5m",
	"LOG_LEVEL":          "info",
	"WORKER_CONCURRENCY": 10,
}

// Load reads configuration from the environment, optionally seeded by a
// .env or config.env file in the working directory. Environment variables
// win over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	r := reader{v: v}
	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: r.int("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			URL:            v.GetString("DATABASE_URL"),
			MaxConns:       r.int("DB_MAX_CONNS"),
			MinConns:       r.int("DB_MIN_CONNS"),
			MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       r.int("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
			TokenTTL:  r.duration("AUTH_TOKEN_TTL"),
		},
		Billing: BillingConfig{
			QueueSize: r.int("BILLING_QUEUE_SIZE"),
			MaxRetry:  r.int("BILLING_MAX_RETRY"),
		},
		Cache: CacheConfig{
			TenantTTL: r.duration("TENANT_CACHE_TTL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Concurrency: r.int("WORKER_CONCURRENCY"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive")
	}
	if c.Billing.MaxRetry < 0 {
		return fmt.Errorf("BILLING_MAX_RETRY must not be negative")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// reader keeps the first conversion error so Load can report it once.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) int(key string) int {
	n, err := cast.ToIntE(r.v.Get(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return n
}

func (r *reader) duration(key string) time.Duration {
	d, err := cast.ToDurationE(r.v.Get(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}
