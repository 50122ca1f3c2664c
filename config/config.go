package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test

	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// StoreConfig describes where wallet and receipt records live.
type StoreConfig struct {
	Driver         string   `mapstructure:"driver"` // redis, postgres
	Prefix         string   `mapstructure:"prefix"`
	Collection     string   `mapstructure:"collection"`
	Queue          string   `mapstructure:"queue"` // empty = no receipt queue
	DefaultCountry string   `mapstructure:"default_country"`
	IndexIgnore    []string `mapstructure:"index_ignore"`
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"` // 0 = go-redis default
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// JWTConfig configures bearer-token auth on the API. An empty secret disables it.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expiry time.Duration `mapstructure:"expiry"` // lifetime of tokens minted by tokengen
}

// NotifyConfig configures the receipt webhook notifier.
type NotifyConfig struct {
	URL            string        `mapstructure:"url"`
	Secret         string        `mapstructure:"secret"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RateLimitConfig tunes the per-group request limits on /api/v1. Groups not
// listed in Rules keep their built-in limits.
type RateLimitConfig struct {
	Enabled bool                     `mapstructure:"enabled"`
	Rules   map[string]RateLimitRule `mapstructure:"rules"`
}

type RateLimitRule struct {
	Limit  int64         `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// LoadEnv loads variables from a .env file if one is present.
// It reports whether a file was loaded.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WS_ (wallet store).
// Nested keys use underscore: WS_STORE_PREFIX, WS_REDIS_HOST, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("store.driver", "redis")
	v.SetDefault("store.prefix", "walletstore")
	v.SetDefault("store.collection", "wallets")
	v.SetDefault("store.queue", "")
	v.SetDefault("store.default_country", "KE")
	v.SetDefault("store.index_ignore", []string{"id", "receivedAt", "createdAt", "updatedAt", "deletedAt"})
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "walletstore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "walletstore")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("notify.url", "")
	v.SetDefault("notify.secret", "")
	v.SetDefault("notify.poll_timeout", "5s")
	v.SetDefault("notify.request_timeout", "10s")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// WS_STORE_PREFIX -> store.prefix
	v.SetEnvPrefix("WS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional, env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// reservedNamespaces are the key segments under store.prefix used by the
// Redis search index and rate limiter.
var reservedNamespaces = map[string]struct{}{
	"idx":       {},
	"ratelimit": {},
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "redis", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.Collection == "" {
		return fmt.Errorf("store.collection must not be empty")
	}
	for _, name := range []string{c.Store.Collection, c.Store.Queue} {
		if _, taken := reservedNamespaces[name]; taken {
			return fmt.Errorf("store name %q is reserved for the search index or rate limiter", name)
		}
	}
	if c.Store.Queue == c.Store.Collection {
		return fmt.Errorf("store.queue must differ from store.collection")
	}
	if len(c.Store.DefaultCountry) != 2 {
		return fmt.Errorf("store.default_country must be a two-letter region code, got %q", c.Store.DefaultCountry)
	}
	c.Store.DefaultCountry = strings.ToUpper(c.Store.DefaultCountry)
	for group, rule := range c.RateLimit.Rules {
		if rule.Limit <= 0 || rule.Window <= 0 {
			return fmt.Errorf("rate_limit.rules.%s needs a positive limit and window", group)
		}
	}
	if c.Notify.URL != "" && c.Store.Queue == "" {
		return fmt.Errorf("notify.url requires store.queue")
	}
	return nil
}
