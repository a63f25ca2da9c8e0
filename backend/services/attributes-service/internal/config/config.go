package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "sessionstore/backend/libs/config"
)

// Supported store backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config defines attributes service configuration.
type Config struct {
	HTTP struct {
		Port            string `yaml:"port" env:"ATTRIBUTES_HTTP_PORT"`
		ReadTimeout     int    `yaml:"readTimeoutSeconds" env:"ATTRIBUTES_HTTP_READ_TIMEOUT"`
		WriteTimeout    int    `yaml:"writeTimeoutSeconds" env:"ATTRIBUTES_HTTP_WRITE_TIMEOUT"`
		IdleTimeout     int    `yaml:"idleTimeoutSeconds" env:"ATTRIBUTES_HTTP_IDLE_TIMEOUT"`
		ShutdownTimeout int    `yaml:"shutdownTimeoutSeconds" env:"ATTRIBUTES_HTTP_SHUTDOWN_TIMEOUT"`
	} `yaml:"http"`
	Auth struct {
		Secret string `yaml:"secret" env:"ATTRIBUTES_AUTH_SECRET"`
	} `yaml:"auth"`
	Store struct {
		Backend string `yaml:"backend" env:"ATTRIBUTES_STORE_BACKEND"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ATTRIBUTES_REDIS_ADDR"`
		Password string `yaml:"password" env:"ATTRIBUTES_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"ATTRIBUTES_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"ATTRIBUTES_REDIS_TTL"`
	} `yaml:"redis"`
	Database struct {
		DSN          string `yaml:"dsn" env:"ATTRIBUTES_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"maxOpenConns" env:"ATTRIBUTES_POSTGRES_MAX_OPEN_CONNS"`
		MaxIdleConns int    `yaml:"maxIdleConns" env:"ATTRIBUTES_POSTGRES_MAX_IDLE_CONNS"`
	} `yaml:"database"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Store.Backend = BackendRedis
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 86400

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	switch cfg.Store.Backend {
	case BackendRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return nil, errors.New("config: redis addr required")
		}
	case BackendPostgres:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return nil, errors.New("config: database dsn required")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// AttributeTTL returns the value-cache expiration as a duration; zero means
// no expiration.
func (c *Config) AttributeTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
