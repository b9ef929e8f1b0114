// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // default cache TTL
}

type PaymobConfig struct {
	APIKey        string `yaml:"api_key"`        // for the auth token request
	HMACSecret    string `yaml:"hmac_secret"`    // verifies transaction callbacks
	IntegrationID int64  `yaml:"integration_id"` // card integration
	IframeID      string `yaml:"iframe_id"`
	BaseURL       string `yaml:"base_url"` // override for tests/sandbox
}

type PaymentConfig struct {
	Paymob PaymobConfig `yaml:"paymob"`
}

type SweeperConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
	LockTTL   time.Duration `yaml:"lock_ttl"`
	Workers   int           `yaml:"workers"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type UsageConfig struct {
	MaxMinutesPerReport int           `yaml:"max_minutes_per_report"`
	RateLimit           int           `yaml:"rate_limit"` // reports per window per order
	RateWindow          time.Duration `yaml:"rate_window"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Auth     AuthConfig     `yaml:"auth"`
	Usage    UsageConfig    `yaml:"usage"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 10 * time.Second
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = 15 * time.Minute
	}
	if cfg.Sweeper.BatchSize <= 0 {
		cfg.Sweeper.BatchSize = 500
	}
	if cfg.Sweeper.LockTTL <= 0 {
		cfg.Sweeper.LockTTL = 5 * time.Minute
	}
	if cfg.Sweeper.Workers <= 0 {
		cfg.Sweeper.Workers = 4
	}
	if cfg.Usage.MaxMinutesPerReport <= 0 {
		cfg.Usage.MaxMinutesPerReport = 60
	}
	if cfg.Usage.RateLimit <= 0 {
		cfg.Usage.RateLimit = 6
	}
	if cfg.Usage.RateWindow <= 0 {
		cfg.Usage.RateWindow = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if !dev {
		if cfg.Payment.Paymob.APIKey == "" || cfg.Payment.Paymob.HMACSecret == "" {
			return nil, errors.New("payment.paymob.api_key and hmac_secret are required outside dev mode")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
