// Package config resolves the service configuration from defaults, an
// optional YAML file and environment overrides, in that priority order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	HTTPPort int

	RedisURL    string
	PostgresDSN string

	FlushInterval time.Duration // batch aggregator cadence
	ReadBlock     time.Duration // stream read block window
	IdleWait      time.Duration // pause between pipeline passes
	ConsumerName  string        // consumer group member name

	VendorMinDelay    time.Duration
	VendorMaxDelay    time.Duration
	VendorSuccessRate float64
}

// configFile mirrors the YAML schema of configs/default.yaml. It is kept
// separate from Config so runtime-only resolution stays internal.
type configFile struct {
	Service struct {
		HTTPPort int `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Aggregator struct {
		FlushSeconds int `yaml:"flush_seconds"`
	} `yaml:"aggregator"`
	Streams struct {
		BlockMillis int    `yaml:"block_ms"`
		IdleMillis  int    `yaml:"idle_ms"`
		Consumer    string `yaml:"consumer"`
	} `yaml:"streams"`
	Vendor struct {
		MinDelayMillis int     `yaml:"min_delay_ms"`
		MaxDelayMillis int     `yaml:"max_delay_ms"`
		SuccessRate    float64 `yaml:"success_rate"`
	} `yaml:"vendor"`
}

// Load resolves the configuration. A missing file is not an error; missing
// Redis or Postgres endpoints are.
func Load(path string) (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		FlushInterval:     10 * time.Second,
		ReadBlock:         2 * time.Second,
		IdleWait:          time.Second,
		ConsumerName:      "consumer-1",
		VendorMinDelay:    200 * time.Millisecond,
		VendorMaxDelay:    800 * time.Millisecond,
		VendorSuccessRate: 0.9,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", unmarshalErr)
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.PostgresDSN = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Aggregator.FlushSeconds > 0 {
			cfg.FlushInterval = time.Duration(f.Aggregator.FlushSeconds) * time.Second
		}
		if f.Streams.BlockMillis > 0 {
			cfg.ReadBlock = time.Duration(f.Streams.BlockMillis) * time.Millisecond
		}
		if f.Streams.IdleMillis > 0 {
			cfg.IdleWait = time.Duration(f.Streams.IdleMillis) * time.Millisecond
		}
		if f.Streams.Consumer != "" {
			cfg.ConsumerName = f.Streams.Consumer
		}
		if f.Vendor.MaxDelayMillis > 0 {
			cfg.VendorMinDelay = time.Duration(f.Vendor.MinDelayMillis) * time.Millisecond
			cfg.VendorMaxDelay = time.Duration(f.Vendor.MaxDelayMillis) * time.Millisecond
		}
		if f.Vendor.SuccessRate > 0 {
			cfg.VendorSuccessRate = f.Vendor.SuccessRate
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.PostgresDSN = envOrDefault("POSTGRES_URL", envOrDefault("DB_URL", cfg.PostgresDSN))
	cfg.ConsumerName = envOrDefault("CONSUMER_NAME", cfg.ConsumerName)
	cfg.FlushInterval = time.Duration(envInt("FLUSH_SECONDS", int(cfg.FlushInterval.Seconds()))) * time.Second
	cfg.ReadBlock = time.Duration(envInt("STREAM_BLOCK_MS", int(cfg.ReadBlock.Milliseconds()))) * time.Millisecond
	cfg.IdleWait = time.Duration(envInt("STREAM_IDLE_MS", int(cfg.IdleWait.Milliseconds()))) * time.Millisecond
	cfg.VendorSuccessRate = envFloat("VENDOR_SUCCESS_RATE", cfg.VendorSuccessRate)

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("missing POSTGRES_URL")
	}
	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
