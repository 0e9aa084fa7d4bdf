// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	ServerAddr          string        `mapstructure:"SERVER_ADDR"`
	DataDir             string        `mapstructure:"DATA_DIR"`
	SnapshotBackend     string        `mapstructure:"SNAPSHOT_BACKEND"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	OTLPEndpoint        string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CreateRatePerMinute int           `mapstructure:"CREATE_RATE_PER_MINUTE"`
	CreateBurst         int           `mapstructure:"CREATE_BURST"`
	AllowedOrigins      string        `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout     time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_ADDR", "127.0.0.1:8090")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("SNAPSHOT_BACKEND", BackendFile)
	viper.SetDefault("CREATE_RATE_PER_MINUTE", 60)
	viper.SetDefault("CREATE_BURST", 10)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:*,http://127.0.0.1:*")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_ADDR", "DATA_DIR", "SNAPSHOT_BACKEND", "DATABASE_URL",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "CREATE_RATE_PER_MINUTE", "CREATE_BURST",
		"ALLOWED_ORIGINS", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
	} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.SnapshotBackend = strings.ToLower(strings.TrimSpace(cfg.SnapshotBackend))
	switch cfg.SnapshotBackend {
	case BackendFile:
	case BackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SNAPSHOT_BACKEND=%s", BackendPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported SNAPSHOT_BACKEND %q", cfg.SnapshotBackend)
	}
	if cfg.CreateRatePerMinute <= 0 {
		return nil, fmt.Errorf("CREATE_RATE_PER_MINUTE must be positive, got %d", cfg.CreateRatePerMinute)
	}
	if cfg.CreateBurst <= 0 {
		return nil, fmt.Errorf("CREATE_BURST must be positive, got %d", cfg.CreateBurst)
	}

	return &cfg, nil
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
