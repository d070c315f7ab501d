package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from the
// environment; a YAML file may pre-seed them, with the environment winning.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Server   ServerConfig   `yaml:"server"`

	// Credentials maps collection name to the credential set its fetch
	// script reads. Typically only populated from the YAML file.
	Credentials map[string]map[string]string `yaml:"credentials"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

type IngestConfig struct {
	InboxDir    string `yaml:"inbox_dir"`
	Collection  string `yaml:"collection"`
	DefaultType string `yaml:"default_type"`
}

type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// LoadConfig builds the configuration from an optional YAML file plus the
// environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Database.DSN = getEnv("CABINET_DB", cfg.Database.DSN)
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "cabinet.db"
	}
	cfg.Database.MaxConns = getEnvAsInt32("CABINET_DB_MAX_CONNS", defaultInt32(cfg.Database.MaxConns, 10))
	cfg.Database.MinConns = getEnvAsInt32("CABINET_DB_MIN_CONNS", defaultInt32(cfg.Database.MinConns, 2))
	cfg.Database.MaxConnLifetime = getEnvAsDuration("CABINET_DB_MAX_CONN_LIFETIME", defaultDuration(cfg.Database.MaxConnLifetime, 30*time.Minute))
	cfg.Database.MaxConnIdleTime = getEnvAsDuration("CABINET_DB_MAX_CONN_IDLE_TIME", defaultDuration(cfg.Database.MaxConnIdleTime, 5*time.Minute))
	cfg.Database.DialTimeout = getEnvAsDuration("CABINET_DB_DIAL_TIMEOUT", defaultDuration(cfg.Database.DialTimeout, 3*time.Second))

	cfg.Fetch.Timeout = getEnvAsDuration("CABINET_FETCH_TIMEOUT", defaultDuration(cfg.Fetch.Timeout, 60*time.Second))
	cfg.Fetch.UserAgent = getEnv("CABINET_FETCH_USER_AGENT", cfg.Fetch.UserAgent)
	cfg.Fetch.MaxConcurrent = getEnvAsInt("CABINET_FETCH_MAX_CONCURRENT", defaultInt(cfg.Fetch.MaxConcurrent, 4))

	cfg.Ingest.InboxDir = getEnv("CABINET_INBOX_DIR", cfg.Ingest.InboxDir)
	cfg.Ingest.Collection = getEnv("CABINET_INBOX_COLLECTION", defaultString(cfg.Ingest.Collection, "base"))
	cfg.Ingest.DefaultType = getEnv("CABINET_INBOX_TYPE", defaultString(cfg.Ingest.DefaultType, "invoice"))

	cfg.Server.GRPCAddr = getEnv("CABINET_GRPC_ADDR", defaultString(cfg.Server.GRPCAddr, ":8080"))

	return cfg, nil
}

// Validate checks the parts every run needs.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database DSN is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "gRPC address is required", ErrInvalidInput)
	}
	return nil
}

func defaultString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defaultInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func defaultInt32(v, def int32) int32 {
	if v != 0 {
		return v
	}
	return def
}

func defaultDuration(v, def time.Duration) time.Duration {
	if v != 0 {
		return v
	}
	return def
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
