// Package config defines the tasker host configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level tasker configuration.
type Config struct {
	Store     StoreConfig    `json:"store" yaml:"store"`
	Database  DatabaseConfig `json:"database" yaml:"database"`
	LogLevel  string         `json:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat string         `json:"log_format" yaml:"log_format"` // text or json
}

// StoreConfig sizes the in-memory task store.
type StoreConfig struct {
	InitialCapacity int `json:"initial_capacity" yaml:"initial_capacity"`
	MaxRecords      int `json:"max_records" yaml:"max_records"` // 0 = unbounded
}

// DatabaseConfig locates the SQLite snapshot file.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			InitialCapacity: 16,
		},
		Database: DatabaseConfig{
			Path: "./data/tasks.db",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML config file and returns the parsed configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Store.InitialCapacity < 0 {
		return fmt.Errorf("store.initial_capacity must not be negative, got %d", c.Store.InitialCapacity)
	}
	if c.Store.MaxRecords < 0 {
		return fmt.Errorf("store.max_records must not be negative, got %d", c.Store.MaxRecords)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Logger builds a slog.Logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", s)
}
