// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "botdef.yaml"

// Config is the root configuration structure.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ProjectConfig locates the declarative project.
type ProjectConfig struct {
	Dir      string        `yaml:"dir"`
	Workers  int           `yaml:"workers"`  // Files parsed concurrently (default: GOMAXPROCS)
	Debounce time.Duration `yaml:"debounce"` // Quiet period before a watch reload
}

// DatabaseConfig configures the package catalog store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// ServerConfig configures the catalog HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OutputConfig configures describe and gen output.
type OutputConfig struct {
	Format string `yaml:"format"` // "table", "json" or "yaml"
	Dir    string `yaml:"dir"`    // Directory for generated interface modules
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`  // Enable /metrics endpoint
	Textfile string `yaml:"textfile"` // Write metrics here after one-shot commands
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	BOTDEF_PROJECT_DIR       - Project directory (default: .)
//	BOTDEF_PROJECT_WORKERS   - Files parsed concurrently
//	BOTDEF_DATABASE_DRIVER   - Catalog store: sqlite or memory (default: sqlite)
//	BOTDEF_DATABASE_DSN      - Database path (default: botdef.db)
//	BOTDEF_SERVER_HOST       - Server host (default: 127.0.0.1)
//	BOTDEF_SERVER_PORT       - Server port (default: 8420)
//	BOTDEF_OUTPUT_FORMAT     - Output format: table, json or yaml (default: table)
//	BOTDEF_OUTPUT_DIR        - Generated modules directory (default: .botdef)
//	BOTDEF_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	BOTDEF_LOG_FORMAT        - Log format: json or console (default: console)
//	BOTDEF_METRICS_ENABLED   - Enable /metrics endpoint (default: false)
//	BOTDEF_METRICS_TEXTFILE  - Textfile collector path
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to the
// environment otherwise. An explicitly given path that does not exist is an
// error.
func LoadWithFallback(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
		if _, err := os.Stat(path); err != nil {
			return LoadFromEnv()
		}
	}
	return Load(path)
}

// applyEnvOverrides applies BOTDEF_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Project configuration
	if v := os.Getenv("BOTDEF_PROJECT_DIR"); v != "" {
		cfg.Project.Dir = v
	}
	if v := os.Getenv("BOTDEF_PROJECT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Project.Workers = n
		}
	}
	if v := os.Getenv("BOTDEF_PROJECT_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Project.Debounce = d
		}
	}

	// Database configuration
	if v := os.Getenv("BOTDEF_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("BOTDEF_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Server configuration
	if v := os.Getenv("BOTDEF_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("BOTDEF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	// Output configuration
	if v := os.Getenv("BOTDEF_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("BOTDEF_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	// Logging configuration
	if v := os.Getenv("BOTDEF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BOTDEF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("BOTDEF_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("BOTDEF_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Project.Dir == "" {
		cfg.Project.Dir = "."
	}
	if cfg.Project.Debounce == 0 {
		cfg.Project.Debounce = 200 * time.Millisecond
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "botdef.db"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".botdef"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}

	if cfg.Project.Workers < 0 {
		return fmt.Errorf("project.workers must not be negative, got %d", cfg.Project.Workers)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	validFormats := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be one of: table, json, yaml")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
