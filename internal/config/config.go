// Package config loads the clinic server configuration: defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	NATS    NATSConfig    `yaml:"nats"`
	Log     LogConfig     `yaml:"log"`
	Form    FormConfig    `yaml:"form"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// TemplateDir serves templates from disk and reloads them on change
	// (empty = embedded templates).
	TemplateDir     string        `yaml:"template_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// SessionIdle is how long an idle browser session keeps its edit state.
	SessionIdle time.Duration `yaml:"session_idle"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	BoltPath    string `yaml:"bolt_path"`
}

type NATSConfig struct {
	// URL of the NATS server; empty disables cross-instance events.
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// FormConfig holds the pauses of the dentist form workflow.
type FormConfig struct {
	SearchDelay    time.Duration `yaml:"search_delay"`
	CreateRedirect time.Duration `yaml:"create_redirect"`
	Reload         time.Duration `yaml:"reload"`
	DeleteRefresh  time.Duration `yaml:"delete_refresh"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
			SessionIdle:     30 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:   DriverMemory,
			BoltPath: "dentists.db",
		},
		Log: LogConfig{Level: "info"},
		Form: FormConfig{
			SearchDelay:    300 * time.Millisecond,
			CreateRedirect: 2 * time.Second,
			Reload:         1500 * time.Millisecond,
			DeleteRefresh:  time.Second,
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies the
// environment read through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if getenv != nil {
		cfg.applyEnv(getenv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("TEMPLATE_DIR"); v != "" {
		c.Server.TemplateDir = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
		c.Storage.Driver = DriverPostgres
	}
	if v := getenv("BOLT_PATH"); v != "" {
		c.Storage.BoltPath = v
		if c.Storage.DatabaseURL == "" {
			c.Storage.Driver = DriverBolt
		}
	}
	if v := getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for postgres"))
		}
	case DriverBolt:
		if c.Storage.BoltPath == "" {
			errs = append(errs, errors.New("storage.bolt_path is required for bolt"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, postgres, bolt", c.Storage.Driver))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Form.SearchDelay < 0 || c.Form.CreateRedirect < 0 || c.Form.Reload < 0 || c.Form.DeleteRefresh < 0 {
		errs = append(errs, errors.New("form delays must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func (c *Config) Addr() string {
	if strings.Contains(c.Server.Port, ":") {
		return c.Server.Port
	}
	return ":" + c.Server.Port
}
