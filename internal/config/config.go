// Package config loads the server configuration from YAML with environment
// overrides (prefix JOURNAL, e.g. JOURNAL_SERVER_PORT).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"

	EnvPrefix = "JOURNAL"
)

type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Transport TransportConfig `yaml:"transport" envconfig:"TRANSPORT"`
	Load      LoadConfig      `yaml:"load" envconfig:"LOAD"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	File  string `yaml:"file" envconfig:"FILE"` // empty logs to stderr
}

type ServerConfig struct {
	Port int `yaml:"port" envconfig:"PORT"` // 0 disables HTTP
	// No origins means no CORS headers and same-host websockets only.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	Name   string `yaml:"name" envconfig:"NAME"`
}

type TransportConfig struct {
	Stdio bool `yaml:"stdio" envconfig:"STDIO"`
}

type LoadConfig struct {
	BaseDir  string `yaml:"base_dir" envconfig:"BASE_DIR"`
	MaxBytes int64  `yaml:"max_bytes" envconfig:"MAX_BYTES"`
}

func Default() *Config {
	return &Config{
		Logging:   LoggingConfig{Level: "info"},
		Storage:   StorageConfig{Driver: DriverMemory, Name: "trade_journal"},
		Transport: TransportConfig{Stdio: true},
		Load:      LoadConfig{MaxBytes: 50 << 20},
	}
}

// Load starts from Default, applies the YAML file at path if it exists, then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, c.Storage.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if !c.Transport.Stdio && c.Server.Port == 0 {
		return errors.New("nothing to serve: enable transport.stdio or set server.port")
	}
	return nil
}
