// Package config loads the service configuration: YAML file, then .env, then
// environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/extract"
)

// DefaultPath is read when no config path is given.
const DefaultPath = "config/analysis.yaml"

type ServerConfig struct {
	Port        string `yaml:"port" validate:"required,numeric"`
	MaxUploadMB int    `yaml:"max_upload_mb" validate:"gt=0,lte=100"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=memory file sqlite postgres"`
	// DSN is a directory, a database path or a connection URL depending on Driver.
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

type ExtractConfig struct {
	RowBudget      int    `yaml:"row_budget" validate:"gt=0,lte=500"`
	MetadataWindow int    `yaml:"metadata_window" validate:"gt=0,lte=20"`
	MinPeriods     int    `yaml:"min_periods" validate:"gte=1"`
	AliasFile      string `yaml:"alias_file"`
}

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig         `yaml:"server"`
	Store       StoreConfig          `yaml:"store"`
	Log         LogConfig            `yaml:"log"`
	Extract     ExtractConfig        `yaml:"extract"`
	Assumptions analysis.Assumptions `yaml:"assumptions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:      ServerConfig{Port: "8080", MaxUploadMB: 10},
		Store:       StoreConfig{Driver: "memory"},
		Log:         LogConfig{Level: "info", Format: "console"},
		Extract:     ExtractConfig{RowBudget: extract.DefaultRowBudget, MetadataWindow: extract.DefaultMetadataWindow, MinPeriods: extract.DefaultMinPeriods},
		Assumptions: analysis.DefaultAssumptions(),
	}
}

// Load builds the configuration. An empty path reads DefaultPath when it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && c.Store.Driver == "postgres" && c.Store.DSN == "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.Server.MaxUploadMB = n
	}
	return nil
}

var validate = validator.New()

// Validate checks ranges on every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateAssumptions checks request-level assumption overrides.
func ValidateAssumptions(a analysis.Assumptions) error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid assumptions: %w", err)
	}
	return nil
}
