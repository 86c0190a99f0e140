// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/logger"
)

const (
	// EnvConfigFile names the environment variable holding the config file path.
	EnvConfigFile = "X509_BUNDLE_IMPORTER_CONFIG"
	// EnvKeyPassword names the environment variable holding the key directory password.
	EnvKeyPassword = "X509_BUNDLE_IMPORTER_KEY_PASSWORD"

	// DefaultStorePath is the certificate database used when none is configured.
	DefaultStorePath = "certdb.bolt"
	// DefaultMetricsTextfile is where metrics are written when enabled without a path.
	DefaultMetricsTextfile = "x509_bundle_importer.prom"
)

// ErrInvalidLogFormat indicates a log format other than cli or json.
var ErrInvalidLogFormat = errors.New("config: invalid log format")

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the importer configuration.
//
// It is loaded from a JSON or YAML file named by the command line or by the
// X509_BUNDLE_IMPORTER_CONFIG environment variable, with defaults applied
// for any missing values.
type Config struct {
	// Store: Certificate database settings
	Store struct {
		// Path: bbolt database file; empty uses an in-memory store
		Path string `json:"path" yaml:"path"`
	} `json:"store" yaml:"store"`

	// Keys: Local private keys that mark user certificates
	Keys struct {
		// Dir: Directory scanned for *.pem and *.key files
		Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
		// Password: Password of encrypted keys (can also be set via X509_BUNDLE_IMPORTER_KEY_PASSWORD)
		Password string `json:"password,omitempty" yaml:"password,omitempty"`
	} `json:"keys" yaml:"keys"`

	// Log: Logging settings
	Log struct {
		// Format: "cli" or "json"
		Format string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`

	// Import: Default import flags, overridable per command
	Import struct {
		// DisallowUserCert: Never store the leaf as a user certificate
		DisallowUserCert bool `json:"disallowUserCert" yaml:"disallowUserCert"`
		// TreatLeafAsCA: Also trust a user certificate that is a CA
		TreatLeafAsCA bool `json:"treatLeafAsCA" yaml:"treatLeafAsCA"`
	} `json:"import" yaml:"import"`

	// Metrics: Prometheus textfile output
	Metrics struct {
		// Enabled: Write metrics after each command
		Enabled bool `json:"enabled" yaml:"enabled"`
		// Textfile: Output path in the node exporter textfile format
		Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
	} `json:"metrics" yaml:"metrics"`
}

// detectConfigFormat determines the configuration file format based on file extension.
// Matching is case-insensitive; anything but .yaml or .yml is read as JSON.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{}
	config.Store.Path = DefaultStorePath
	config.Log.Format = logger.FormatCLI
	return config
}

// Load loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Read, parse or validation error
//
// Configuration Priority:
//  1. Default values are set
//  2. X509_BUNDLE_IMPORTER_CONFIG environment variable is checked if configPath is empty
//  3. Config file values override defaults (if a path is known)
//  4. X509_BUNDLE_IMPORTER_KEY_PASSWORD overrides the key password when set
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}
	}

	if password := os.Getenv(EnvKeyPassword); password != "" {
		config.Keys.Password = password
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize fills values a file left empty and rejects invalid ones.
func (c *Config) normalize() error {
	if c.Log.Format == "" {
		c.Log.Format = logger.FormatCLI
	}
	switch c.Log.Format {
	case logger.FormatCLI, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		c.Metrics.Textfile = DefaultMetricsTextfile
	}
	return nil
}
