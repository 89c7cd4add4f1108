// Package config loads lsbsteg settings from a single YAML file.
//
// The file is named by the --config flag or the LSBSTEG_CONFIG environment
// variable. Without either, the built-in defaults apply. Fields missing from
// the file keep their default values; unknown fields are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"lsbsteg"
	"lsbsteg/internal/report"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "LSBSTEG_CONFIG"

// Config is the complete tool configuration.
type Config struct {
	// Codec must match between embed and extract.
	Codec lsbsteg.Config `yaml:"codec"`

	// Compression packs the message before embedding: none, zstd or lz4.
	Compression string `yaml:"compression"`

	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

// ReportConfig controls the embed report.
type ReportConfig struct {
	// Format is text, json, yaml or cbor.
	Format string `yaml:"format"`
	// Verify re-reads the written image and extracts the message.
	Verify bool `yaml:"verify"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Codec:       lsbsteg.DefaultConfig(),
		Compression: "none",
		Report: ReportConfig{
			Format: string(report.FormatText),
			Verify: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the file named by LSBSTEG_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path on top of the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Codec.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := lsbsteg.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel parses Log.Level. The empty string is info.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
}
