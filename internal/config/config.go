// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all abbu2csv configuration.
type Config struct {
	Log  Log  `yaml:"log"`
	Mail Mail `yaml:"mail"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "auto" | "json" | "console"
}

// Mail holds delivery settings for finished exports.
type Mail struct {
	Enabled bool     `yaml:"enabled"`
	Mode    string   `yaml:"mode"` // "send" | "draft"
	To      []string `yaml:"to"`
	Subject string   `yaml:"subject"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
		Mail: Mail{
			Mode:    "send",
			Subject: "Contacts export",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// If the file does not exist, defaults are returned without error.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are
// skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("config: log.format must be one of auto, json, console, got %q", c.Log.Format)
	}
	switch c.Mail.Mode {
	case "send", "draft":
	default:
		return fmt.Errorf("config: mail.mode must be \"send\" or \"draft\", got %q", c.Mail.Mode)
	}
	for _, to := range c.Mail.To {
		if strings.TrimSpace(to) == "" {
			return errors.New("config: mail.to cannot contain empty addresses")
		}
	}
	if c.Mail.Enabled && c.Mail.Mode == "send" && len(c.Mail.To) == 0 {
		return errors.New("config: mail.to is required when mail.mode is \"send\"")
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ABBU2CSV_LOG_LEVEL, ABBU2CSV_LOG_FORMAT,
// ABBU2CSV_MAIL_MODE, ABBU2CSV_MAIL_TO (comma-separated), ABBU2CSV_MAIL_SUBJECT.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ABBU2CSV_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("ABBU2CSV_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("ABBU2CSV_MAIL_MODE"); v != "" {
		c.Mail.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("ABBU2CSV_MAIL_TO"); v != "" {
		c.Mail.To = splitList(v)
	}
	if v := os.Getenv("ABBU2CSV_MAIL_SUBJECT"); v != "" {
		c.Mail.Subject = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Log  *rawLog  `yaml:"log"`
	Mail *rawMail `yaml:"mail"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type rawMail struct {
	Enabled *bool     `yaml:"enabled"`
	Mode    *string   `yaml:"mode"`
	To      *[]string `yaml:"to"`
	Subject *string   `yaml:"subject"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
	}
	if layer.Mail != nil {
		if layer.Mail.Enabled != nil {
			c.Mail.Enabled = *layer.Mail.Enabled
		}
		if layer.Mail.Mode != nil {
			c.Mail.Mode = *layer.Mail.Mode
		}
		if layer.Mail.To != nil {
			c.Mail.To = append([]string(nil), (*layer.Mail.To)...)
		}
		if layer.Mail.Subject != nil {
			c.Mail.Subject = *layer.Mail.Subject
		}
	}
}
