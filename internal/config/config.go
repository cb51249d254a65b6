// Package config resolves CLI configuration from an optional YAML file,
// DOCSTORE_* environment variables and command-line overrides, in that order
// of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Ratio1/docstore_sdk_go/pkg/docstore"
)

// DefaultBaseURL is the store the CLI talks to when nothing else is configured.
const DefaultBaseURL = "https://give-me-feedback.firebaseio.com"

// Environment variables read by ApplyEnv.
const (
	EnvMode     = "DOCSTORE_RUNTIME_MODE"
	EnvURL      = "DOCSTORE_URL"
	EnvToken    = "DOCSTORE_TOKEN"
	EnvMockSeed = "DOCSTORE_MOCK_SEED"
	EnvLogLevel = "DOCSTORE_LOG_LEVEL"
	EnvLogFmt   = "DOCSTORE_LOG_FORMAT"
)

// Config is the resolved CLI configuration.
type Config struct {
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"`
	MockSeed string `yaml:"mock_seed"`
	Log      Log    `yaml:"log"`
}

// Log configures the zap logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Mode:    docstore.ModeAuto,
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultPath returns ~/.config/docstore/config.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "docstore", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "docstore", "config.yaml")
}

// Load reads the YAML file at path on top of Default and then applies the
// process environment. An empty path falls back to DefaultPath, which is
// skipped silently when it does not exist.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(fs, path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) readFile(fs afero.Fs, path string, required bool) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from DOCSTORE_* variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvMode, &c.Mode)
	set(EnvURL, &c.BaseURL)
	set(EnvToken, &c.Token)
	set(EnvMockSeed, &c.MockSeed)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFmt, &c.Log.Format)
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch strings.ToLower(c.Mode) {
	case "", docstore.ModeAuto, docstore.ModeHTTP, docstore.ModeMock:
	default:
		result = multierror.Append(result, fmt.Errorf("mode: unsupported value %q", c.Mode))
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("base_url: %w", err))
		} else if u.Scheme == "" || u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("base_url: %q must be an absolute URL", c.BaseURL))
		}
	} else if strings.ToLower(c.Mode) == docstore.ModeHTTP {
		result = multierror.Append(result, errors.New("base_url: required in http mode"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format: unsupported value %q", c.Log.Format))
	}

	return result.ErrorOrNil()
}

// Settings converts the configuration into docstore.Open settings.
func (c *Config) Settings(fs afero.Fs) docstore.Settings {
	return docstore.Settings{
		Mode:         c.Mode,
		BaseURL:      c.BaseURL,
		Token:        c.Token,
		MockSeedPath: c.MockSeed,
		Fs:           fs,
	}
}
