// Package config loads the multipole configuration from multipole.toml,
// MULTIPOLE_* environment variables and command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the config directory.
const FileName = "multipole.toml"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ParseConfigTOML decodes TOML data and fills unset fields with defaults.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadFile reads a config file. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfigTOML(data)
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig.
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Engine.MaxPasses == 0 {
		cfg.Engine.MaxPasses = defaults.Engine.MaxPasses
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = defaults.Engine.Workers
	}
	if cfg.Engine.MaxOrder == 0 {
		cfg.Engine.MaxOrder = defaults.Engine.MaxOrder
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaults.Output.Format
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("cannot encode nil config")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path. An existing file is only replaced when overwrite
// is set.
func Save(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if cfg.Engine.MaxPasses < 1 {
		return fmt.Errorf("%w: engine.max_passes must be positive, got %d", ErrInvalidConfig, cfg.Engine.MaxPasses)
	}
	if cfg.Engine.Workers < 1 {
		return fmt.Errorf("%w: engine.workers must be positive, got %d", ErrInvalidConfig, cfg.Engine.Workers)
	}
	if cfg.Engine.MaxOrder < 0 {
		return fmt.Errorf("%w: engine.max_order must not be negative, got %d", ErrInvalidConfig, cfg.Engine.MaxOrder)
	}
	if !slices.Contains([]string{LogFormatPretty, LogFormatText, LogFormatJSON}, cfg.Log.Format) {
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidConfig, cfg.Log.Format)
	}
	if !slices.Contains(OutputFormats(), cfg.Output.Format) {
		return fmt.Errorf("%w: unknown output.format %q", ErrInvalidConfig, cfg.Output.Format)
	}
	return nil
}

// OutputFormats lists the supported output.format values.
func OutputFormats() []string {
	return []string{OutputText, OutputLaTeX, OutputJSON, OutputYAML}
}
