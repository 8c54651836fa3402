package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment overrides, e.g. MULTIPOLE_ENGINE_WORKERS.
const EnvPrefix = "MULTIPOLE"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads multipole.toml and binds
// environment variables with the MULTIPOLE_ prefix.
//
// path may name a config file or a directory holding multipole.toml. When it
// is empty the working directory is searched. Only an explicitly named file
// must exist.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MULTIPOLE_ENGINE_MAX_PASSES, ...)
//  3. multipole.toml values
//  4. Defaults from NewDefaultConfig()
func InitViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)
	v.SetConfigType("toml")

	switch {
	case path == "":
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
	case filepath.Ext(path) == ".toml":
		v.SetConfigFile(path)
	default:
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("engine.max_passes", d.Engine.MaxPasses)
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.max_order", d.Engine.MaxOrder)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.source", d.Log.Source)

	v.SetDefault("output.format", d.Output.Format)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.log_file", d.Server.LogFile)
}

// FromViper decodes the layered settings into a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is InitViper followed by FromViper.
func Load(path string) (*Config, error) {
	v, err := InitViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// LoadWithFlags is Load with the registered flags in keys layered on top. Only
// flags the user set on cmd override the file and environment, so it can be
// called again later to reload with the same command line.
func LoadWithFlags(path string, cmd *cobra.Command, keys []string) (*Config, error) {
	v, err := InitViper(path)
	if err != nil {
		return nil, err
	}
	BindRegisteredFlags(v, cmd, Flags, keys)
	return FromViper(v)
}
