package config

// Config is the multipole configuration, stored as multipole.toml. The TOML
// layout uses one section per concern.
type Config struct {
	Engine EngineConfig `toml:"engine" mapstructure:"engine"`
	Log    LogConfig    `toml:"log" mapstructure:"log"`
	Output OutputConfig `toml:"output" mapstructure:"output"`
	Server ServerConfig `toml:"server" mapstructure:"server"`
}

// EngineConfig bounds the symbolic work done per request.
type EngineConfig struct {
	// MaxPasses caps the expand/contract fixed-point loop.
	MaxPasses int `toml:"max_passes,omitempty" mapstructure:"max_passes"`

	// Workers bounds the pairing-count branches built concurrently.
	Workers int `toml:"workers,omitempty" mapstructure:"workers"`

	// MaxOrder is the highest tensor order a caller may request.
	MaxOrder int `toml:"max_order,omitempty" mapstructure:"max_order"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Debug  bool   `toml:"debug" mapstructure:"debug"`
	Format string `toml:"format,omitempty" mapstructure:"format"`

	// Source adds the caller's file:line to every record.
	Source bool `toml:"source" mapstructure:"source"`
}

// OutputConfig selects how the CLI renders expressions.
type OutputConfig struct {
	Format string `toml:"format,omitempty" mapstructure:"format"`
}

// ServerConfig holds the tool server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty" mapstructure:"listen"`

	// LogFile, when set, receives a JSON copy of the request log.
	LogFile string `toml:"log_file,omitempty" mapstructure:"log_file"`
}
