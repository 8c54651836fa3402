package config

const (
	defaultMaxPasses = 64
	defaultWorkers   = 4
	defaultMaxOrder  = 8

	defaultLogFormat    = LogFormatPretty
	defaultOutputFormat = OutputText
	defaultListen       = ":8080"
)

// Log formats.
const (
	LogFormatPretty = "pretty"
	LogFormatText   = "text"
	LogFormatJSON   = "json"
)

// Output formats.
const (
	OutputText  = "text"
	OutputLaTeX = "latex"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// NewDefaultConfig returns a Config with defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxPasses: defaultMaxPasses,
			Workers:   defaultWorkers,
			MaxOrder:  defaultMaxOrder,
		},
		Log: LogConfig{
			Format: defaultLogFormat,
		},
		Output: OutputConfig{
			Format: defaultOutputFormat,
		},
		Server: ServerConfig{
			Listen: defaultListen,
		},
	}
}
