package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	multipole "github.com/njchilds90/gomultipole"
	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/internal/logger"
)

// engineFlags holds the flag targets shared by the computing commands. Values
// are read back through viper so that precedence is applied.
type engineFlags struct {
	maxPasses int
	workers   int
	maxOrder  int
	output    string
	logFormat string
}

var engineFlagKeys = []string{
	config.FlagMaxPasses,
	config.FlagWorkers,
	config.FlagMaxOrder,
	config.FlagOutput,
	config.FlagLogFormat,
	config.FlagDebug,
}

func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxPasses, &f.maxPasses)
	config.AddIntFlag(cmd, config.Flags, config.FlagWorkers, &f.workers)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxOrder, &f.maxOrder)
	config.AddStringFlag(cmd, config.Flags, config.FlagOutput, &f.output)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFormat, &f.logFormat)
}

// loadConfig layers multipole.toml, the environment and the given flags.
func loadConfig(cmd *cobra.Command, keys []string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadWithFlags(path, cmd, keys)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logger.New(
		logger.WithFormat(logger.Format(cfg.Log.Format)),
		logger.WithDebug(cfg.Log.Debug),
		logger.WithSource(cfg.Log.Source),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

// run is the state shared by one invocation of a computing command.
type run struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *multipole.Service
}

func newRun(cmd *cobra.Command) (*run, error) {
	cfg, err := loadConfig(cmd, engineFlagKeys)
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, cfg)
	svc, err := multipole.NewService(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded config",
		"max_passes", cfg.Engine.MaxPasses,
		"workers", cfg.Engine.Workers,
		"max_order", cfg.Engine.MaxOrder,
	)
	return &run{cfg: cfg, logger: log, service: svc}, nil
}
