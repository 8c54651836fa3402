package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	multipole "github.com/njchilds90/gomultipole"
	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/internal/logger"
	"github.com/njchilds90/gomultipole/internal/server"
)

const serveLongDesc string = `Run the multipole HTTP tool server.

  POST /tool     execute a tool call
  GET  /schema   tool schema for agent registration
  GET  /health   liveness check
  GET  /metrics  Prometheus metrics

With --watch, edits to multipole.toml rebuild the engine without a restart.
Engine flags given on the command line keep precedence over the edited file.
The listen address and log settings are read once at startup.`

type serveCommander struct {
	flags   engineFlags
	listen  string
	logFile string
	watch   bool
}

// NewServeCmd returns the serve command. The standalone mcp-server binary
// runs it as its root.
func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	addEngineFlags(cmd, &cmder.flags)
	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)
	cmd.Flags().BoolVar(&cmder.watch, "watch", false, "Reload engine settings when multipole.toml changes")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	keys := append([]string{config.FlagListen, config.FlagLogFile}, engineFlagKeys...)
	cfg, err := loadConfig(cmd, keys)
	if err != nil {
		return err
	}

	log, closeLog, err := serverLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, err := multipole.NewService(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{ListenAddr: cfg.Server.Listen}, svc, log)
	if c.watch {
		path, _ := cmd.Flags().GetString("config")
		reload := func() (*config.Config, error) { return loadConfig(cmd, keys) }
		if err := reloadOnChange(ctx, srv, configTarget(path), reload, log); err != nil {
			return err
		}
	}
	return srv.Run(ctx)
}

// reloadOnChange rebuilds the service each time the config file changes.
// Flags given at startup still win over the edited file. The listen address
// and log settings stay as they were at startup.
func reloadOnChange(ctx context.Context, srv *server.Server, path string,
	reload func() (*config.Config, error), log *slog.Logger) error {
	updates, err := config.Watch(ctx, path, log, reload)
	if err != nil {
		return err
	}
	log.Info("watching config", "path", path)

	go func() {
		for cfg := range updates {
			svc, err := multipole.NewService(cfg, log)
			if err != nil {
				log.Warn("ignoring config change", "path", path, "error", err)
				continue
			}
			srv.SetService(svc)
		}
	}()
	return nil
}

// serverLogger logs to stderr and, with server.log_file set, also as JSON to
// that file.
func serverLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	console := newLogger(cmd, cfg)
	if cfg.Server.LogFile == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithDebug(cfg.Log.Debug),
		logger.WithSource(cfg.Log.Source),
		logger.WithWriter(f),
	)
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}
