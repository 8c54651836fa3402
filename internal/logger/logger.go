// Package logger builds the slog loggers used by the multipole commands.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type settings struct {
	format  Format
	level   slog.Level
	source  bool
	writers []io.Writer
}

func (s *settings) writer() io.Writer {
	switch len(s.writers) {
	case 0:
		return os.Stdout
	case 1:
		return s.writers[0]
	}
	return io.MultiWriter(s.writers...)
}

// New returns a *slog.Logger. Without options it writes info-level text to
// os.Stdout.
func New(opts ...Option) *slog.Logger {
	s := &settings{format: FormatText, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(s)
	}

	w := s.writer()
	ho := &slog.HandlerOptions{Level: s.level, AddSource: s.source}
	switch s.format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, ho))
	case FormatPretty:
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(s.level),
			ReportTimestamp: true,
			ReportCaller:    s.source,
		}))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// Nop returns a logger whose handler is disabled for every level.
func Nop() *slog.Logger { return slog.New(slog.DiscardHandler) }
