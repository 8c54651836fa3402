package logger

import (
	"io"
	"log/slog"
)

// Format names the handler New builds. It matches the log.format config values.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Option adjusts the handler built by New.
type Option func(*settings)

// WithFormat picks the handler. Unknown formats fall back to text.
func WithFormat(f Format) Option {
	return func(s *settings) { s.format = f }
}

// WithLevel sets the minimum level that is written.
func WithLevel(l slog.Level) Option {
	return func(s *settings) { s.level = l }
}

// WithDebug lowers the level to Debug when debug is set.
func WithDebug(debug bool) Option {
	if debug {
		return WithLevel(slog.LevelDebug)
	}
	return WithLevel(slog.LevelInfo)
}

// WithWriter sends output to ws, combined when there are several. With no
// writers the logger keeps writing to os.Stdout.
func WithWriter(ws ...io.Writer) Option {
	return func(s *settings) { s.writers = ws }
}

// WithSource annotates every record with the caller's file and line
// (log.source).
func WithSource(source bool) Option {
	return func(s *settings) { s.source = source }
}
