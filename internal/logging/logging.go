package logging

import (
	"io"
	"log/slog"
	"os"
)

// Option configures the logger built by New.
type Option func(*config)

type config struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum level. A *slog.LevelVar may be passed to change
// the level at runtime.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the destination writer.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithColors enables ANSI colors in the compact format.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
	}
}

// New returns a logger backed by a Handler. Without options it reads level
// and format from the environment and writes to stderr, coloring output when
// stderr is a terminal.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	cfg.colors = isTerminal(cfg.output)
	for _, opt := range opts {
		opt(cfg)
	}

	return slog.New(NewHandler(&HandlerOptions{
		Format: cfg.format,
		Level:  cfg.level,
		Output: cfg.output,
		Colors: cfg.colors && cfg.format == FormatCompact,
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
