// Package logging sets up the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout
// and ERROR+ to stderr.
type levelRouter struct {
	level  slog.Leveler
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// Options configures the logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // optional file receiving every level
	Stdout io.Writer
	Stderr io.Writer
}

// ParseLevel parses a level name. An empty name is INFO.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a logger from opts. The returned cleanup closes the log file,
// if one was opened, and is never nil.
func New(opts Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	stdoutW := opts.Stdout
	if stdoutW == nil {
		stdoutW = os.Stdout
	}
	stderrW := opts.Stderr
	if stderrW == nil {
		stderrW = os.Stderr
	}

	cleanup := func() {}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(stdoutW, f)
		stderrW = io.MultiWriter(stderrW, f)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var newHandler func(io.Writer, *slog.HandlerOptions) slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		newHandler = func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) }
	case "json":
		newHandler = func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) }
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	handler := &levelRouter{
		level:  level,
		stdout: newHandler(stdoutW, handlerOpts),
		stderr: newHandler(stderrW, handlerOpts),
	}
	return slog.New(handler), cleanup, nil
}

// Setup builds a logger from opts and installs it as the slog default.
func Setup(opts Options) (func(), error) {
	logger, cleanup, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cleanup, nil
}
