// Package observability provides structured logging and tracing for the launcher.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/killuox/koi-launcher/internal/paths"
)

const (
	redactedValue = "[REDACTED]"

	// maxLogBytes is the size at which the log file is rotated on open.
	maxLogBytes = 10 << 20
	// maxLogBackups is the number of rotated files kept (.1 newest).
	maxLogBackups = 3
)

var logLevels = map[string]slog.Level{
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"debug":   slog.LevelDebug,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Attribute keys containing any of these fragments are logged as redactedValue.
var secretKeyFragments = []string{"token", "secret", "password", "credential", "api_key", "apikey"}

type contextKey struct{}

// Config holds the configuration for the observability logger.
type Config struct {
	Level          string
	Format         string
	LogFile        string
	StderrMode     string
	InteractiveTTY bool
	// DefaultFileFallback sends logs to paths.DefaultLogFile when no other
	// sink is enabled. Without it the logger discards records instead.
	DefaultFileFallback bool
	InvocationID        string
	CommandPath         string
	Version             string
	Commit              string
	// Stderr is the stderr sink; os.Stderr when nil.
	Stderr io.Writer
}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return slog.Default()
}

// NewLogger creates a structured logger from the given configuration.
// The returned cleanup closes any opened log file and is never nil.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(cfg.Level))]
	if !ok {
		return nil, nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", cfg.Level)
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format != "" && format != "json" && format != "text" {
		return nil, nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", cfg.Format)
	}

	stderrOn, err := stderrEnabled(cfg.StderrMode, cfg.InteractiveTTY)
	if err != nil {
		return nil, nil, err
	}

	sink, closeSink, err := openSinks(cfg, stderrOn)
	if err != nil {
		return nil, nil, err
	}

	if sink == nil {
		return slog.New(slog.DiscardHandler), closeSink, nil
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactAttr}

	var handler slog.Handler = slog.NewJSONHandler(sink, opts)
	if format == "text" {
		handler = slog.NewTextHandler(sink, opts)
	}

	logger := slog.New(handler).With(
		slog.String("invocation.id", cfg.InvocationID),
		slog.String("command.path", cfg.CommandPath),
		slog.String("launcher.version", cfg.Version),
		slog.String("launcher.commit", cfg.Commit),
	)

	return logger, closeSink, nil
}

// openSinks returns the combined log destination, or nil when logging is off.
func openSinks(cfg *Config, stderrOn bool) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	logFile := strings.TrimSpace(cfg.LogFile)
	if logFile == "" && !stderrOn && cfg.DefaultFileFallback {
		if fallback, err := paths.DefaultLogFile(); err == nil {
			logFile = fallback
		}
	}

	var sinks []io.Writer

	if stderrOn {
		if cfg.Stderr != nil {
			sinks = append(sinks, cfg.Stderr)
		} else {
			sinks = append(sinks, os.Stderr)
		}
	}

	closeFn := noop

	if logFile != "" {
		file, err := openLogFile(logFile)
		if err != nil {
			return nil, nil, err
		}

		sinks = append(sinks, file)
		closeFn = file.Close
	}

	switch len(sinks) {
	case 0:
		return nil, noop, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return io.MultiWriter(sinks...), closeFn, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log file directory: %w", err)
	}

	if err := rotateLogFile(path, maxLogBytes, maxLogBackups); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// rotateLogFile moves path to path.1 once it reaches maxBytes. Older
// backups shift up by one and anything past maxBackups is dropped.
func rotateLogFile(path string, maxBytes int64, maxBackups int) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}

	if info.Size() < maxBytes {
		return nil
	}

	backup := func(n int) string { return path + "." + strconv.Itoa(n) }

	if err := os.Remove(backup(maxBackups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove oldest log backup: %w", err)
	}

	for n := maxBackups - 1; n >= 1; n-- {
		if err := os.Rename(backup(n), backup(n+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("shift log backup %d: %w", n, err)
		}
	}

	if err := os.Rename(path, backup(1)); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}

	return nil
}

// stderrEnabled interprets log.stderr. "auto" logs to stderr only when no
// one is watching the terminal.
func stderrEnabled(mode string, interactive bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !interactive, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}

	return false, fmt.Errorf("invalid log.stderr value %q (allowed: auto, on, off)", mode)
}

func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)
	if key == "authorization" {
		return slog.String(attr.Key, redactedValue)
	}

	for _, fragment := range secretKeyFragments {
		if strings.Contains(key, fragment) {
			return slog.String(attr.Key, redactedValue)
		}
	}

	return attr
}
