// Package launcher locates the bundled koi binary for the host platform and
// runs it as a child process with the caller's arguments and standard
// streams, reporting the child's exit code.
//
// A Launcher is one-shot: Run spawns once, waits, and never retries.
package launcher

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/killuox/koi-launcher/internal/observability"
	"github.com/killuox/koi-launcher/internal/paths"
	"github.com/killuox/koi-launcher/internal/platform"
)

// FallbackExitCode is reported when the child terminated without a numeric
// exit status and no signal number is available either.
const FallbackExitCode = 1

const tracerName = "github.com/killuox/koi-launcher/internal/launcher"

// Result describes a finished child process.
type Result struct {
	// ExitCode is the code the launcher should exit with. It equals the
	// child's exit status, or 128+signal when the child was killed by a
	// signal, or FallbackExitCode.
	ExitCode int

	// Signaled reports whether the child was terminated by a signal.
	Signaled bool

	// Duration is the wall time between spawn and exit.
	Duration time.Duration
}

// Launcher resolves and runs the koi binary.
type Launcher struct {
	baseDir        string
	platform       platform.Key
	stdin          io.Reader
	stdout         io.Writer
	stderr         io.Writer
	env            []string
	logger         *slog.Logger
	forwardSignals bool
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithBaseDir sets the installation directory the platform subdirectories
// live under. Defaults to the directory of the running executable.
func WithBaseDir(dir string) Option {
	return func(l *Launcher) { l.baseDir = dir }
}

// WithPlatform overrides the detected platform key.
func WithPlatform(key platform.Key) Option {
	return func(l *Launcher) { l.platform = key }
}

// WithStdio sets the child's standard streams. When they are *os.File
// values the child inherits the descriptors directly.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithEnv sets the child's environment. A nil env inherits the launcher's
// environment unmodified.
func WithEnv(env []string) Option {
	return func(l *Launcher) { l.env = env }
}

// WithLogger sets the logger. Defaults to the logger carried by the Run
// context.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// WithSignalForwarding controls whether SIGTERM and SIGHUP received by the
// launcher are relayed to the child.
func WithSignalForwarding(enabled bool) Option {
	return func(l *Launcher) { l.forwardSignals = enabled }
}

// New creates a Launcher for the current platform with the process's own
// standard streams.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		platform:       platform.Current(),
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		forwardSignals: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.baseDir == "" {
		if dir, err := paths.InstallDir(); err == nil {
			l.baseDir = dir
		}
	}

	return l
}

// Resolve returns the platform key and the binary location for this
// invocation. It does not touch the filesystem.
func (l *Launcher) Resolve() (platform.Key, string) {
	return l.platform, platform.BinaryPath(l.baseDir, l.platform)
}

// Run resolves the koi binary, checks that it exists, starts it with args
// and waits for it to exit. A non-zero child exit is reported in Result,
// not as an error. Errors are *BinaryNotFoundError or *SpawnError.
//
// ctx carries the logger and trace parent only; cancelling it does not
// stop the child.
func (l *Launcher) Run(ctx context.Context, args []string) (*Result, error) {
	key, path := l.Resolve()

	logger := l.logger
	if logger == nil {
		logger = observability.FromContext(ctx)
	}

	logger = logger.With(
		slog.String("koi.platform", key.String()),
		slog.String("koi.path", path),
	)

	_, span := observability.Tracer(tracerName).Start(ctx, "koi.launch",
		trace.WithAttributes(
			attribute.String("koi.platform", key.String()),
			attribute.String("koi.arch", key.Arch()),
			attribute.String("koi.path", path),
			attribute.Int("koi.args.count", len(args)),
		),
	)
	defer span.End()

	if err := checkBinary(path, key); err != nil {
		logger.Error("koi binary missing")
		span.RecordError(err)
		span.SetStatus(codes.Error, "binary not found")

		return nil, err
	}

	cmd := exec.Command(path, args...) //nolint:gosec // G204: path comes from the static platform table
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	cmd.Env = l.env
	cmd.SysProcAttr = sysProcAttr()

	relay := newSignalRelay(l.forwardSignals, logger)
	defer relay.stop()

	started := time.Now()

	if err := cmd.Start(); err != nil {
		spawnErr := &SpawnError{Path: path, Err: err}

		logger.Error("koi spawn failed", slog.String("error", err.Error()))
		span.RecordError(spawnErr)
		span.SetStatus(codes.Error, "spawn failed")

		return nil, spawnErr
	}

	relay.attach(cmd.Process)

	logger.Debug("koi started",
		slog.Int("koi.pid", cmd.Process.Pid),
		slog.Int("koi.args.count", len(args)),
	)

	waitErr := cmd.Wait()

	result := &Result{Duration: time.Since(started)}
	result.ExitCode, result.Signaled = exitStatus(cmd.ProcessState)

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		// The child ran but copying a non-file stream failed.
		logger.Warn("koi stream copy failed", slog.String("error", waitErr.Error()))
	}

	span.SetAttributes(
		attribute.Int("koi.exit_code", result.ExitCode),
		attribute.Bool("koi.signaled", result.Signaled),
	)

	logger.Info("koi exited",
		slog.Int("koi.exit_code", result.ExitCode),
		slog.Bool("koi.signaled", result.Signaled),
		slog.Duration("koi.duration", result.Duration),
	)

	return result, nil
}

func checkBinary(path string, key platform.Key) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &BinaryNotFoundError{Path: path, Platform: key}
		}
	}

	// Any other stat failure surfaces from the spawn attempt.
	return nil
}

// exitStatus maps a finished process state to the launcher's exit code.
func exitStatus(state *os.ProcessState) (int, bool) {
	if state == nil {
		return FallbackExitCode, false
	}

	if code := state.ExitCode(); code >= 0 {
		return code, false
	}

	if signo, ok := terminatingSignal(state); ok {
		return 128 + signo, true
	}

	return FallbackExitCode, false
}
