// Package main is the koi launcher: it runs the koi build bundled for this
// platform with the caller's arguments and exits with koi's exit code.
//
// koi defines no flags of its own. Everything after the program name,
// including --help and --version, belongs to the bundled binary.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/killuox/koi-launcher/internal/buildinfo"
	"github.com/killuox/koi-launcher/internal/config"
	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/launcher"
	"github.com/killuox/koi-launcher/internal/observability"
	"github.com/killuox/koi-launcher/internal/output"
	"github.com/killuox/koi-launcher/internal/paths"
	"github.com/killuox/koi-launcher/internal/terminal"
)

const telemetryFlushTimeout = 2 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return execute(args, os.Stdin, os.Stdout, os.Stderr)
}

// execute runs the launcher with explicit standard streams and returns the
// process exit code.
func execute(args []string, stdin, stdout, stderr *os.File) int {
	term := terminal.DetectFiles(stdin, stdout, stderr)
	out := output.NewWriter(stdout, stderr, term)

	// Never intercept a double-click launch on Windows; koi decides.
	cobra.MousetrapHelpText = ""

	app := &launchApp{
		term:   term,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	if args == nil {
		args = []string{}
	}

	rootCmd := newRootCmd(app)

	// Cobra answers shell completion requests itself wherever the token
	// lands after its own flag stripping; those arguments still belong to koi.
	if slices.Contains(args, cobra.ShellCompRequestCmd) || slices.Contains(args, cobra.ShellCompNoDescRequestCmd) {
		if err := rootCmd.RunE(rootCmd, args); err != nil {
			return handleError(out, err)
		}

		return app.exitCode
	}

	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		return handleError(out, err)
	}

	return app.exitCode
}

// handleError prints a launcher failure to stderr and returns its exit code.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Error())

		if cliErr.Hint != "" {
			out.Hint("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	out.Failure("%s", err.Error())

	return clierrors.ExitGeneral
}

type launchApp struct {
	term     *terminal.Info
	stdin    *os.File
	stdout   *os.File
	stderr   *os.File
	exitCode int
}

func newRootCmd(app *launchApp) *cobra.Command {
	return &cobra.Command{
		Use:   "koi [args...]",
		Short: "Run the koi build bundled for this platform",
		// Arguments are koi's, not ours.
		DisableFlagParsing:    true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		SilenceUsage:          true,
		SilenceErrors:         true,
		CompletionOptions:     cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := app.launch(cmd.Context(), args)
			if err != nil {
				return err
			}

			app.exitCode = code

			return nil
		},
	}
}

func (a *launchApp) launch(ctx context.Context, args []string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	installDir, locateErr := paths.InstallDir()

	cfg, err := config.Load(installDir)
	if err != nil {
		return 0, clierrors.ConfigInvalid(err)
	}

	baseDir := cfg.InstallDir()
	if baseDir == "" {
		return 0, clierrors.InstallDirUnknown(locateErr)
	}

	logger, cleanup, err := observability.NewLogger(&observability.Config{
		Level:          cfg.LogLevel(),
		Format:         cfg.LogFormat(),
		LogFile:        cfg.LogFile(),
		StderrMode:     cfg.LogStderr("off"),
		InteractiveTTY: a.term.Interactive(),
		InvocationID:   uuid.NewString(),
		CommandPath:    "koi",
		Version:        buildinfo.Version,
		Commit:         buildinfo.Commit,
		Stderr:         a.stderr,
	})
	if err != nil {
		return 0, clierrors.LoggingInvalid(err)
	}

	defer func() { _ = cleanup() }()

	ctx = observability.WithLogger(ctx, logger)

	shutdown, err := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
		Enabled:  cfg.TelemetryEnabled(),
		Endpoint: cfg.TelemetryEndpoint(),
		Version:  buildinfo.Version,
		Commit:   buildinfo.Commit,
	})
	if err != nil {
		logger.Warn("telemetry initialization failed", slog.String("error", err.Error()))
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()

		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Debug("launcher configuration",
		slog.String("install.dir", baseDir),
		slog.Any("config.files", cfg.Files()),
		slog.Bool("signals.forward", cfg.ForwardSignals()),
	)

	l := launcher.New(
		launcher.WithBaseDir(baseDir),
		launcher.WithStdio(a.stdin, a.stdout, a.stderr),
		launcher.WithLogger(logger),
		launcher.WithSignalForwarding(cfg.ForwardSignals()),
	)

	result, err := l.Run(ctx, args)
	if err != nil {
		return 0, launchError(err)
	}

	return result.ExitCode, nil
}

// launchError maps launcher failures onto user-facing errors.
func launchError(err error) error {
	var notFound *launcher.BinaryNotFoundError
	if errors.As(err, &notFound) {
		return clierrors.BinaryNotFound(notFound.Path, notFound.Platform.String())
	}

	var spawnErr *launcher.SpawnError
	if errors.As(err, &spawnErr) {
		return clierrors.SpawnFailed(spawnErr.Path, spawnErr.Err)
	}

	return clierrors.Wrap(clierrors.ExitGeneral, "koi launch failed", err)
}
