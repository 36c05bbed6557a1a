// Package main is koictl, read-only maintenance tooling for a koi launcher
// install: where the koi binary resolves to, whether it is healthy, and
// how the launcher is configured.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/killuox/koi-launcher/internal/buildinfo"
	"github.com/killuox/koi-launcher/internal/config"
	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/observability"
	"github.com/killuox/koi-launcher/internal/output"
	"github.com/killuox/koi-launcher/internal/paths"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Restore cursor visibility if a panic interrupts a spinner.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprint(os.Stderr, "\033[?25h")
			panic(r)
		}
	}()

	out := output.Default()

	if err := newRootCmdWithWriter(out).Execute(); err != nil {
		return handleError(out, err)
	}

	return clierrors.ExitSuccess
}

// handleError formats and displays a CLI error, returning the exit code.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Error())

		if cliErr.Hint != "" {
			out.Hint("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	// Format: "unknown command \"xyz\" for \"koictl\"\n\nDid you mean this?\n\t..."
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)

		if !strings.Contains(errStr, "--help") {
			out.Hint("Run 'koictl --help' for usage")
		}

		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)

	return clierrors.ExitGeneral
}

// install is the resolved install and configuration shared by commands.
type install struct {
	locateErr error
	cfg       *config.Config
}

type installKey struct{}

func installFromContext(ctx context.Context) *install {
	if in, ok := ctx.Value(installKey{}).(*install); ok {
		return in
	}

	return &install{}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithWriter(output.Default())
}

// globalFlags are the persistent flags every koictl command accepts.
type globalFlags struct {
	json, quiet, noColor bool

	logLevel, logFormat, logFile, logStderr string
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.json, "json", false, "Output in JSON format")
	fs.BoolVar(&f.quiet, "quiet", false, "Minimal output (for CI)")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: error, warn, info, debug")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: json, text")
	fs.StringVar(&f.logFile, "log-file", "", "Structured log file path")
	fs.StringVar(&f.logStderr, "log-stderr", "", "Structured logging to stderr: auto, on, off")
}

// loggerConfig merges log flags over cfg. Unlike koi, koictl logs to stderr
// when not attached to a terminal and falls back to the default log file.
func (f *globalFlags) loggerConfig(cmd *cobra.Command, cfg *config.Config, interactive bool) *observability.Config {
	return &observability.Config{
		Level:               pickFlagOrConfig(f.logLevel, cfg.LogLevel()),
		Format:              pickFlagOrConfig(f.logFormat, cfg.LogFormat()),
		LogFile:             pickFlagOrConfig(f.logFile, cfg.LogFile()),
		StderrMode:          pickFlagOrConfig(f.logStderr, cfg.LogStderr("auto")),
		InteractiveTTY:      interactive,
		DefaultFileFallback: true,
		InvocationID:        uuid.NewString(),
		CommandPath:         cmd.CommandPath(),
		Version:             buildinfo.Version,
		Commit:              buildinfo.Commit,
	}
}

func newRootCmdWithWriter(out *output.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "koictl",
		Short: "Inspect and diagnose a koi launcher install",
		Long: `koictl inspects the koi launcher installed next to it: where the bundled
koi binary for this platform lives, whether it can run, and which settings
the launcher will use. It never downloads or modifies anything.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return prepare(cmd, out, flags)
		},
		SuggestionsMinimumDistance: 2,
	}

	flags.register(rootCmd.PersistentFlags())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, "Run '%s --help' for available flags", "%s", err)
	})

	rootCmd.AddCommand(
		newWhereCmd(),
		newDoctorCmd(),
		newLayoutCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// prepare loads configuration, installs the logger and tracer, and stores
// everything subcommands need in the command context.
func prepare(cmd *cobra.Command, out *output.Writer, flags *globalFlags) error {
	out.JSON = flags.json
	out.Quiet = flags.quiet

	if flags.noColor {
		out.SetNoColor(true)
		color.NoColor = true
	}

	dir, locateErr := paths.InstallDir()

	cfg, err := config.Load(dir)
	if err != nil {
		return clierrors.ConfigInvalid(err)
	}

	logger, closeLog, err := observability.NewLogger(flags.loggerConfig(cmd, cfg, out.Terminal().Interactive()))
	if err != nil {
		return clierrors.LoggingInvalid(err)
	}

	slog.SetDefault(logger)

	ctx := observability.WithLogger(out.WithContext(cmd.Context()), logger)
	ctx = context.WithValue(ctx, installKey{}, &install{locateErr: locateErr, cfg: cfg})
	cmd.SetContext(ctx)

	cmd.PostRunE = chainCleanup(cmd.PostRunE, "logger resources", closeLog)

	shutdown, err := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
		Enabled:     cfg.TelemetryEnabled(),
		Endpoint:    cfg.TelemetryEndpoint(),
		ServiceName: "koictl",
		Version:     buildinfo.Version,
		Commit:      buildinfo.Commit,
	})
	if err != nil {
		logger.Warn("telemetry disabled", slog.String("error", err.Error()))
	}

	cmd.PostRunE = chainCleanup(cmd.PostRunE, "telemetry resources", func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return shutdown(flushCtx)
	})

	logger.Debug("koictl configuration",
		slog.String("install.dir", cfg.InstallDir()),
		slog.Any("config.files", cfg.Files()),
	)

	return nil
}

// chainCleanup runs cleanup after postRun, even when postRun fails. A
// postRun error takes precedence over a cleanup error.
func chainCleanup(postRun func(*cobra.Command, []string) error, name string, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var runErr error
		if postRun != nil {
			runErr = postRun(cmd, args)
		}

		cleanupErr := cleanup()

		switch {
		case runErr != nil:
			return runErr
		case cleanupErr != nil:
			return fmt.Errorf("cleanup %s: %w", name, cleanupErr)
		}

		return nil
	}
}

// pickFlagOrConfig prefers an explicit flag over the configured value
// (which already folds in KOI_LAUNCHER_* variables).
func pickFlagOrConfig(flagValue, configured string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}

	return configured
}

func usageError(cmd *cobra.Command, hintFormat, format string, args ...any) *clierrors.CLIError {
	return &clierrors.CLIError{
		Message: fmt.Sprintf(format, args...),
		Hint:    fmt.Sprintf(hintFormat, cmd.CommandPath()),
		Code:    clierrors.ExitUsage,
	}
}

// noArgs rejects positional arguments with a clear message (cobra.NoArgs
// reports them as an unknown command).
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd, "Run '%s --help' for usage", "'%s' accepts no arguments", cmd.CommandPath())
	}

	return nil
}

// exactArgs is the CLIError-returning counterpart of cobra.ExactArgs.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError(cmd, "Run '%s --help' for usage",
				"'%s' expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}

		return nil
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the launcher version, git commit, and build date.`,
		Example: `  koictl version
  koictl version --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			info := buildinfo.Current()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("koi-launcher %s\n", info.Version)
			out.Print("  commit: %s\n", orUnknown(info.Commit))
			out.Print("  built:  %s\n", orUnknown(info.Date))
			out.Print("  go:     %s\n", orUnknown(info.GoVersion))

			return nil
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
