// Package doctor provides diagnostic checks for a koi launcher install.
//
// Checks run in a fixed order and cover:
//   - host platform recognition
//   - the install directory
//   - presence and executability of the koi binary
//   - the koi version against an optional minimum
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/killuox/koi-launcher/internal/platform"
)

// DefaultVersionTimeout bounds the `koi --version` probe.
const DefaultVersionTimeout = 5 * time.Second

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Options describes the install being diagnosed.
type Options struct {
	// GOOS is the host identifier; runtime.GOOS when empty.
	GOOS string
	// InstallDir is the base directory koi binaries are resolved against.
	InstallDir string
	// InstallDirErr is set when the install directory could not be located.
	InstallDirErr error
	// MinVersion is the lowest acceptable koi version; empty disables the
	// comparison.
	MinVersion string
	// VersionTimeout bounds the version probe; DefaultVersionTimeout when zero.
	VersionTimeout time.Duration
}

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a runner with the default checks for the described install.
func New(opts Options) *Runner {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}

	if opts.VersionTimeout <= 0 {
		opts.VersionTimeout = DefaultVersionTimeout
	}

	key := platform.Resolve(opts.GOOS)
	s := &install{
		opts: opts,
		key:  key,
		path: platform.BinaryPath(opts.InstallDir, key),
	}

	r := &Runner{}
	r.AddCheck("Platform", s.checkPlatform)
	r.AddCheck("Install Directory", s.checkInstallDir)
	r.AddCheck("koi Binary", s.checkBinary)
	r.AddCheck("Executable", s.checkExecutable)
	r.AddCheck("koi Version", s.checkVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks in order and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// install carries the state shared by the default checks. Later checks
// consult what earlier ones found so a missing binary is reported once.
type install struct {
	opts Options
	key  platform.Key
	path string

	binaryFound bool
	executable  bool
}

func (s *install) checkPlatform(context.Context) Result {
	label := fmt.Sprintf("%s/%s (%s)", s.key, s.key.Arch(), s.key.Subdir())

	if !platform.Known(s.opts.GOOS) {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s not recognized, using %s", s.opts.GOOS, label),
			Detail:  "The linux build may not run on this host",
		}
	}

	return Result{Status: StatusPass, Message: label}
}

func (s *install) checkInstallDir(context.Context) Result {
	if s.opts.InstallDirErr != nil {
		return Result{
			Status:  StatusFail,
			Message: "Cannot locate the launcher",
			Detail:  s.opts.InstallDirErr.Error(),
		}
	}

	info, err := os.Stat(s.opts.InstallDir)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: s.opts.InstallDir,
			Detail:  err.Error(),
		}
	}

	if !info.IsDir() {
		return Result{
			Status:  StatusFail,
			Message: s.opts.InstallDir,
			Detail:  "Not a directory",
		}
	}

	return Result{Status: StatusPass, Message: s.opts.InstallDir}
}

func (s *install) checkBinary(context.Context) Result {
	// Without a base directory the path would resolve against the working
	// directory and could match an unrelated file.
	if s.opts.InstallDirErr != nil || s.opts.InstallDir == "" {
		return Result{Status: StatusWarn, Message: "Skipped (install directory unknown)"}
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{
				Status:  StatusFail,
				Message: "Not found",
				Detail:  s.path,
			}
		}

		return Result{
			Status:  StatusFail,
			Message: s.path,
			Detail:  err.Error(),
		}
	}

	if info.IsDir() {
		return Result{
			Status:  StatusFail,
			Message: s.path,
			Detail:  "Is a directory, not a file",
		}
	}

	s.binaryFound = true

	return Result{Status: StatusPass, Message: s.path}
}

func (s *install) checkExecutable(context.Context) Result {
	if !s.binaryFound {
		return skipped()
	}

	if err := executable(s.path); err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Not executable",
			Detail:  err.Error(),
		}
	}

	s.executable = true

	return Result{Status: StatusPass, Message: "OK"}
}

func (s *install) checkVersion(ctx context.Context) Result {
	if !s.executable {
		return skipped()
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.opts.VersionTimeout)
	defer cancel()

	raw, err := probeVersion(probeCtx, s.path)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Found but version unknown",
			Detail:  err.Error(),
		}
	}

	found, err := parseVersion(raw)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Found but version unknown",
			Detail:  firstLine(raw),
		}
	}

	if s.opts.MinVersion == "" {
		return Result{Status: StatusPass, Message: "v" + found.String()}
	}

	ok, err := meetsMinimum(found, s.opts.MinVersion)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "v" + found.String(),
			Detail:  err.Error(),
		}
	}

	if !ok {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("v%s (requires >= %s)", found, strings.TrimPrefix(s.opts.MinVersion, "v")),
			Detail:  "Install a launcher package that bundles a newer koi",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (>= %s)", found, strings.TrimPrefix(s.opts.MinVersion, "v")),
	}
}

func skipped() Result {
	return Result{Status: StatusWarn, Message: "Skipped (koi binary unusable)"}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}

	return s
}
