package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/killuox/koi-launcher/internal/platform"
	"github.com/killuox/koi-launcher/internal/testutil"
)

// streams backs execute's standard streams with files so the child
// inherits real descriptors, as it does in production.
type streams struct {
	stdin, stdout, stderr *os.File
}

func newStreams(t *testing.T, input string) *streams {
	t.Helper()

	dir := t.TempDir()

	open := func(name, content string) *os.File {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}

		f, err := os.OpenFile(path, os.O_RDWR, 0o600)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}

		t.Cleanup(func() { f.Close() })

		return f
	}

	return &streams{
		stdin:  open("stdin", input),
		stdout: open("stdout", ""),
		stderr: open("stderr", ""),
	}
}

func (s *streams) read(t *testing.T, f *os.File) string {
	t.Helper()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read %s: %v", f.Name(), err)
	}

	return string(data)
}

// isolateLauncher points the launcher at a fresh install directory and
// keeps user config out of the test.
func isolateLauncher(t *testing.T) string {
	t.Helper()

	installDir := t.TempDir()
	t.Setenv("KOI_LAUNCHER_INSTALL_DIR", installDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("KOI_LAUNCHER_LOG_STDERR", "off")

	return installDir
}

func TestExecute_PropagatesChildExitCode(t *testing.T) {
	testutil.SkipIfNoShell(t)

	installDir := isolateLauncher(t)
	testutil.WriteFakeKoi(t, installDir, platform.Current(), testutil.FakeKoiScript)

	for _, code := range []int{0, 1, 2, 127} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			t.Setenv("KOI_FAKE_EXIT", strconv.Itoa(code))

			s := newStreams(t, "")
			if got := execute(nil, s.stdin, s.stdout, s.stderr); got != code {
				t.Errorf("execute() = %d, want %d", got, code)
			}

			if stderr := s.read(t, s.stderr); stderr != "" {
				t.Errorf("launcher wrote to stderr: %q", stderr)
			}
		})
	}
}

func TestExecute_MissingBinary(t *testing.T) {
	installDir := isolateLauncher(t)

	s := newStreams(t, "")
	if got := execute([]string{"--version"}, s.stdin, s.stdout, s.stderr); got != 1 {
		t.Fatalf("execute() = %d, want 1", got)
	}

	wantPath := platform.BinaryPath(installDir, platform.Current())

	stderr := s.read(t, s.stderr)
	if !strings.Contains(stderr, wantPath) {
		t.Errorf("stderr = %q, want it to name %q", stderr, wantPath)
	}

	if stdout := s.read(t, s.stdout); stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

func TestExecute_ForwardsLauncherLookingFlags(t *testing.T) {
	testutil.SkipIfNoShell(t)

	installDir := isolateLauncher(t)
	testutil.WriteFakeKoi(t, installDir, platform.Current(), testutil.FakeKoiScript)

	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("KOI_FAKE_ARGS_FILE", argsFile)

	args := []string{"--help", "-h", "--version", "help", "__complete", "a b", "--log-level=debug"}

	for _, argv := range [][]string{
		args,
		args[4:],
		{"--profile", "dev", "__complete", "x"},
		{"-p", "dev", "__completeNoDesc", "serve"},
	} {
		if err := os.Remove(argsFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("reset args file: %v", err)
		}

		s := newStreams(t, "")
		if got := execute(argv, s.stdin, s.stdout, s.stderr); got != 0 {
			t.Fatalf("execute(%q) = %d, want 0 (stderr %q)", argv, got, s.read(t, s.stderr))
		}

		data, err := os.ReadFile(argsFile)
		if err != nil {
			t.Fatalf("read args: %v", err)
		}

		if got := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"); strings.Join(got, "|") != strings.Join(argv, "|") {
			t.Errorf("child argv = %q, want %q", got, argv)
		}
	}
}

func TestExecute_InheritsStreamsAndEnvironment(t *testing.T) {
	testutil.SkipIfNoShell(t)

	installDir := isolateLauncher(t)
	testutil.WriteFakeKoi(t, installDir, platform.Current(), testutil.FakeKoiScript)

	stdinCopy := filepath.Join(t.TempDir(), "stdin")
	t.Setenv("KOI_FAKE_STDIN_FILE", stdinCopy)
	t.Setenv("KOI_FAKE_STDOUT", "hello from koi")
	t.Setenv("KOI_FAKE_STDERR", "warning from koi")

	s := newStreams(t, "line one\nline two\n")
	if got := execute(nil, s.stdin, s.stdout, s.stderr); got != 0 {
		t.Fatalf("execute() = %d, want 0", got)
	}

	if got := s.read(t, s.stdout); got != "hello from koi\n" {
		t.Errorf("stdout = %q", got)
	}

	if got := s.read(t, s.stderr); got != "warning from koi\n" {
		t.Errorf("stderr = %q", got)
	}

	data, err := os.ReadFile(stdinCopy)
	if err != nil {
		t.Fatalf("read stdin copy: %v", err)
	}

	if string(data) != "line one\nline two\n" {
		t.Errorf("child stdin = %q", string(data))
	}
}

func TestExecute_MalformedConfigFails(t *testing.T) {
	isolateLauncher(t)
	testutil.WriteUserConfig(t, "log: [\n")

	s := newStreams(t, "")
	if got := execute(nil, s.stdin, s.stdout, s.stderr); got != 1 {
		t.Fatalf("execute() = %d, want 1", got)
	}

	if stderr := s.read(t, s.stderr); !strings.Contains(stderr, "Invalid launcher configuration") {
		t.Errorf("stderr = %q, want config error", stderr)
	}
}

func TestExecute_InvalidLogLevel(t *testing.T) {
	isolateLauncher(t)
	t.Setenv("KOI_LAUNCHER_LOG_LEVEL", "loud")

	s := newStreams(t, "")
	if got := execute(nil, s.stdin, s.stdout, s.stderr); got != 1 {
		t.Fatalf("execute() = %d, want 1", got)
	}

	if stderr := s.read(t, s.stderr); !strings.Contains(stderr, "Invalid logging configuration") {
		t.Errorf("stderr = %q, want logging error", stderr)
	}
}

func TestExecute_LogFileCapturesLaunch(t *testing.T) {
	testutil.SkipIfNoShell(t)

	installDir := isolateLauncher(t)
	testutil.WriteFakeKoi(t, installDir, platform.Current(), testutil.FakeKoiScript)

	logFile := filepath.Join(t.TempDir(), "launcher.log")
	t.Setenv("KOI_LAUNCHER_LOG_FILE", logFile)
	t.Setenv("KOI_FAKE_EXIT", "3")

	s := newStreams(t, "")
	if got := execute([]string{"status"}, s.stdin, s.stdout, s.stderr); got != 3 {
		t.Fatalf("execute() = %d, want 3", got)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	for _, want := range []string{`"msg":"koi exited"`, `"koi.exit_code":3`, `"command.path":"koi"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %s:\n%s", want, data)
		}
	}

	if got := s.read(t, s.stderr); got != "" {
		t.Errorf("stderr = %q, want logs kept out of koi's stream", got)
	}
}
