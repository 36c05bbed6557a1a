package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/killuox/koi-launcher/internal/platform"
)

// FakeKoiScript is a stand-in koi program. It records its arguments, one
// per line, to $KOI_FAKE_ARGS_FILE when set, echoes $KOI_FAKE_STDOUT to
// stdout, copies stdin to $KOI_FAKE_STDIN_FILE when set, and exits with
// $KOI_FAKE_EXIT (default 0).
const FakeKoiScript = `#!/bin/sh
if [ -n "$KOI_FAKE_ARGS_FILE" ]; then
	: > "$KOI_FAKE_ARGS_FILE"
	for arg in "$@"; do
		printf '%s\n' "$arg" >> "$KOI_FAKE_ARGS_FILE"
	done
fi
if [ -n "$KOI_FAKE_STDIN_FILE" ]; then
	cat > "$KOI_FAKE_STDIN_FILE"
fi
if [ -n "$KOI_FAKE_STDOUT" ]; then
	printf '%s\n' "$KOI_FAKE_STDOUT"
fi
if [ -n "$KOI_FAKE_STDERR" ]; then
	printf '%s\n' "$KOI_FAKE_STDERR" >&2
fi
exit "${KOI_FAKE_EXIT:-0}"
`

// SkipIfNoShell skips tests that rely on /bin/sh fake binaries.
func SkipIfNoShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake koi binaries are shell scripts")
	}
}

// WriteFakeKoi installs script as the koi binary for key under baseDir,
// creating the platform subdirectory, and returns the binary path.
func WriteFakeKoi(t *testing.T, baseDir string, key platform.Key, script string) string {
	t.Helper()

	path := platform.BinaryPath(baseDir, key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec // G306: test binary must be executable
		t.Fatalf("write fake koi %s: %v", path, err)
	}

	return path
}
