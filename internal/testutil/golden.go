// Package testutil holds helpers shared by the launcher's tests.
package testutil

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Refresh golden files with: go test ./... -update
var update = flag.Bool("update", false, "rewrite golden files under testdata")

// AssertGolden compares got with testdata/<name>. Line endings are
// normalized so checkouts with CRLF conversion still match.
func AssertGolden(t *testing.T, got, name string) {
	t.Helper()

	path := filepath.Join("testdata", name)

	if *update {
		writeGolden(t, path, got)
		return
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing golden file %s (run with -update)", path)
	}

	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	want := strings.ReplaceAll(string(raw), "\r\n", "\n")
	got = strings.ReplaceAll(got, "\r\n", "\n")

	if got == want {
		return
	}

	line, gotLine, wantLine := firstDifference(got, want)
	t.Errorf("%s differs at line %d\n  got:  %q\n  want: %q\n\nfull output:\n%s\n(run with -update to accept)",
		path, line, gotLine, wantLine, got)
}

func writeGolden(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // G306: fixtures are checked in
		t.Fatalf("write golden file %s: %v", path, err)
	}

	t.Logf("updated %s", path)
}

// firstDifference returns the 1-based line where got and want diverge.
func firstDifference(got, want string) (line int, gotLine, wantLine string) {
	g := strings.Split(got, "\n")
	w := strings.Split(want, "\n")

	for i := 0; i < max(len(g), len(w)); i++ {
		var gl, wl string
		if i < len(g) {
			gl = g[i]
		}

		if i < len(w) {
			wl = w[i]
		}

		if gl != wl || i >= len(g) || i >= len(w) {
			return i + 1, gl, wl
		}
	}

	return 0, "", ""
}
