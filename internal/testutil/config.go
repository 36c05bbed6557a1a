package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/killuox/koi-launcher/internal/paths"
)

// WriteUserConfig writes content as the user config file under the current
// config root and returns its path. Point XDG_CONFIG_HOME at a temp dir first.
func WriteUserConfig(t *testing.T, content string) string {
	t.Helper()

	root, err := paths.ConfigRoot()
	if err != nil {
		t.Fatalf("resolve config root: %v", err)
	}

	if err := os.MkdirAll(root, 0o700); err != nil {
		t.Fatalf("create %s: %v", root, err)
	}

	path := filepath.Join(root, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
