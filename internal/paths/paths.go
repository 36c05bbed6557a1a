// Package paths resolves the directories the launcher reads from and writes to.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appName = "koi-launcher"

// executable is swapped in tests.
var executable = os.Executable

// userDir describes how one per-user directory is located. Lookup order is
// the absolute XDG variable, then the OS default (if any), then a path
// under the home directory.
type userDir struct {
	xdgVar    string
	osDefault func() (string, error)
	homeRel   string
}

var (
	configDir = userDir{xdgVar: "XDG_CONFIG_HOME", osDefault: os.UserConfigDir, homeRel: ".config"}
	// Go has no OS state directory; every platform falls back to ~/.local/state.
	stateDir = userDir{xdgVar: "XDG_STATE_HOME", homeRel: filepath.Join(".local", "state")}
)

func (d userDir) resolve() (string, error) {
	if xdg := os.Getenv(d.xdgVar); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	var osErr error

	if d.osDefault != nil {
		root, err := d.osDefault()
		if err == nil && root != "" {
			return filepath.Join(root, appName), nil
		}

		osErr = err
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, d.homeRel, appName), nil
	}

	if osErr != nil {
		return "", osErr
	}

	return "", errors.New("cannot determine home directory")
}

// InstallDir returns the directory holding the running executable after
// symlink resolution, so a koi symlink on PATH still finds the bundled
// platform binaries.
func InstallDir() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable symlinks: %w", err)
	}

	return filepath.Dir(resolved), nil
}

// ConfigRoot returns the per-user config directory.
func ConfigRoot() (string, error) {
	return configDir.resolve()
}

// LogsDir returns the directory the default log file lives in.
func LogsDir() (string, error) {
	root, err := stateDir.resolve()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, "logs"), nil
}

// DefaultLogFile returns the log file used when file logging has no
// explicit path.
func DefaultLogFile() (string, error) {
	dir, err := LogsDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, appName+".log"), nil
}
