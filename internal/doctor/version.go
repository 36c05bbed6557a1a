package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
)

var versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// probeVersion runs `koi --version` and returns its stdout.
func probeVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version") //nolint:gosec // G204: path comes from the static platform table
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", fmt.Errorf("koi --version timed out: %w", ctx.Err())
	}

	if err != nil {
		return "", fmt.Errorf("koi --version: %w", err)
	}

	return string(out), nil
}

// parseVersion extracts the first semantic version from koi's output.
func parseVersion(raw string) (*semver.Version, error) {
	match := versionPattern.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("no version in %q", firstLine(raw))
	}

	v, err := semver.NewVersion(match)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", match, err)
	}

	return v, nil
}

func meetsMinimum(found *semver.Version, minimum string) (bool, error) {
	minVer, err := semver.NewVersion(minimum)
	if err != nil {
		return false, fmt.Errorf("invalid koi.min_version %q: %w", minimum, err)
	}

	return !found.LessThan(minVer), nil
}
