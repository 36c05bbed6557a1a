//go:build !windows

package doctor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// executable reports whether the current user may execute path.
func executable(path string) error {
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("access %s: %w", path, err)
	}

	return nil
}
