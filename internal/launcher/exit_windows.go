//go:build windows

package launcher

import "os"

// Windows processes always report a numeric exit code.
func terminatingSignal(*os.ProcessState) (int, bool) {
	return 0, false
}
