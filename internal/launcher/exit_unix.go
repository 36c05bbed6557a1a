//go:build !windows

package launcher

import (
	"os"
	"syscall"
)

func terminatingSignal(state *os.ProcessState) (int, bool) {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}

	return int(ws.Signal()), true
}
