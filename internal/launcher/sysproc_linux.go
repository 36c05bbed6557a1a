package launcher

import "syscall"

// sysProcAttr asks the kernel to send koi SIGTERM if the launcher dies
// first, so a SIGKILLed launcher does not leave koi running unattended.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
}
