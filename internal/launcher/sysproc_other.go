//go:build !linux

package launcher

import "syscall"

// sysProcAttr leaves koi in the launcher's process group with default
// attributes.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
