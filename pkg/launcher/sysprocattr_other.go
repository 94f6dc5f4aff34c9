//go:build !linux && !windows
// +build !linux,!windows

package launcher

import "syscall"

// sysProcAttr places the child in its own process group, so terminal
// signals are delivered to the launcher and not directly to the children.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
