//go:build linux
// +build linux

package launcher

import "syscall"

// sysProcAttr places the child in its own process group, so terminal
// signals are delivered to the launcher and not directly to the children,
// and asks the kernel to send SIGTERM to the child if the launcher dies
// without running its own teardown.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
