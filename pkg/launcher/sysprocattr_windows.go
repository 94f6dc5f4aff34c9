//go:build windows
// +build windows

package launcher

import "syscall"

// sysProcAttr starts the child in a new process group so the console's
// Ctrl+C events are not delivered straight to the children.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
