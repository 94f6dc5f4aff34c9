//go:build !windows
// +build !windows

package launcher

import (
	sys "golang.org/x/sys/unix"
)

// terminateProcess delivers SIGTERM to the child's process group. The child
// is the group leader, so the negative pid addresses the whole group.
func terminateProcess(pid int) error {
	return sys.Kill(-pid, sys.SIGTERM)
}

// killProcess delivers SIGKILL to the child's process group.
func killProcess(pid int) error {
	return sys.Kill(-pid, sys.SIGKILL)
}
