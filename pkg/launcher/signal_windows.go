//go:build windows
// +build windows

package launcher

import "os"

// terminateProcess ends the child process. Windows has no cross-process
// SIGTERM equivalent, so both the termination request and the kill resolve
// to TerminateProcess.
func terminateProcess(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func killProcess(pid int) error {
	return terminateProcess(pid)
}
