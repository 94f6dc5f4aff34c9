//go:build !windows
// +build !windows

package launcher

import (
	"fmt"
	"os"
	"os/exec"

	isatty "github.com/mattn/go-isatty"
)

// attachToTTY redirects the child's standard streams to the terminal at
// path and makes it the child's controlling terminal. The child becomes a
// session leader instead of a process group leader.
func attachToTTY(cmd *exec.Cmd, path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if !isatty.IsTerminal(f.Fd()) {
		f.Close()
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	cmd.Stdin = f
	cmd.Stdout = f
	cmd.Stderr = f
	cmd.SysProcAttr.Setpgid = false
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	return f, nil
}
