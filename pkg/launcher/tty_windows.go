//go:build windows
// +build windows

package launcher

import (
	"errors"
	"os"
	"os/exec"
)

func attachToTTY(cmd *exec.Cmd, path string) (*os.File, error) {
	return nil, errors.New("tty attachment is not supported on windows")
}
