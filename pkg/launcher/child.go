package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/joshlembergtrimble/genai-training-track/pkg/logflags"
)

// Spec describes one child process to be launched.
type Spec struct {
	// Name identifies the child in operator output and errors.
	Name string
	// Args is the command line; Args[0] is resolved through the PATH.
	Args []string
	// Dir is the child's working directory. Empty means the launcher's own.
	Dir string
	// Env lists KEY=VALUE pairs appended to the inherited environment.
	Env []string
	// Redirects holds stdin, stdout and stderr paths, in that order. Empty
	// entries share the launcher's streams.
	Redirects [3]string
	// TTY names a terminal device the child is attached to as its
	// controlling terminal. It cannot be combined with Redirects.
	TTY string
}

// Child is a process started and owned by a Launcher, from spawn to reap.
type Child struct {
	Spec

	cmd *exec.Cmd
	tty *os.File
	log logflags.Logger

	// done is closed once the process has been reaped; err is only valid
	// after that.
	done chan struct{}
	err  error
}

// SpawnError indicates that a child could not be started: its executable or
// working directory could not be resolved, or the spawn itself failed.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ErrChildExited indicates that a child process has exited and contains both
// process id and exit status.
type ErrChildExited struct {
	Name   string
	Pid    int
	Status int
}

func (e ErrChildExited) Error() string {
	return fmt.Sprintf("%s (pid %d) has exited with status %d", e.Name, e.Pid, e.Status)
}

// Pid returns the child's process identifier, or 0 if it was never started.
func (c *Child) Pid() int {
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

func (c *Child) started() bool {
	return c.cmd != nil
}

func (c *Child) start() error {
	if len(c.Args) == 0 {
		return &SpawnError{Name: c.Name, Err: errors.New("empty command")}
	}
	if c.TTY != "" && c.Redirects != ([3]string{}) {
		return &SpawnError{Name: c.Name, Err: errors.New("tty cannot be combined with redirects")}
	}
	path, err := exec.LookPath(c.Args[0])
	if err != nil {
		return &SpawnError{Name: c.Name, Err: err}
	}
	if c.Dir != "" {
		fi, err := os.Stat(c.Dir)
		if err != nil {
			return &SpawnError{Name: c.Name, Err: err}
		}
		if !fi.IsDir() {
			return &SpawnError{Name: c.Name, Err: fmt.Errorf("%s is not a directory", c.Dir)}
		}
	}

	cmd := exec.Command(path)
	cmd.Args = c.Args
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.SysProcAttr = sysProcAttr()

	closefn := func() {}
	if c.TTY != "" {
		c.tty, err = attachToTTY(cmd, c.TTY)
		if err != nil {
			return &SpawnError{Name: c.Name, Err: err}
		}
	} else {
		cmd.Stdin, cmd.Stdout, cmd.Stderr, closefn, err = openRedirects(c.Redirects)
		if err != nil {
			return &SpawnError{Name: c.Name, Err: err}
		}
	}

	c.log.Debugf("spawning %s: %v", c.Name, c.Args)
	err = cmd.Start()
	closefn()
	if err != nil {
		if c.tty != nil {
			c.tty.Close()
			c.tty = nil
		}
		return &SpawnError{Name: c.Name, Err: err}
	}
	c.cmd = cmd
	go c.reap()
	return nil
}

// reap waits for the process to terminate and records the result.
func (c *Child) reap() {
	err := c.cmd.Wait()
	if c.tty != nil {
		c.tty.Close()
	}
	c.err = c.exitError(err)
	if c.err != nil {
		c.log.Debugf("%v", c.err)
	} else {
		c.log.Debugf("%s (pid %d) has exited with status 0", c.Name, c.Pid())
	}
	close(c.done)
}

func (c *Child) exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ErrChildExited{Name: c.Name, Pid: c.Pid(), Status: ee.ExitCode()}
	}
	return err
}

// terminate delivers a termination request to the child's process group.
// It is a no-op for children that were never started or have already exited.
func (c *Child) terminate() {
	if !c.started() {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	c.log.Debugf("requesting termination of %s (pid %d)", c.Name, c.Pid())
	if err := terminateProcess(c.Pid()); err != nil {
		c.log.Warnf("could not signal %s (pid %d): %v", c.Name, c.Pid(), err)
	}
}

// kill forcibly terminates the child's process group.
func (c *Child) kill() {
	if !c.started() {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	c.log.Warnf("killing %s (pid %d)", c.Name, c.Pid())
	if err := killProcess(c.Pid()); err != nil {
		c.log.Warnf("could not kill %s (pid %d): %v", c.Name, c.Pid(), err)
	}
}
