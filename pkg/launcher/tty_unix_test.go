//go:build !windows
// +build !windows

package launcher

import (
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
)

func TestLaunchWithTTY(t *testing.T) {
	p, tty, err := pty.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	defer tty.Close()

	l := New(nil, []Spec{
		{Name: "api", Args: []string{"sh", "-c", "echo hello from tty"}, TTY: tty.Name()},
		shSpec("ui", "exit 0"),
	})
	if err := l.Start(); err != nil {
		t.Fatalf("unexpected Start error: %v", err)
	}

	outc := make(chan string, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _ := p.Read(buf)
		outc <- string(buf[:n])
	}()
	select {
	case out := <-outc:
		if !strings.Contains(out, "hello from tty") {
			t.Fatalf("expected the child's output on the terminal, got %q", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for terminal output")
	}

	if err := l.Wait(); err != nil {
		t.Fatalf("unexpected Wait error: %v", err)
	}
}

func TestTTYNotATerminal(t *testing.T) {
	l := New(nil, []Spec{
		{Name: "api", Args: []string{"sh", "-c", "exit 0"}, TTY: "/dev/null"},
	})
	err := l.Start()
	if err == nil || !strings.Contains(err.Error(), "is not a terminal") {
		t.Fatalf("expected a not-a-terminal error, got %v", err)
	}
}
