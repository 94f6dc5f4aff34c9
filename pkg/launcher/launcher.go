// Package launcher starts and supervises the development stack's child
// processes. Each child runs in its own process group so termination
// requests reach the whole tree it spawns.
package launcher

import (
	"sync"
	"time"

	"github.com/joshlembergtrimble/genai-training-track/pkg/logflags"
)

const defaultGracePeriod = 10 * time.Second

// Config provides the configuration for a launch session.
type Config struct {
	// GracePeriod bounds how long Stop waits between requesting termination
	// and forcibly killing a child. Zero selects the default.
	GracePeriod time.Duration
}

// Launcher owns a set of child processes through their whole lifetime.
// Children are spawned in Spec order and supervised until the last one has
// been reaped.
type Launcher struct {
	config *Config
	log    logflags.Logger

	// mu guards stopped and serializes spawning against Stop.
	mu       sync.Mutex
	stopped  bool
	children []*Child
}

// New creates a Launcher for the given specs. Nothing is spawned until
// Start is called.
func New(config *Config, specs []Spec) *Launcher {
	if config == nil {
		config = &Config{}
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = defaultGracePeriod
	}
	l := &Launcher{
		config: config,
		log:    logflags.LauncherLogger(),
	}
	procLog := logflags.ProcLogger()
	for _, spec := range specs {
		l.children = append(l.children, &Child{
			Spec: spec,
			log:  procLog,
			done: make(chan struct{}),
		})
	}
	return l
}

// Start spawns every child in spec order. If any spawn fails it terminates
// the children already started, so a failed Start leaves no orphans behind,
// and returns a *SpawnError describing the child that could not be started.
func (l *Launcher) Start() error {
	for _, c := range l.children {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return nil
		}
		err := c.start()
		l.mu.Unlock()
		if err != nil {
			l.Stop()
			return err
		}
		l.log.Infof("started %s (pid %d)", c.Name, c.Pid())
	}
	return nil
}

// Wait blocks until every started child has been reaped, in whatever order
// they exit. If a child terminated with a non-zero status it returns the
// corresponding ErrChildExited, unless the session was stopped, in which
// case the non-zero statuses are the expected result of the teardown and
// Wait returns nil.
func (l *Launcher) Wait() error {
	var first error
	for _, c := range l.children {
		if !c.started() {
			continue
		}
		<-c.done
		if c.err != nil && first == nil {
			first = c.err
		}
	}
	if l.wasStopped() {
		return nil
	}
	return first
}

// Stop requests termination of every running child and, once the grace
// period has elapsed, kills the ones that have not exited. It is idempotent
// and safe to call from a signal handler goroutine while Start or Wait is in
// flight.
func (l *Launcher) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()

	l.log.Infof("stopping all children")
	for _, c := range l.children {
		c.terminate()
	}

	deadline := time.Now().Add(l.config.GracePeriod)
	for _, c := range l.children {
		if !c.started() {
			continue
		}
		if !waitTimeout(c.done, time.Until(deadline)) {
			c.kill()
			<-c.done
		}
	}
}

// Children returns the launcher's children in spec order.
func (l *Launcher) Children() []*Child {
	return l.children
}

// Pids returns the process identifiers of the started children, in start
// order.
func (l *Launcher) Pids() []int {
	pids := make([]int, 0, len(l.children))
	for _, c := range l.children {
		if c.started() {
			pids = append(pids, c.Pid())
		}
	}
	return pids
}

func (l *Launcher) wasStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

func waitTimeout(done <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
