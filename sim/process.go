package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// errGoexit marks a body that left through runtime.Goexit instead of returning.
var errGoexit = errors.New("process body exited without returning")

// ProcessState is the lifecycle state of a process.
type ProcessState int

const (
	// ProcessRunnable covers a process that is queued to start or is executing.
	ProcessRunnable ProcessState = iota
	// ProcessSuspended is a process waiting for a timeout or a pool item.
	ProcessSuspended
	// ProcessFinished is terminal; the handle can no longer be scheduled.
	ProcessFinished
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunnable:
		return "Runnable"
	case ProcessSuspended:
		return "Suspended"
	case ProcessFinished:
		return "Finished"
	default:
		return fmt.Sprintf("ProcessState(%d)", int(s))
	}
}

// ProcessFunc is the body of a process. It suspends only through
// Process.Timeout and the Pool acquire methods, and must return as soon as
// one of them reports an error.
type ProcessFunc func(p *Process) error

type wakeup struct {
	kind   EventKind
	value  any
	killed bool
}

// Process is a suspendable logical process driven by the Simulator.
type Process struct {
	pid  uint64
	name string
	sim  *Simulator
	body ProcessFunc

	state     ProcessState
	started   bool
	killed    bool
	acquiring bool // blocked inside a pool acquire

	wake    chan wakeup
	yield   chan struct{} // signalled by the body when it suspends or finishes
	pending *Event
	abort   func() // withdraws the process from a pool wait list
	err     error

	createdAt  Time
	finishedAt Time
}

// PID returns the unique process handle.
func (p *Process) PID() uint64 { return p.pid }

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// State returns the lifecycle state.
func (p *Process) State() ProcessState { return p.state }

// Err returns the failure of a finished process, nil for a clean finish.
func (p *Process) Err() error { return p.err }

// Killed reports whether Kill was called on the process.
func (p *Process) Killed() bool { return p.killed }

// Sim returns the owning simulator.
func (p *Process) Sim() *Simulator { return p.sim }

// Now returns the simulator's current time.
func (p *Process) Now() Time { return p.sim.clock }

// CreatedAt returns the virtual time the process was registered.
func (p *Process) CreatedAt() Time { return p.createdAt }

// FinishedAt returns the virtual time the process finished.
func (p *Process) FinishedAt() Time { return p.finishedAt }

// PendingEvent returns the queued event referencing p, or nil.
func (p *Process) PendingEvent() *Event { return p.pending }

// Timeout suspends the process for d time units. It returns
// ErrProcessKilled if the process is killed while waiting.
func (p *Process) Timeout(d Time) error {
	if err := p.checkActive("timeout"); err != nil {
		return err
	}
	if _, err := p.sim.schedule(p, p.sim.clock+d, EventTimeout, nil); err != nil {
		return err
	}
	_, err := p.suspend()
	return err
}

func (p *Process) checkActive(op string) error {
	switch {
	case p.state == ProcessFinished:
		return fmt.Errorf("%s on %s: %w", op, p.name, ErrUseAfterFinish)
	case p.killed:
		return fmt.Errorf("%s on %s: %w", op, p.name, ErrProcessKilled)
	case p.sim.active != p:
		return fmt.Errorf("%s on %s: %w", op, p.name, ErrNotRunning)
	}
	return nil
}

// suspend gives control back to the scheduler and blocks until resumed.
func (p *Process) suspend() (wakeup, error) {
	p.state = ProcessSuspended
	p.yield <- struct{}{}
	w := <-p.wake
	p.state = ProcessRunnable
	if w.killed {
		return w, ErrProcessKilled
	}
	return w, nil
}

// run is the goroutine hosting the body.
func (p *Process) run() {
	w := <-p.wake
	if w.killed {
		p.finish(ErrProcessKilled)
		p.yield <- struct{}{}
		return
	}

	returned := false
	var err error
	defer func() {
		if !returned {
			err = errGoexit
		}
		p.finish(err)
		p.yield <- struct{}{}
	}()
	err = p.invoke()
	returned = true
}

func (p *Process) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.body(p)
}

func (p *Process) finish(err error) {
	p.state = ProcessFinished
	p.finishedAt = p.sim.clock
	if p.pending != nil {
		p.sim.Cancel(p.pending)
	}
	if p.abort != nil {
		p.abort()
		p.abort = nil
	}
	if err != nil && !errors.Is(err, ErrProcessKilled) {
		p.err = err
	}
	logrus.Debugf("[t %9.3f] %s finished (killed=%v, err=%v)", float64(p.sim.clock), p.name, p.killed, p.err)
}
