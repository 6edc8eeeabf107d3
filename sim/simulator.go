// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portsim/sim/trace"
)

// ErrReentrantRun is returned when RunUntil is called from inside a process body.
var ErrReentrantRun = errors.New("simulator run called from inside a process")

// Simulator is the core object that holds virtual time, the event queue and
// the registered processes.
//
// Exactly one goroutine makes progress at any moment: either the caller of
// RunUntil or the body of the process currently being resumed. Control is
// handed back and forth over unbuffered per-process channels, so no locks are
// needed and the resumption order is fully determined by the event queue.
type Simulator struct {
	clock   Time
	queue   *EventQueue
	nextSeq uint64
	nextPID uint64

	// processes in creation order
	processes []*Process
	// active is the process whose body currently holds control, nil while
	// the scheduler itself runs.
	active *Process

	// Trace records every resumption when non-nil.
	Trace *trace.SimulationTrace
}

// NewSimulator creates a simulator with its clock at zero.
func NewSimulator() *Simulator {
	return &Simulator{
		clock: 0,
		queue: NewEventQueue(),
	}
}

// Now returns the current virtual time.
func (s *Simulator) Now() Time {
	return s.clock
}

// Pending returns the number of queued events.
func (s *Simulator) Pending() int {
	return s.queue.Len()
}

// Processes returns every process created so far, in creation order.
func (s *Simulator) Processes() []*Process {
	return slices.Clone(s.processes)
}

// Active returns the process currently holding control, or nil.
func (s *Simulator) Active() *Process {
	return s.active
}

// NewProcess registers a process without scheduling it. Use Schedule to
// start it at a chosen time.
func (s *Simulator) NewProcess(name string, body ProcessFunc) *Process {
	s.nextPID++
	p := &Process{
		pid:       s.nextPID,
		name:      name,
		sim:       s,
		body:      body,
		state:     ProcessRunnable,
		wake:      make(chan wakeup),
		yield:     make(chan struct{}),
		createdAt: s.clock,
	}
	s.processes = append(s.processes, p)
	return p
}

// Spawn registers a process and queues its first resumption at the current
// time. The body never runs inline with the caller.
func (s *Simulator) Spawn(name string, body ProcessFunc) *Process {
	p := s.NewProcess(name, body)
	if _, err := s.schedule(p, s.clock, EventStart, nil); err != nil {
		// a fresh process at the current time cannot be rejected
		panic(err)
	}
	return p
}

// Schedule queues a resumption of p at due. A process that has not started
// yet is started by it; a suspended process whose pending event was
// cancelled is woken by it and its Timeout call returns normally.
func (s *Simulator) Schedule(p *Process, due Time) (*Event, error) {
	if p.acquiring {
		return nil, fmt.Errorf("schedule %s: awaiting a pool item: %w", p.name, ErrAlreadyScheduled)
	}
	kind := EventTimeout
	if !p.started {
		kind = EventStart
	}
	return s.schedule(p, due, kind, nil)
}

func (s *Simulator) schedule(p *Process, due Time, kind EventKind, value any) (*Event, error) {
	if p.state == ProcessFinished {
		return nil, fmt.Errorf("schedule %s: %w", p.name, ErrUseAfterFinish)
	}
	if math.IsNaN(float64(due)) || due < s.clock {
		return nil, fmt.Errorf("schedule %s at %.3f (now %.3f): %w", p.name, float64(due), float64(s.clock), ErrInvalidTime)
	}
	if p.pending != nil {
		return nil, fmt.Errorf("schedule %s at %.3f: %w", p.name, float64(due), ErrAlreadyScheduled)
	}
	s.nextSeq++
	ev := &Event{
		due:    due,
		seq:    s.nextSeq,
		kind:   kind,
		target: p,
		value:  value,
		index:  -1,
	}
	s.queue.Schedule(ev)
	p.pending = ev
	return ev, nil
}

// Cancel removes a pending event. It is a no-op returning false when the
// event already fired or was cancelled before. Cancelling a pool grant hands
// the item back to the pool; the acquirer stays suspended until killed.
func (s *Simulator) Cancel(ev *Event) bool {
	if ev == nil || !s.queue.Remove(ev) {
		return false
	}
	if ev.target.pending == ev {
		ev.target.pending = nil
	}
	if ev.onCancel != nil {
		ev.onCancel()
	}
	return true
}

// RunUntil fires, in (time, sequence) order, every event due at or before
// horizon. Processes still suspended afterwards are left as they are. When
// no failure stops the run early the clock ends at horizon.
func (s *Simulator) RunUntil(horizon Time) error {
	if s.active != nil {
		return fmt.Errorf("run from %s: %w", s.active.name, ErrReentrantRun)
	}
	if math.IsNaN(float64(horizon)) || horizon < s.clock {
		return fmt.Errorf("run until %.3f (now %.3f): %w", float64(horizon), float64(s.clock), ErrInvalidTime)
	}
	for {
		next := s.queue.Peek()
		if next == nil || next.due > horizon {
			break
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	if !math.IsInf(float64(horizon), 1) {
		s.clock = horizon
	}
	logrus.Debugf("[t %9.3f] run stopped, %d events pending", float64(s.clock), s.queue.Len())
	return nil
}

// Run fires events until the queue is empty.
func (s *Simulator) Run() error {
	return s.RunUntil(Time(math.Inf(1)))
}

// step fires the earliest event.
func (s *Simulator) step() error {
	ev := s.queue.PopNext()
	s.clock = ev.due
	p := ev.target
	p.pending = nil
	if p.state == ProcessFinished {
		return fmt.Errorf("resume %s: %w", p.name, ErrUseAfterFinish)
	}
	logrus.Tracef("[t %9.3f] resume %s (%s, seq %d)", float64(s.clock), p.name, ev.kind, ev.seq)
	if s.Trace != nil {
		s.Trace.RecordResume(trace.ResumeRecord{
			Seq:     ev.seq,
			Time:    float64(ev.due),
			PID:     p.pid,
			Process: p.name,
			Kind:    ev.kind.String(),
		})
	}
	return s.resume(p, wakeup{kind: ev.kind, value: ev.value})
}

// resume hands control to p and blocks until p suspends or finishes.
func (s *Simulator) resume(p *Process, w wakeup) error {
	prev := s.active
	s.active = p
	if !p.started {
		p.started = true
		go p.run()
	}
	p.wake <- w
	<-p.yield
	s.active = prev

	if p.state == ProcessFinished && p.err != nil {
		return &ProcessError{Process: p.name, PID: p.pid, Time: s.clock, Err: p.err}
	}
	return nil
}

// Kill terminates p: its pending event is cancelled, it is withdrawn from
// any pool wait list and its body is woken with ErrProcessKilled so it can
// unwind. Killing the running process takes effect at its next suspension.
func (s *Simulator) Kill(p *Process) {
	if p.state == ProcessFinished {
		return
	}
	p.killed = true
	if p.pending != nil {
		s.Cancel(p.pending)
	}
	if p.abort != nil {
		p.abort()
		p.abort = nil
	}
	if s.active == p {
		return
	}
	if !p.started {
		p.finish(nil)
		return
	}
	if err := s.resume(p, wakeup{killed: true}); err != nil {
		logrus.Warnf("[t %9.3f] %v", float64(s.clock), err)
	}
}

// Close kills every live process so that no goroutine stays parked. The
// simulator must not be run afterwards.
func (s *Simulator) Close() {
	for i := 0; i < len(s.processes); i++ {
		s.Kill(s.processes[i])
	}
}
