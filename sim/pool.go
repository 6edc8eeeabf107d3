package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Pool is a bounded collection of items handed out to processes.
//
// Every item is in exactly one of three places: available in the pool,
// granted to a process whose ResourceReady event has not fired yet, or in
// use by a process. Waiters are served strictly in arrival order; a waiter
// with a predicate is re-checked on every release, so items it cannot use
// flow past it to later waiters without it losing its place.
type Pool[T any] struct {
	name     string
	sim      *Simulator
	capacity int

	available []T
	waiters   []*poolWaiter[T]
	granted   int
	inUse     int
}

type poolWaiter[T any] struct {
	proc  *Process
	match func(T) bool
	since Time
}

// NewPool creates a pool stocked with items; its capacity is len(items).
func NewPool[T any](s *Simulator, name string, items ...T) *Pool[T] {
	return &Pool[T]{
		name:      name,
		sim:       s,
		capacity:  len(items),
		available: slices.Clone(items),
	}
}

// Name returns the pool name.
func (p *Pool[T]) Name() string { return p.name }

// Capacity returns the fixed number of items the pool manages.
func (p *Pool[T]) Capacity() int { return p.capacity }

// Available returns the number of items sitting in the pool.
func (p *Pool[T]) Available() int { return len(p.available) }

// Granted returns the number of items promised to processes whose
// resumption has not fired yet.
func (p *Pool[T]) Granted() int { return p.granted }

// InUse returns the number of items held by processes.
func (p *Pool[T]) InUse() int { return p.inUse }

// Waiting returns the number of suspended acquirers.
func (p *Pool[T]) Waiting() int { return len(p.waiters) }

// Items returns a snapshot of the available items in pool order.
func (p *Pool[T]) Items() []T { return slices.Clone(p.available) }

// Waiters returns the waiting processes, longest waiting first.
func (p *Pool[T]) Waiters() []*Process {
	procs := make([]*Process, len(p.waiters))
	for i, w := range p.waiters {
		procs[i] = w.proc
	}
	return procs
}

// Acquire takes any item, suspending proc until one is granted.
func (p *Pool[T]) Acquire(proc *Process) (T, error) {
	return p.AcquireMatching(proc, nil)
}

// AcquireMatching takes the first item accepted by match (nil accepts any).
// Even when an item is available the grant is delivered through the event
// queue at the current time, so it never completes inline. A predicate that
// can never match leaves proc waiting forever; avoiding that is up to the
// caller.
func (p *Pool[T]) AcquireMatching(proc *Process, match func(T) bool) (T, error) {
	var zero T
	if err := proc.checkActive("acquire " + p.name); err != nil {
		return zero, err
	}
	if proc.pending != nil {
		return zero, fmt.Errorf("acquire %s on %s: %w", p.name, proc.name, ErrAlreadyScheduled)
	}

	if i := p.firstAvailable(match); i >= 0 {
		item := p.available[i]
		p.available = slices.Delete(p.available, i, i+1)
		if err := p.grant(proc, item); err != nil {
			p.available = slices.Insert(p.available, i, item)
			return zero, err
		}
	} else {
		w := &poolWaiter[T]{proc: proc, match: match, since: p.sim.clock}
		p.waiters = append(p.waiters, w)
		proc.abort = func() { p.withdraw(w) }
		logrus.Tracef("[t %9.3f] %s waits on %s (%d waiting)", float64(p.sim.clock), proc.name, p.name, len(p.waiters))
	}

	proc.acquiring = true
	w, err := proc.suspend()
	proc.acquiring = false
	if err != nil {
		return zero, err
	}
	if w.kind != EventResourceReady {
		if proc.abort != nil {
			proc.abort()
			proc.abort = nil
		}
		return zero, fmt.Errorf("acquire %s on %s woken by %s: %w", p.name, proc.name, w.kind, ErrAlreadyScheduled)
	}
	p.granted--
	p.inUse++
	item, _ := w.value.(T)
	return item, nil
}

// Release returns an item. The longest-waiting acquirer whose predicate
// accepts it is granted the item immediately; otherwise it becomes
// available.
func (p *Pool[T]) Release(item T) error {
	if p.inUse == 0 {
		return fmt.Errorf("release to %s (capacity %d): %w", p.name, p.capacity, ErrPoolOverflow)
	}
	p.inUse--
	return p.put(item)
}

// With acquires a matching item, runs fn with it and releases it on every
// exit path of fn.
func (p *Pool[T]) With(proc *Process, match func(T) bool, fn func(T) error) (err error) {
	item, err := p.AcquireMatching(proc, match)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, p.Release(item))
	}()
	return fn(item)
}

func (p *Pool[T]) firstAvailable(match func(T) bool) int {
	for i, item := range p.available {
		if match == nil || match(item) {
			return i
		}
	}
	return -1
}

func (p *Pool[T]) put(item T) error {
	for i, w := range p.waiters {
		if w.match != nil && !w.match(item) {
			continue
		}
		if err := p.grant(w.proc, item); err != nil {
			p.available = append(p.available, item)
			return err
		}
		p.waiters = slices.Delete(p.waiters, i, i+1)
		w.proc.abort = nil
		logrus.Tracef("[t %9.3f] %s grants to %s after waiting %.3f", float64(p.sim.clock), p.name, w.proc.name, float64(p.sim.clock-w.since))
		return nil
	}
	p.available = append(p.available, item)
	return nil
}

// grant queues the delivery of item to proc at the current time.
func (p *Pool[T]) grant(proc *Process, item T) error {
	ev, err := p.sim.schedule(proc, p.sim.clock, EventResourceReady, item)
	if err != nil {
		return err
	}
	p.granted++
	ev.onCancel = func() {
		p.granted--
		if err := p.put(item); err != nil {
			logrus.Errorf("[t %9.3f] %s: returning cancelled grant: %v", float64(p.sim.clock), p.name, err)
		}
	}
	return nil
}

func (p *Pool[T]) withdraw(w *poolWaiter[T]) {
	if i := slices.Index(p.waiters, w); i >= 0 {
		p.waiters = slices.Delete(p.waiters, i, i+1)
	}
}
