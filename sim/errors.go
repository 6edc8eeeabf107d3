package sim

import (
	"errors"
	"fmt"
)

// Kernel contract violations. They are programming errors on the caller's
// side and are never retried or swallowed by the kernel.
var (
	// ErrInvalidTime is returned when an event would be scheduled before now.
	ErrInvalidTime = errors.New("event time is in the past")
	// ErrPoolOverflow is returned when more items are released than were acquired.
	ErrPoolOverflow = errors.New("pool released beyond capacity")
	// ErrUseAfterFinish is returned when a finished process is scheduled or suspended.
	ErrUseAfterFinish = errors.New("process already finished")
	// ErrAlreadyScheduled is returned when a process already has a pending event.
	ErrAlreadyScheduled = errors.New("process already has a pending event")
	// ErrNotRunning is returned when a suspension is requested on behalf of a
	// process that does not currently hold control.
	ErrNotRunning = errors.New("process is not the running process")
	// ErrProcessKilled is returned from a suspension call when the process has
	// been killed; the body is expected to return it.
	ErrProcessKilled = errors.New("process killed")
)

// ProcessError reports a process body that failed or panicked.
type ProcessError struct {
	Process string
	PID     uint64
	Time    Time
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s (pid %d) failed at %.3f: %v", e.Process, e.PID, float64(e.Time), e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
