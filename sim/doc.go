// Package sim provides the discrete-event simulation kernel used by portsim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go / event_queue.go: Events and the (time, sequence) ordered queue
//   - simulator.go: the virtual clock, Schedule/Cancel/RunUntil and process handoff
//   - process.go: process lifecycle and the Timeout suspension point
//   - pool.go: the generic resource pool with FIFO, predicate-aware waiters
//
// # Execution Model
//
// Each process body runs on its own goroutine, but only one goroutine makes
// progress at a time: the scheduler hands control to a process and blocks
// until the process suspends (Timeout, Pool.Acquire) or returns. Given the
// same sequence of Schedule calls, RunUntil resumes processes in the same
// order on every run.
//
// Sub-packages:
//   - sim/trace/: resumption trace records, summaries and CSV/SQLite sinks
//   - sim/workload/: inter-arrival time and cargo size samplers
//   - sim/terminal/: the container terminal scenario built on the kernel
package sim
