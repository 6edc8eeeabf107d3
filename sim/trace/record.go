// Package trace records the resumptions performed by the simulation kernel.
// This package has no dependencies on sim/; it stores plain data types.
package trace

// ResumeRecord captures a single process resumption.
type ResumeRecord struct {
	Seq     uint64  // event sequence ID (tie-breaker within equal times)
	Time    float64 // virtual time of the resumption
	PID     uint64
	Process string
	Kind    string // Start, Timeout or ResourceReady
}
