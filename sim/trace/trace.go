package trace

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// TraceLevel controls whether resumptions are kept in memory.
type TraceLevel string

const (
	// TraceLevelNone keeps nothing in memory; writers still receive records.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelResumptions keeps every resumption record.
	TraceLevelResumptions TraceLevel = "resumptions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelResumptions: true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	RunID string
}

// Writer persists resumption records outside the process.
type Writer interface {
	Write(record ResumeRecord)
	Flush() error
	Close() error
}

// SimulationTrace collects resumption records during a run.
type SimulationTrace struct {
	Config      TraceConfig
	Resumptions []ResumeRecord

	writers []Writer
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Resumptions: make([]ResumeRecord, 0),
	}
}

// AddWriter attaches a sink that receives every record.
func (st *SimulationTrace) AddWriter(w Writer) {
	st.writers = append(st.writers, w)
}

// RecordResume stores a resumption and forwards it to the writers.
func (st *SimulationTrace) RecordResume(record ResumeRecord) {
	if st.Config.Level == TraceLevelResumptions {
		st.Resumptions = append(st.Resumptions, record)
	}
	for _, w := range st.writers {
		w.Write(record)
	}
}

// Close flushes and closes every writer.
func (st *SimulationTrace) Close() error {
	var errs []error
	for _, w := range st.writers {
		if err := w.Close(); err != nil {
			logrus.Errorf("closing trace writer: %v", err)
			errs = append(errs, err)
		}
	}
	st.writers = nil
	return errors.Join(errs...)
}
