package sim

import (
	"fmt"
	"testing"

	"github.com/inference-sim/portsim/sim/trace"
)

// newTestSimulator returns a simulator whose processes are killed when the
// test ends, so no goroutine stays parked.
func newTestSimulator(t *testing.T) *Simulator {
	t.Helper()
	s := NewSimulator()
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelResumptions})
	t.Cleanup(s.Close)
	return s
}

// eventLog collects "time name what" lines written by process bodies.
type eventLog struct {
	lines []string
}

func (l *eventLog) add(p *Process, what string) {
	l.lines = append(l.lines, fmt.Sprintf("%g %s %s", float64(p.Now()), p.Name(), what))
}
