package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portsim/sim/trace"
)

// newTrace builds the resumption trace selected by --trace and --trace-level.
func newTrace(runID string) (*trace.SimulationTrace, error) {
	if !trace.IsValidTraceLevel(traceLevel) {
		return nil, fmt.Errorf("unknown trace level %q (want none or resumptions)", traceLevel)
	}
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel), RunID: runID})

	switch traceSink {
	case "", "none":
	case "csv":
		w := trace.NewCSVWriter(tracePath)
		if err := w.Init(); err != nil {
			return nil, fmt.Errorf("opening csv trace: %w", err)
		}
		logrus.Infof("Writing resumption trace to %s", w.Path())
		st.AddWriter(w)
	case "sqlite":
		w := trace.NewSQLiteWriter(tracePath, runID)
		if err := w.Init(); err != nil {
			return nil, fmt.Errorf("opening sqlite trace: %w", err)
		}
		logrus.Infof("Writing resumption trace to %s", w.Path())
		st.AddWriter(w)
	default:
		return nil, fmt.Errorf("unknown trace sink %q (want none, csv or sqlite)", traceSink)
	}
	return st, nil
}
