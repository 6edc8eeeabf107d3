package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalResumptions int
	UniqueProcesses  int
	FirstTime        float64
	LastTime         float64
	KindCounts       map[string]int // event kind → resumptions
	ProcessCounts    map[string]int // process name → resumptions
	// Monotonic is false if any record is earlier than its predecessor.
	Monotonic bool
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		KindCounts:    make(map[string]int),
		ProcessCounts: make(map[string]int),
		Monotonic:     true,
	}
	if st == nil || len(st.Resumptions) == 0 {
		return summary
	}

	summary.TotalResumptions = len(st.Resumptions)
	summary.FirstTime = st.Resumptions[0].Time
	prev := st.Resumptions[0]
	for i, r := range st.Resumptions {
		summary.KindCounts[r.Kind]++
		summary.ProcessCounts[r.Process]++
		if i > 0 && (r.Time < prev.Time || (r.Time == prev.Time && r.Seq < prev.Seq)) {
			summary.Monotonic = false
		}
		prev = r
	}
	summary.LastTime = prev.Time
	summary.UniqueProcesses = len(summary.ProcessCounts)

	return summary
}
