package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DurationSummary describes a sample of durations in minutes.
type DurationSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// BerthStatus is a berth at report time.
type BerthStatus struct {
	Berth          string `json:"berth"`
	Vessel         string `json:"vessel,omitempty"`
	ContainersLeft int    `json:"containers_left"`
	CraneMoves     int    `json:"crane_moves"`
}

// VesselStatus is a vessel that had not departed at report time.
type VesselStatus struct {
	Vessel         string  `json:"vessel"`
	State          string  `json:"state"`
	Berth          string  `json:"berth,omitempty"`
	ArrivedAt      float64 `json:"arrived_at"`
	Waited         float64 `json:"waited"`
	ContainersLeft int     `json:"containers_left"`
}

// Report is the end-of-run summary.
type Report struct {
	RunID   string  `json:"run_id,omitempty"`
	Time    float64 `json:"time"`
	Pending int     `json:"pending_events"`

	VesselsArrived     int `json:"vessels_arrived"`
	VesselsWaiting     int `json:"vessels_waiting"`
	VesselsDeparted    int `json:"vessels_departed"`
	ContainersUnloaded int `json:"containers_unloaded"`
	TruckTrips         int `json:"truck_trips"`

	Berths     []BerthStatus  `json:"berths"`
	InProgress []VesselStatus `json:"in_progress"`

	WaitingTime    DurationSummary `json:"waiting_time"`
	UnloadDuration DurationSummary `json:"unload_duration"`
}

// Report snapshots the terminal at the current simulation time.
func (t *Terminal) Report() *Report {
	now := t.Sim.Now()
	r := &Report{
		Time:               float64(now),
		Pending:            t.Sim.Pending(),
		VesselsArrived:     t.Stats.VesselsArrived,
		VesselsWaiting:     t.Stats.VesselsWaiting,
		VesselsDeparted:    t.Stats.VesselsDeparted,
		ContainersUnloaded: t.Stats.ContainersUnloaded,
		TruckTrips:         t.Stats.TruckTrips,
		WaitingTime:        summarize(t.Stats.WaitingTimes),
		UnloadDuration:     summarize(t.Stats.UnloadDurations),
	}
	for _, b := range t.Berths {
		bs := BerthStatus{Berth: b.Name, CraneMoves: b.Crane.Moves}
		if b.Vessel != nil {
			bs.Vessel = b.Vessel.Name
			bs.ContainersLeft = b.Vessel.Remaining()
		}
		r.Berths = append(r.Berths, bs)
	}
	for _, v := range t.vessels {
		if v.State == VesselDeparted {
			continue
		}
		r.InProgress = append(r.InProgress, VesselStatus{
			Vessel:         v.Name,
			State:          v.State.String(),
			Berth:          v.Berth,
			ArrivedAt:      float64(v.ArrivedAt),
			Waited:         float64(v.WaitingTime(now)),
			ContainersLeft: v.Remaining(),
		})
	}
	return r
}

func summarize(values []float64) DurationSummary {
	if len(values) == 0 {
		return DurationSummary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	s := DurationSummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// Print writes a human-readable report.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Terminal Report ===")
	if r.RunID != "" {
		fmt.Fprintf(w, "%-28s: %s\n", "Run ID", r.RunID)
	}
	fmt.Fprintf(w, "%-28s: %.3f\n", "Simulation Time", r.Time)
	fmt.Fprintf(w, "%-28s: %d\n", "Vessels Arrived", r.VesselsArrived)
	fmt.Fprintf(w, "%-28s: %d\n", "Vessels Waiting For Berth", r.VesselsWaiting)
	fmt.Fprintf(w, "%-28s: %d\n", "Vessels Departed", r.VesselsDeparted)
	fmt.Fprintf(w, "%-28s: %d\n", "Containers Unloaded", r.ContainersUnloaded)
	fmt.Fprintf(w, "%-28s: %d\n", "Truck Trips Completed", r.TruckTrips)
	fmt.Fprintf(w, "%-28s: %d\n", "Pending Events", r.Pending)

	fmt.Fprintln(w, "\n--- Berths ---")
	for _, b := range r.Berths {
		if b.Vessel == "" {
			fmt.Fprintf(w, "%-10s: free (%d crane moves)\n", b.Berth, b.CraneMoves)
			continue
		}
		fmt.Fprintf(w, "%-10s: %s, %d containers left (%d crane moves)\n", b.Berth, b.Vessel, b.ContainersLeft, b.CraneMoves)
	}

	if len(r.InProgress) > 0 {
		fmt.Fprintln(w, "\n--- Vessels In Port ---")
		for _, v := range r.InProgress {
			where := v.Berth
			if where == "" {
				where = "-"
			}
			fmt.Fprintf(w, "%-12s: %-16s berth=%-8s arrived=%.3f waited=%.3f containers_left=%d\n",
				v.Vessel, v.State, where, v.ArrivedAt, v.Waited, v.ContainersLeft)
		}
	}

	printDurations(w, "Waiting Time (min)", r.WaitingTime)
	printDurations(w, "Unload Duration (min)", r.UnloadDuration)
}

func printDurations(w io.Writer, title string, d DurationSummary) {
	fmt.Fprintf(w, "\n--- %s ---\n", title)
	if d.Count == 0 {
		fmt.Fprintln(w, "no samples")
		return
	}
	fmt.Fprintf(w, "count=%d mean=%.3f std=%.3f p50=%.3f p95=%.3f max=%.3f\n",
		d.Count, d.Mean, d.StdDev, d.P50, d.P95, d.Max)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
