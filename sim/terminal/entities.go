package terminal

import (
	"fmt"

	"github.com/inference-sim/portsim/sim"
)

// Crane is the quay crane bound to one berth.
type Crane struct {
	Name  string
	Moves int // containers moved onto trucks
}

// Berth pairs a quay position with its crane. Berths are pooled as a unit,
// so acquiring a berth always yields its crane too.
type Berth struct {
	Name   string
	Crane  *Crane
	Vessel *Vessel // docked vessel, nil when free
}

// Truck shuttles containers from the quay to the yard.
type Truck struct {
	Name  string
	Home  string // berth the truck serves when trucks are dedicated
	Trips int    // completed yard round trips
}

// VesselState is the position of a vessel in its visit.
type VesselState int

const (
	// VesselArrived is a vessel created by the generator whose process has not started.
	VesselArrived VesselState = iota
	// VesselWaitingForBerth is a vessel queued on the berth pool.
	VesselWaitingForBerth
	// VesselUnloading is a vessel holding a berth while its crane moves containers.
	VesselUnloading
	// VesselDeparted is an emptied vessel that has released its berth.
	VesselDeparted
)

func (s VesselState) String() string {
	switch s {
	case VesselArrived:
		return "Arrived"
	case VesselWaitingForBerth:
		return "WaitingForBerth"
	case VesselUnloading:
		return "Unloading"
	case VesselDeparted:
		return "Departed"
	default:
		return fmt.Sprintf("VesselState(%d)", int(s))
	}
}

// Vessel is one ship visit. Its containers are unloaded in order; a
// container counts as aboard until the crane has put it on a truck.
type Vessel struct {
	Name  string
	State VesselState
	Berth string

	ArrivedAt   sim.Time
	BerthedAt   sim.Time
	UnloadStart sim.Time
	UnloadEnd   sim.Time
	DepartedAt  sim.Time

	containers []string
	next       int
}

// NewVessel creates a vessel carrying n containers named after it.
func NewVessel(name string, n int, arrivedAt sim.Time) *Vessel {
	containers := make([]string, n)
	for i := range containers {
		containers[i] = fmt.Sprintf("%s-container_%d", name, i+1)
	}
	return &Vessel{
		Name:       name,
		State:      VesselArrived,
		ArrivedAt:  arrivedAt,
		containers: containers,
	}
}

// NextContainer returns the next container to unload without removing it.
func (v *Vessel) NextContainer() (string, bool) {
	if v.next >= len(v.containers) {
		return "", false
	}
	return v.containers[v.next], true
}

// MarkUnloaded records that the next container has left the vessel.
func (v *Vessel) MarkUnloaded() {
	if v.next < len(v.containers) {
		v.next++
	}
}

// Remaining returns the number of containers still aboard.
func (v *Vessel) Remaining() int {
	return len(v.containers) - v.next
}

// Containers returns the number of containers the vessel arrived with.
func (v *Vessel) Containers() int {
	return len(v.containers)
}

// WaitingTime returns how long the vessel waited for a berth, counting up
// to now if it is still waiting.
func (v *Vessel) WaitingTime(now sim.Time) sim.Time {
	if v.State == VesselArrived || v.State == VesselWaitingForBerth {
		return now - v.ArrivedAt
	}
	return v.BerthedAt - v.ArrivedAt
}
