package terminal

// Stats accumulates run-wide counters. The Terminal owns it and hands it to
// the processes that update it.
type Stats struct {
	VesselsArrived     int
	VesselsWaiting     int
	VesselsDeparted    int
	ContainersUnloaded int
	TruckTrips         int

	WaitingTimes    []float64 // per berthed vessel
	UnloadDurations []float64 // per departed vessel
}
