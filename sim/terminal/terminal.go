// Package terminal models a container port: vessels arrive, wait for a free
// berth, have their containers moved by the berth's crane onto trucks, and
// leave once empty. Trucks drive each container to the yard and come back.
package terminal

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portsim/sim"
	"github.com/inference-sim/portsim/sim/workload"
)

// Terminal wires the scenario onto a simulator.
type Terminal struct {
	Config Config
	Sim    *sim.Simulator
	Stats  *Stats

	Berths    []*Berth
	Trucks    []*Truck
	BerthPool *sim.Pool[*Berth]
	TruckPool *sim.Pool[*Truck]

	vessels      []*Vessel
	interarrival func() float64
	cargo        func() int
	started      bool
}

// New builds a terminal for cfg. interarrival supplies the gaps between
// vessel arrivals; when nil it is derived from cfg.Arrival, cfg.ArrivalMean
// and cfg.Seed. Container counts come from cfg.Cargo when set.
func New(cfg Config, interarrival func() float64) (*Terminal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid terminal config: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	if interarrival == nil {
		sampler := workload.NewArrivalSampler(cfg.Arrival, cfg.ArrivalMean)
		interarrival = workload.Source(sampler, rng.ForSubsystem(sim.SubsystemArrivals))
	}
	cargo := func() int { return cfg.ContainersPerVessel }
	if cfg.Cargo != nil {
		sampler, err := workload.NewCountSampler(*cfg.Cargo)
		if err != nil {
			return nil, err
		}
		r := rng.ForSubsystem(sim.SubsystemCargo)
		cargo = func() int { return sampler.Sample(r) }
	}

	s := sim.NewSimulator()
	t := &Terminal{
		Config:       cfg,
		Sim:          s,
		Stats:        &Stats{},
		interarrival: interarrival,
		cargo:        cargo,
	}
	for i := 1; i <= cfg.Berths; i++ {
		t.Berths = append(t.Berths, &Berth{
			Name:  fmt.Sprintf("berth_%d", i),
			Crane: &Crane{Name: fmt.Sprintf("crane_%d", i)},
		})
	}
	for i := 0; i < cfg.Trucks; i++ {
		truck := &Truck{Name: fmt.Sprintf("truck_%d", i+1)}
		if cfg.DedicatedTrucks {
			truck.Home = t.Berths[i%cfg.Berths].Name
		}
		t.Trucks = append(t.Trucks, truck)
	}
	t.BerthPool = sim.NewPool(s, "berths", t.Berths...)
	t.TruckPool = sim.NewPool(s, "trucks", t.Trucks...)
	return t, nil
}

// Vessels returns a snapshot of every vessel that has arrived so far, in
// arrival order.
func (t *Terminal) Vessels() []*Vessel {
	return slices.Clone(t.vessels)
}

// Start spawns the vessel generator. It is idempotent.
func (t *Terminal) Start() {
	if t.started {
		return
	}
	t.started = true
	t.Sim.Spawn("vessel_generator", t.generate)
}

// Run starts the terminal, advances the clock to the configured horizon and
// returns the report for that moment. A process failure stops the run
// early; the report then describes the state at the failure.
func (t *Terminal) Run() (*Report, error) {
	t.Start()
	err := t.Sim.RunUntil(sim.Time(t.Config.Horizon))
	return t.Report(), err
}

// Close kills every process still alive.
func (t *Terminal) Close() {
	t.Sim.Close()
}

func (t *Terminal) generate(p *sim.Process) error {
	for id := 1; ; id++ {
		if err := p.Timeout(sim.Time(t.interarrival())); err != nil {
			return err
		}
		v := NewVessel(fmt.Sprintf("vessel_%d", id), t.cargo(), p.Now())
		t.vessels = append(t.vessels, v)
		t.Stats.VesselsArrived++
		p.Sim().Spawn(v.Name, t.visit(v))
	}
}

// visit is the life of one vessel: wait for a berth, unload, leave.
func (t *Terminal) visit(v *Vessel) sim.ProcessFunc {
	return func(p *sim.Process) error {
		v.State = VesselWaitingForBerth
		t.Stats.VesselsWaiting++
		logf(p, "%s arrives and waits for a berth", v.Name)

		return t.BerthPool.With(p, nil, func(b *Berth) error {
			t.Stats.VesselsWaiting--
			v.State = VesselUnloading
			v.Berth = b.Name
			v.BerthedAt = p.Now()
			v.UnloadStart = p.Now()
			b.Vessel = v
			waited := v.WaitingTime(p.Now())
			t.Stats.WaitingTimes = append(t.Stats.WaitingTimes, float64(waited))
			logf(p, "%s has been assigned to %s", v.Name, b.Name)
			logf(p, "Waiting time for %s: %.3f", v.Name, float64(waited))

			if err := t.unload(p, b, v); err != nil {
				return err
			}

			v.UnloadEnd = p.Now()
			duration := v.UnloadEnd - v.UnloadStart
			t.Stats.UnloadDurations = append(t.Stats.UnloadDurations, float64(duration))
			logf(p, "%s has finished unloading. Duration: %.3f", v.Name, float64(duration))

			v.State = VesselDeparted
			v.DepartedAt = p.Now()
			b.Vessel = nil
			t.Stats.VesselsDeparted++
			logf(p, "%s leaves %s", v.Name, b.Name)
			return nil
		})
	}
}

// unload moves the vessel's containers one at a time: take a truck, spend
// one crane move, send the truck to the yard.
func (t *Terminal) unload(p *sim.Process, b *Berth, v *Vessel) error {
	match := t.truckFilter(b)
	for {
		container, ok := v.NextContainer()
		if !ok {
			return nil
		}
		truck, err := t.TruckPool.AcquireMatching(p, match)
		if err != nil {
			return err
		}
		logf(p, "%s unloads %s from %s onto %s", b.Crane.Name, container, v.Name, truck.Name)
		if err := p.Timeout(sim.Time(t.Config.CraneMoveTime)); err != nil {
			return err
		}
		v.MarkUnloaded()
		b.Crane.Moves++
		t.Stats.ContainersUnloaded++
		logf(p, "%s carrying %s departs towards the yard", truck.Name, container)
		p.Sim().Spawn(fmt.Sprintf("%s_trip_%d", truck.Name, truck.Trips+1), t.returnTruck(truck))
	}
}

func (t *Terminal) returnTruck(truck *Truck) sim.ProcessFunc {
	return func(p *sim.Process) error {
		if err := p.Timeout(sim.Time(t.Config.TruckReturnTime)); err != nil {
			return err
		}
		truck.Trips++
		t.Stats.TruckTrips++
		logf(p, "%s returns to the quay", truck.Name)
		return t.TruckPool.Release(truck)
	}
}

func (t *Terminal) truckFilter(b *Berth) func(*Truck) bool {
	if !t.Config.DedicatedTrucks {
		return nil
	}
	return func(tr *Truck) bool { return tr.Home == b.Name }
}

func logf(p *sim.Process, format string, args ...any) {
	logrus.Infof("[t %9.3f] "+format, append([]any{float64(p.Now())}, args...)...)
}
