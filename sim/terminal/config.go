package terminal

import (
	"fmt"
	"math"

	"github.com/inference-sim/portsim/sim/workload"
)

// Config holds the scenario parameters. Times are in minutes.
type Config struct {
	Berths              int                  `yaml:"berths"`
	Trucks              int                  `yaml:"trucks"`
	CraneMoveTime       float64              `yaml:"crane_move_time"`
	TruckReturnTime     float64              `yaml:"truck_return_time"`
	ContainersPerVessel int                  `yaml:"containers_per_vessel"`
	ArrivalMean         float64              `yaml:"arrival_mean"`
	Arrival             workload.ArrivalSpec `yaml:"arrival"`
	Horizon             float64              `yaml:"horizon"`
	Seed                int64                `yaml:"seed"`

	// DedicatedTrucks homes truck i at berth i mod Berths; cranes then only
	// load trucks homed at their own berth.
	DedicatedTrucks bool `yaml:"dedicated_trucks"`

	// Cargo, when set, draws each vessel's container count instead of
	// using ContainersPerVessel.
	Cargo *workload.CargoSpec `yaml:"cargo,omitempty"`
}

// DefaultConfig returns the reference scenario: two berths, three trucks,
// 150 containers per vessel, a vessel every five hours on average and a
// 17-hour run.
func DefaultConfig() Config {
	return Config{
		Berths:              2,
		Trucks:              3,
		CraneMoveTime:       3,
		TruckReturnTime:     6,
		ContainersPerVessel: 150,
		ArrivalMean:         5 * 60,
		Arrival:             workload.ArrivalSpec{Process: "poisson"},
		Horizon:             17 * 60,
		Seed:                42,
	}
}

// Validate checks the configuration for values the scenario cannot run with.
func (c Config) Validate() error {
	if c.Berths <= 0 {
		return fmt.Errorf("berths must be positive, got %d", c.Berths)
	}
	if c.Trucks <= 0 {
		return fmt.Errorf("trucks must be positive, got %d", c.Trucks)
	}
	if !nonNegative(c.CraneMoveTime) {
		return fmt.Errorf("crane_move_time must be a non-negative number, got %v", c.CraneMoveTime)
	}
	if !nonNegative(c.TruckReturnTime) {
		return fmt.Errorf("truck_return_time must be a non-negative number, got %v", c.TruckReturnTime)
	}
	if c.ContainersPerVessel < 0 {
		return fmt.Errorf("containers_per_vessel must be non-negative, got %d", c.ContainersPerVessel)
	}
	if !nonNegative(c.ArrivalMean) || c.ArrivalMean == 0 || math.IsInf(c.ArrivalMean, 0) {
		return fmt.Errorf("arrival_mean must be a positive number, got %v", c.ArrivalMean)
	}
	if err := c.Arrival.Validate(); err != nil {
		return err
	}
	if c.Cargo != nil {
		if _, err := workload.NewCountSampler(*c.Cargo); err != nil {
			return err
		}
	}
	if !nonNegative(c.Horizon) {
		return fmt.Errorf("horizon must be a non-negative number, got %v", c.Horizon)
	}
	// a berth without a homed truck could never unload
	if c.DedicatedTrucks && c.Trucks < c.Berths {
		return fmt.Errorf("dedicated_trucks needs at least one truck per berth (%d trucks, %d berths)", c.Trucks, c.Berths)
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v)
}
