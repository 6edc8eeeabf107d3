package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/portsim/sim/terminal"
)

// loadScenarioConfig reads a YAML scenario on top of the defaults. Unknown
// keys are rejected so that typos fail loudly.
func loadScenarioConfig(path string) (terminal.Config, error) {
	cfg := terminal.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig builds the scenario: defaults, then the --config file, then
// every flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (terminal.Config, error) {
	cfg := terminal.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadScenarioConfig(configPath); err != nil {
			return cfg, err
		}
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid scenario: %w", err)
	}
	return cfg, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *terminal.Config) {
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if f.Changed("berths") {
		cfg.Berths = berths
	}
	if f.Changed("trucks") {
		cfg.Trucks = trucks
	}
	if f.Changed("crane-move-time") {
		cfg.CraneMoveTime = craneMoveTime
	}
	if f.Changed("truck-return-time") {
		cfg.TruckReturnTime = truckReturnTime
	}
	if f.Changed("containers") {
		cfg.ContainersPerVessel = containersPerVessel
	}
	if f.Changed("arrival-mean") {
		cfg.ArrivalMean = arrivalMean
	}
	if f.Changed("arrival-process") {
		cfg.Arrival.Process = arrivalProcess
	}
	if f.Changed("arrival-cv") {
		cv := arrivalCV
		cfg.Arrival.CV = &cv
	}
	if f.Changed("dedicated-trucks") {
		cfg.DedicatedTrucks = dedicatedTrucks
	}
}

func writeConfig(w io.Writer, cfg terminal.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
