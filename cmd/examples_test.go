package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portsim/sim/terminal"
)

// TestExampleConfigs_Reference verifies that terminal.yaml matches the
// built-in defaults.
func TestExampleConfigs_Reference(t *testing.T) {
	cfg, err := loadScenarioConfig(filepath.Join("..", "configs", "terminal.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, terminal.DefaultConfig(), cfg)
}

// TestExampleConfigs_BusyPort verifies that busy-port.yaml loads, validates
// and runs.
func TestExampleConfigs_BusyPort(t *testing.T) {
	cfg, err := loadScenarioConfig(filepath.Join("..", "configs", "busy-port.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.DedicatedTrucks)
	require.NotNil(t, cfg.Cargo)
	assert.Equal(t, "empirical", cfg.Cargo.Type)
	// unset keys keep their defaults
	assert.Equal(t, 150, cfg.ContainersPerVessel)

	term, err := terminal.New(cfg, nil)
	require.NoError(t, err)
	defer term.Close()
	rep, err := term.Run()
	require.NoError(t, err)
	assert.Equal(t, cfg.Horizon, rep.Time)
	assert.Equal(t, rep.VesselsArrived, rep.VesselsDeparted+len(rep.InProgress))
}
