package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVessel_Containers(t *testing.T) {
	v := NewVessel("vessel_1", 2, 5)
	assert.Equal(t, VesselArrived, v.State)
	assert.Equal(t, 2, v.Containers())

	c, ok := v.NextContainer()
	assert.True(t, ok)
	assert.Equal(t, "vessel_1-container_1", c)

	// peeking does not remove
	c, _ = v.NextContainer()
	assert.Equal(t, "vessel_1-container_1", c)
	assert.Equal(t, 2, v.Remaining())

	v.MarkUnloaded()
	c, _ = v.NextContainer()
	assert.Equal(t, "vessel_1-container_2", c)
	v.MarkUnloaded()
	v.MarkUnloaded()

	_, ok = v.NextContainer()
	assert.False(t, ok)
	assert.Equal(t, 0, v.Remaining())
}

func TestVessel_WaitingTime(t *testing.T) {
	v := NewVessel("v", 0, 5)
	v.State = VesselWaitingForBerth
	assert.EqualValues(t, 7, v.WaitingTime(12))

	v.State = VesselUnloading
	v.BerthedAt = 9
	assert.EqualValues(t, 4, v.WaitingTime(100))
}

func TestVesselState_String(t *testing.T) {
	assert.Equal(t, "Arrived", VesselArrived.String())
	assert.Equal(t, "WaitingForBerth", VesselWaitingForBerth.String())
	assert.Equal(t, "Unloading", VesselUnloading.String())
	assert.Equal(t, "Departed", VesselDeparted.String())
	assert.Equal(t, "VesselState(9)", VesselState(9).String())
}
